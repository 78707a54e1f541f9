package logs

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Levels, lowest (most verbose) first.
const (
	LevelTrace = iota
	LevelDebug
	LevelVerbose
	LevelInfo
	LevelWarning
	LevelError
)

var logLevel atomic.Int32

var root atomic.Pointer[zap.SugaredLogger]

func init() {
	logLevel.Store(LevelInfo)
	root.Store(newSugar(os.Stderr, "text"))
}

// Logger is the leveled, printf-style logger passed to components.
type Logger interface {
	Trace(format string, v ...interface{})
	Debug(format string, v ...interface{})
	Verbose(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	Named(name string) Logger
}

// Config selects the level and encoding of the process-wide logger.
type Config struct {
	Level  string // trace|debug|verbose|info|warn|error
	Format string // text|json
	Writer io.Writer
}

// Configure replaces the process-wide logger. Loggers obtained from New keep
// working and pick up the new settings.
func Configure(c Config) error {
	level := LevelInfo
	if c.Level != "" {
		l, err := ParseLevel(c.Level)
		if err != nil {
			return err
		}
		level = l
	}
	switch c.Format {
	case "", "text", "json":
	default:
		return errors.Errorf("unknown log format %q", c.Format)
	}
	if c.Writer == nil {
		c.Writer = os.Stderr
	}
	root.Store(newSugar(c.Writer, c.Format))
	SetLevel(level)
	return nil
}

// SetLevel sets the minimum level that is emitted.
func SetLevel(level int) { logLevel.Store(int32(level)) }

// GetLevel returns the current minimum level.
func GetLevel() int { return int(logLevel.Load()) }

// ParseLevel maps a level name to its constant.
func ParseLevel(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "verbose":
		return LevelVerbose, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.Errorf("unknown log level %q", s)
	}
}

func newSugar(w io.Writer, format string) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.NameKey = "name"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	// level filtering happens in this package, the core accepts everything
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

type zapLogger struct {
	name  string
	skip  int
	fixed *zap.SugaredLogger
}

// New returns a Logger named after a component.
func New(name string) Logger { return &zapLogger{name: name} }

// Nop returns a Logger that discards everything.
func Nop() Logger { return &zapLogger{fixed: zap.NewNop().Sugar()} }

func (l *zapLogger) sugar() *zap.SugaredLogger {
	if l.fixed != nil {
		return l.fixed
	}
	s := root.Load()
	if l.name != "" {
		s = s.Named(l.name)
	}
	if l.skip > 0 {
		s = s.Desugar().WithOptions(zap.AddCallerSkip(l.skip)).Sugar()
	}
	return s
}

func (l *zapLogger) Named(name string) Logger {
	if l.fixed != nil {
		return &zapLogger{fixed: l.fixed.Named(name)}
	}
	if l.name != "" {
		name = l.name + "." + name
	}
	return &zapLogger{name: name}
}

func (l *zapLogger) Trace(format string, v ...interface{}) {
	if GetLevel() <= LevelTrace {
		l.sugar().Debugf(format, v...)
	}
}

func (l *zapLogger) Debug(format string, v ...interface{}) {
	if GetLevel() <= LevelDebug {
		l.sugar().Debugf(format, v...)
	}
}

func (l *zapLogger) Verbose(format string, v ...interface{}) {
	if GetLevel() <= LevelVerbose {
		l.sugar().Infof(format, v...)
	}
}

func (l *zapLogger) Info(format string, v ...interface{}) {
	if GetLevel() <= LevelInfo {
		l.sugar().Infof(format, v...)
	}
}

func (l *zapLogger) Warn(format string, v ...interface{}) {
	if GetLevel() <= LevelWarning {
		l.sugar().Warnf(format, v...)
	}
}

func (l *zapLogger) Error(format string, v ...interface{}) {
	if GetLevel() <= LevelError {
		l.sugar().Errorf(format, v...)
	}
}

// std backs the package-level helpers; the extra frame is the helper itself.
var std = &zapLogger{skip: 1}

func Trace(format string, v ...interface{})   { std.Trace(format, v...) }
func Debug(format string, v ...interface{})   { std.Debug(format, v...) }
func Verbose(format string, v ...interface{}) { std.Verbose(format, v...) }
func Info(format string, v ...interface{})    { std.Info(format, v...) }
func Warn(format string, v ...interface{})    { std.Warn(format, v...) }
func Error(format string, v ...interface{})   { std.Error(format, v...) }

// Sync flushes the process-wide logger.
func Sync() error { return root.Load().Sync() }
