package config

import (
	"os"
	"runtime"
	"strings"

	"ecgroup/curve"
	"ecgroup/logs"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ECGROUP_CURVE_M=17.
const EnvPrefix = "ECGROUP"

// Config is the full tool configuration.
type Config struct {
	Curve     curve.Params    `mapstructure:"curve" json:"curve" yaml:"curve"`
	Scan      ScanConfig      `mapstructure:"scan" json:"scan" yaml:"scan"`
	Generator GeneratorConfig `mapstructure:"generator" json:"generator" yaml:"generator"`
	Store     StoreConfig     `mapstructure:"store" json:"store" yaml:"store"`
	Log       LogConfig       `mapstructure:"log" json:"log" yaml:"log"`
}

// ScanConfig 点枚举
type ScanConfig struct {
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers"` // 0 = NumCPU
}

// GeneratorConfig 求阶和群律检查
type GeneratorConfig struct {
	Workers   int   `mapstructure:"workers" json:"workers" yaml:"workers"`
	CacheSize int   `mapstructure:"cache_size" json:"cache_size" yaml:"cache_size"` // 0 disables the order cache
	Triples   int   `mapstructure:"triples" json:"triples" yaml:"triples"`
	MaxScalar int64 `mapstructure:"max_scalar" json:"max_scalar" yaml:"max_scalar"`
}

// StoreConfig badger 结果库
type StoreConfig struct {
	Enabled          bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Path             string `mapstructure:"path" json:"path" yaml:"path"`
	InMemory         bool   `mapstructure:"in_memory" json:"in_memory" yaml:"in_memory"`
	ValueLogFileSize int64  `mapstructure:"value_log_file_size" json:"value_log_file_size" yaml:"value_log_file_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// DefaultConfig returns the defaults: y^2 = x^3 + 4x + 4 (mod 7), one worker per
// CPU, no store.
func DefaultConfig() *Config {
	return &Config{
		Curve: curve.Params{A: 4, B: 4, M: 7},
		Scan: ScanConfig{
			Workers: runtime.NumCPU(),
		},
		Generator: GeneratorConfig{
			Workers:   runtime.NumCPU(),
			CacheSize: 4096,
			Triples:   64,
			MaxScalar: 16,
		},
		Store: StoreConfig{
			Enabled:          false,
			Path:             "data/ecgroup",
			ValueLogFileSize: 64 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("curve.a", c.Curve.A)
	v.SetDefault("curve.b", c.Curve.B)
	v.SetDefault("curve.m", c.Curve.M)
	v.SetDefault("scan.workers", c.Scan.Workers)
	v.SetDefault("generator.workers", c.Generator.Workers)
	v.SetDefault("generator.cache_size", c.Generator.CacheSize)
	v.SetDefault("generator.triples", c.Generator.Triples)
	v.SetDefault("generator.max_scalar", c.Generator.MaxScalar)
	v.SetDefault("store.enabled", c.Store.Enabled)
	v.SetDefault("store.path", c.Store.Path)
	v.SetDefault("store.in_memory", c.Store.InMemory)
	v.SetDefault("store.value_log_file_size", c.Store.ValueLogFileSize)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
}

// LoadFromFile reads a YAML, JSON or TOML file and applies ECGROUP_*
// environment overrides. Missing keys keep their defaults; an empty path or a
// missing file yields the defaults plus environment.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(err, "read config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// Validate 检查曲线参数和数值配置
func (c *Config) Validate() error {
	if err := c.Curve.Validate(); err != nil {
		return errors.WithMessage(err, "curve")
	}
	if c.Scan.Workers < 0 {
		return errors.Errorf("scan.workers must not be negative, got %d", c.Scan.Workers)
	}
	if c.Generator.Workers < 0 {
		return errors.Errorf("generator.workers must not be negative, got %d", c.Generator.Workers)
	}
	if c.Generator.CacheSize < 0 {
		return errors.Errorf("generator.cache_size must not be negative, got %d", c.Generator.CacheSize)
	}
	if c.Generator.Triples < 0 || c.Generator.MaxScalar < 0 {
		return errors.New("generator.triples and generator.max_scalar must not be negative")
	}
	if c.Store.Enabled && !c.Store.InMemory && c.Store.Path == "" {
		return errors.New("store.path is required when the store is enabled")
	}
	if _, err := logs.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
