package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ecgroup/config"
	"ecgroup/db"
	"ecgroup/generator"
	"ecgroup/logs"
	"ecgroup/report"
	"ecgroup/scan"
	"ecgroup/stats"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		return 1
	}
	return 0
}

// app holds the flag values and the components built from them.
type app struct {
	configPath string
	a, b, m    int64
	format     string
	logLevel   string
	workers    int
	dbPath     string
	showStats  bool

	cfg     *config.Config
	out     report.Format
	logger  logs.Logger
	stats   *stats.Stats
	scanner *scan.Scanner
	finder  *generator.Finder
	store   *db.Manager
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ecgroup",
		Short:         "Explore the point group of y^2 = x^3 + ax + b (mod m)",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	flags.Int64VarP(&a.a, "a", "a", 0, "curve coefficient a")
	flags.Int64VarP(&a.b, "b", "b", 0, "curve coefficient b")
	flags.Int64VarP(&a.m, "m", "m", 0, "prime modulus m")
	flags.StringVar(&a.format, "format", "text", "output format: text, json or yaml")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, verbose, info, warn, error")
	flags.IntVar(&a.workers, "workers", 0, "worker goroutines (0 = number of CPUs)")
	flags.StringVar(&a.dbPath, "db", "", "badger directory for cached classifications")
	flags.BoolVar(&a.showStats, "stats", false, "log operation counts and timings on exit")

	root.AddCommand(
		a.pointsCommand(),
		a.generatorsCommand(),
		a.orderCommand(),
		a.classifyCommand(),
		a.checkCommand(),
		a.storedCommand(),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// components shared by all subcommands.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFromFile(a.configPath)
	if err != nil {
		return err
	}
	a.applyFlags(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return errors.WithMessage(err, "invalid configuration")
	}
	a.cfg = cfg

	if a.out, err = report.ParseFormat(a.format); err != nil {
		return err
	}
	if err := logs.Configure(logs.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: cmd.ErrOrStderr()}); err != nil {
		return err
	}
	a.logger = logs.New("ecgroup")

	metrics, err := stats.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	a.stats = stats.NewStats().WithMetrics(metrics)
	a.scanner = scan.NewScanner(cfg.Scan.Workers, a.logger.Named("scan")).WithRecorder(a.stats)
	a.finder, err = generator.NewFinder(
		generator.WithWorkers(cfg.Generator.Workers),
		generator.WithCache(cfg.Generator.CacheSize),
		generator.WithLogger(a.logger.Named("generator")),
		generator.WithRecorder(a.stats),
	)
	if err != nil {
		return err
	}
	if cfg.Store.Enabled {
		if a.store, err = db.NewManager(cfg.Store, a.logger.Named("db")); err != nil {
			return err
		}
	}
	a.logger.Debug("curve %s, workers %d/%d", cfg.Curve, cfg.Scan.Workers, cfg.Generator.Workers)
	return nil
}

// applyFlags copies explicitly set flags over the loaded configuration.
func (a *app) applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("a") {
		cfg.Curve.A = a.a
	}
	if flags.Changed("b") {
		cfg.Curve.B = a.b
	}
	if flags.Changed("m") {
		cfg.Curve.M = a.m
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers = a.workers
		cfg.Generator.Workers = a.workers
	}
	if flags.Changed("db") {
		cfg.Store.Enabled = a.dbPath != ""
		cfg.Store.Path = a.dbPath
	}
}

func (a *app) close() {
	if a.showStats && a.stats != nil {
		a.logStats()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logs.Error("close store: %v", err)
		}
		a.store = nil
	}
	_ = logs.Sync()
}

func (a *app) logStats() {
	counts := a.stats.OpCounts()
	for _, op := range a.stats.Ops() {
		logs.Info("op %-12s %d", op, counts[op])
	}
	lat := a.stats.Latencies(false)
	for _, name := range a.stats.LatencyNames() {
		s := lat[name]
		logs.Info("%-12s count=%d mean=%v p50=%v p95=%v max=%v", name, s.Count, s.Mean, s.P50, s.P95, s.Max)
	}
}

// classification returns the stored classification of the configured curve,
// computing and storing it when missing.
func (a *app) classification(ctx context.Context) (*generator.Classification, error) {
	p := a.cfg.Curve
	if a.store != nil {
		c, ok, err := a.store.GetClassification(p)
		if err != nil {
			return nil, err
		}
		if ok {
			a.logger.Verbose("loaded %s from store", p)
			return c, nil
		}
	}
	c, err := a.finder.Classify(ctx, p)
	if err != nil {
		return nil, err
	}
	if !c.Lagrange() {
		return nil, errors.Errorf("point orders of %s do not divide the group order %d", p, c.GroupOrder)
	}
	if a.store != nil {
		if err := a.store.SaveClassification(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
