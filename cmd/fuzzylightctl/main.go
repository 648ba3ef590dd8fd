package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fuzzylight/internal/config"
	"fuzzylight/internal/logging"
	"fuzzylight/pkg/fuzzylight"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	root := newRootCmd(out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

type globalOptions struct {
	configPath string
	store      string
	dbPath     string
	exportsDir string
	logLevel   string
}

// app is the per-invocation state shared by subcommands.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	client   *fuzzylight.Client
	registry *prometheus.Registry
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "fuzzylightctl",
		Short:         "Fuzzy street-lamp controller",
		Long:          `fuzzylightctl evaluates the street-lamp fuzzy rule base, lists and exports runs, and serves the HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a TOML configuration file")
	pf.StringVar(&opts.store, "store", "", "run store backend: memory|sqlite")
	pf.StringVar(&opts.dbPath, "db-path", "", "sqlite database path")
	pf.StringVar(&opts.exportsDir, "exports-dir", "", "directory for exported artifacts")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(
		newEvalCmd(opts),
		newBatchCmd(opts),
		newRulesCmd(opts),
		newVariablesCmd(opts),
		newRunsCmd(opts),
		newExportCmd(opts),
		newServeCmd(opts),
	)
	return root
}

func (o *globalOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.store != "" {
		cfg.Store = o.store
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.exportsDir != "" {
		cfg.ExportsDir = o.exportsDir
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// open loads the configuration, installs the logger and starts a client.
// The returned cleanup closes the client and flushes the logger.
func (o *globalOptions) open(ctx context.Context) (*app, func(), error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logging.SetLogger(log)

	reg := prometheus.NewRegistry()
	client, err := fuzzylight.New(fuzzylight.Options{
		StoreKind:  cfg.Store,
		DBPath:     cfg.DBPath,
		ExportsDir: cfg.ExportsDir,
		Logger:     log,
		Registerer: reg,
	})
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		_ = log.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("close client", zap.Error(err))
		}
		_ = log.Sync()
	}
	return &app{cfg: cfg, log: log, client: client, registry: reg}, cleanup, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
