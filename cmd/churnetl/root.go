package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"churnetl/internal/config"
	"churnetl/internal/logger"
	"churnetl/internal/storage"

	// Register every storage backend with the factory; storage.kind picks one.
	_ "churnetl/internal/storage/all"
)

// app carries state shared by the subcommands once flags are parsed.
type app struct {
	getenv func(string) string
	out    io.Writer

	cfgPath string
	envFile string
	flags   overrides

	cfg        config.Config
	log        *logger.Logger
	flushStats func()
}

// overrides are flag values applied over file and environment config when
// the flag was set explicitly.
type overrides struct {
	baseDir, rawPath, stagingDir, table, logMode string
	storage, dsn, metrics                        string
	batchSize                                    int
	strict, autoCreate                           bool
}

func newRootCmd(getenv func(string) string, out io.Writer) *cobra.Command {
	a := &app{getenv: getenv, out: out}

	root := &cobra.Command{
		Use:   "churnetl",
		Short: "Telecom customer churn ETL",
		Long: "churnetl transforms the raw Telco churn export into a staged CSV, loads it into the " +
			"destination table in batches and validates the loaded rows against the staged file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags())
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (.json, .yaml or .yml)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file with SUPABASE_URL and SUPABASE_KEY")
	pf.StringVar(&a.flags.baseDir, "base-dir", "", "directory relative paths are resolved against")
	pf.StringVar(&a.flags.rawPath, "raw", "", "raw CSV path or http(s) URL")
	pf.StringVar(&a.flags.stagingDir, "staging-dir", "", "staging directory")
	pf.StringVar(&a.flags.table, "table", "", "destination table")
	pf.IntVar(&a.flags.batchSize, "batch-size", 0, "rows per insert batch")
	pf.BoolVar(&a.flags.strict, "strict", false, "exit non-zero on failed batches or validation mismatches")
	pf.StringVar(&a.flags.logMode, "log-mode", "", "log mode: dev, debug or prod")
	pf.StringVar(&a.flags.storage, "storage", "", "storage kind: "+strings.Join(storage.ListKinds(), ", "))
	pf.StringVar(&a.flags.dsn, "dsn", "", "connection string for SQL storage kinds")
	pf.BoolVar(&a.flags.autoCreate, "auto-create-table", false, "create the destination table before loading (SQL kinds)")
	pf.StringVar(&a.flags.metrics, "metrics-backend", "", "metrics backend: none, prompush or datadog")

	root.AddCommand(
		a.transformCmd(),
		a.loadCmd(),
		a.validateCmd(),
		a.runCmd(),
		a.ddlCmd(),
	)
	// Flush metrics and logs whether or not the command failed.
	for _, c := range root.Commands() {
		if run := c.RunE; run != nil {
			c.RunE = func(cmd *cobra.Command, args []string) error {
				defer a.teardown()
				return run(cmd, args)
			}
		}
	}
	return root
}

// setup resolves configuration (defaults, file, .env and environment, then
// flags), builds the logger and installs the metrics backend.
func (a *app) setup(fs *pflag.FlagSet) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.cfgPath, a.getenv)
	if err != nil {
		return err
	}
	a.applyFlags(fs, &cfg)
	a.cfg = cfg

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.log = log.With("job", cfg.Job)

	for _, iss := range config.Lint(cfg) {
		if iss.Severity == config.SeverityWarning {
			a.log.Warn("config: "+iss.Message, "path", iss.Path)
		}
	}
	a.flushStats = setupMetrics(cfg, a.log)
	return nil
}

func (a *app) applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	str := func(name, v string, dst *string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	str("base-dir", a.flags.baseDir, &cfg.BaseDir)
	str("raw", a.flags.rawPath, &cfg.RawPath)
	str("staging-dir", a.flags.stagingDir, &cfg.StagingDir)
	str("table", a.flags.table, &cfg.Table)
	str("log-mode", a.flags.logMode, &cfg.LogMode)
	str("storage", a.flags.storage, &cfg.Storage.Kind)
	str("dsn", a.flags.dsn, &cfg.Storage.DSN)
	str("metrics-backend", a.flags.metrics, &cfg.Metrics.Backend)
	if fs.Changed("batch-size") {
		cfg.BatchSize = a.flags.batchSize
	}
	if fs.Changed("strict") {
		cfg.Strict = a.flags.strict
	}
	if fs.Changed("auto-create-table") {
		cfg.Storage.AutoCreateTable = a.flags.autoCreate
	}
}

func (a *app) teardown() {
	if a.flushStats != nil {
		a.flushStats()
	}
	if a.log != nil {
		a.log.Sync()
	}
}
