package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mitchellh/go-homedir"
	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/notedb"
	"github.com/san-kum/seaglass/internal/notes"
	"github.com/san-kum/seaglass/internal/observability"
	"github.com/san-kum/seaglass/internal/remote"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var version = "dev"

var settings = viper.New()

var (
	// profile selection, shared by every command that builds a scene
	preset      string
	profilePath string
	seed        int64
	width       float64
	height      float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "seaglass",
		Short:         "drifting memory shards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadSettings()
		},
		RunE: runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("data", ".seaglass", "directory for recorded runs")
	pf.String("db", "", "sqlite note database (default ~/.seaglass/notes.db)")
	pf.String("server", "", "note API base url")
	pf.String("owner", "", "signed-in user; empty keeps note writes local")
	pf.String("store", "demo", "note store: demo, db or remote")
	pf.String("log-level", "info", "log level")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("log-file", "", "rotated JSON log file")
	for _, name := range []string{"data", "db", "server", "owner", "store"} {
		_ = settings.BindPFlag(name, pf.Lookup(name))
	}
	_ = settings.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = settings.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = settings.BindPFlag("log.file", pf.Lookup("log-file"))

	profileFlags(rootCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drift the shards in the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().String("theme", "tide", "colour theme")
	rootCmd.Flags().String("theme", "tide", "colour theme")
	profileFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "record a headless session",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&steps, "steps", 600, "steps to record")
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "scripted input (yaml)")
	profileFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot mean shard speed of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "drift spectrum of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [file.svg]",
		Short: "render one frame as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshot,
	}
	snapshotCmd.Flags().IntVar(&steps, "steps", 120, "steps before the frame is taken")
	profileFlags(snapshotCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "sweep one tuning parameter over demo scenes",
		Args:  cobra.ExactArgs(1),
		RunE:  sweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepCount, "count", 5, "number of values")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel scenes (0: one per cpu)")
	sweepCmd.Flags().IntVar(&steps, "steps", 300, "frames per value")
	profileFlags(sweepCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the note API",
		RunE:  serve,
	}
	serveCmd.Flags().String("listen", ":8080", "listen address")
	_ = settings.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))

	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "list the owner's notes in the configured store",
		RunE:  listNotes,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios [dir]",
		Short: "list scenario files below a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listScenarios,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list tuning presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, analyzeCmd, exportCmd, snapshotCmd, sweepCmd, serveCmd, notesCmd, scenariosCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func profileFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "tuning preset")
	f.StringVar(&profilePath, "profile", "", "tuning profile (yaml), reloaded on change in live mode")
	f.Int64Var(&seed, "seed", 0, "random seed (0 keeps the profile's)")
	f.Float64Var(&width, "width", 800, "viewport width")
	f.Float64Var(&height, "height", 600, "viewport height")
}

// loadSettings layers seaglass.yaml and SEAGLASS_* variables under the
// flags.
func loadSettings() error {
	settings.SetEnvPrefix("SEAGLASS")
	settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	settings.AutomaticEnv()
	settings.SetConfigName("seaglass")
	settings.SetConfigType("yaml")
	settings.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		settings.AddConfigPath(home + "/.seaglass")
	}
	if err := settings.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if !errors.As(err, &missing) {
			return fmt.Errorf("read settings: %w", err)
		}
	}
	return nil
}

// newLogger builds the process logger. quiet drops the console sink for
// commands that own the terminal.
func newLogger(quiet bool) (*zap.Logger, error) {
	cfg := observability.DefaultConfig()
	cfg.Level = settings.GetString("log.level")
	cfg.Format = settings.GetString("log.format")
	cfg.File = settings.GetString("log.file")
	cfg.Quiet = quiet
	return observability.New(cfg, nil)
}

// loadProfile resolves --profile, then --preset, then the defaults.
func loadProfile() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case profilePath != "":
		cfg, err = config.Load(profilePath)
	case preset != "":
		cfg, err = config.GetPreset(preset)
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	return cfg, cfg.Validate()
}

// openStore returns the configured note store and its release func. The
// demo store is nil so the scene seeds sample notes.
func openStore(log *zap.Logger) (notes.Store, func(), error) {
	switch kind := settings.GetString("store"); kind {
	case "demo", "":
		return nil, func() {}, nil
	case "db":
		path, err := dbPath()
		if err != nil {
			return nil, nil, err
		}
		db, err := notedb.Open(path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("note database opened", zap.String("path", path))
		return db, func() { db.Close() }, nil
	case "remote":
		base := settings.GetString("server")
		if base == "" {
			return nil, nil, errors.New("remote store needs --server")
		}
		opts := remote.DefaultOptions()
		opts.Logger = log
		c, err := remote.New(base, opts)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown note store %q", kind)
	}
}

// dataDir is the recorded-run directory with a leading ~ expanded.
func dataDir() (string, error) {
	return homedir.Expand(settings.GetString("data"))
}

func dbPath() (string, error) {
	if p := settings.GetString("db"); p != "" {
		return homedir.Expand(p)
	}
	return notedb.DefaultDBPath()
}
