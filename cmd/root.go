package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepjump/internal/config"
	"github.com/chriserin/stepjump/internal/ctxlog"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	noCache    bool

	settings = config.Default()
)

var rootCmd = &cobra.Command{
	Use:          "stepjump",
	Short:        "stepjump: jump between Gherkin steps and behave step definitions",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		settings = cfg
		logger := ctxlog.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stepjump/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&logFormat, "log-format", "", "text or json")
	flags.BoolVar(&noCache, "no-cache", false, "do not use the step definition cache")
}

func loadSettings(cmd *cobra.Command) (config.Config, error) {
	path, explicit := configPath, true
	if path == "" {
		path, explicit = config.DefaultPath(), false
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if noCache {
		off := false
		cfg.Cache.Enabled = &off
	}
	return cfg, cfg.Normalize()
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
