package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lupppig/sitectl/internal/config"
	"github.com/lupppig/sitectl/internal/logger"
	"github.com/lupppig/sitectl/internal/settings"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	LogJSON bool
	NoColor bool
	Debug   bool
)

// appState is what PersistentPreRunE assembles for every subcommand.
type appState struct {
	Config   *config.Config
	Settings settings.Settings
	Packages []string
}

type stateKey struct{}

func stateFrom(ctx context.Context) *appState {
	if st, ok := ctx.Value(stateKey{}).(*appState); ok {
		return st
	}
	return &appState{Config: &config.Config{}}
}

var rootCmd = &cobra.Command{
	Use:   "sitectl",
	Short: "sitectl manages a learning platform installation from the command line",
	Long: `sitectl is the operator tool for a self-hosted learning platform.
	It assembles the platform settings from defaults, local overrides and optional
	configuration packages, and restores the platform database from the backups
	kept in the configured backup directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if Debug || cfg.Debug {
			level = slog.LevelDebug
		}
		l := logger.New(logger.Config{
			Writer:  cmd.ErrOrStderr(),
			JSON:    LogJSON || cfg.LogJSON,
			NoColor: NoColor || cfg.NoColor,
			Level:   level,
		})

		s, applied, err := settings.Compose(cfg.Settings, settings.DetectEnvironment(commandArgs(cmd)))
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			l.Debug("Configuration packages applied", "packages", applied)
		}
		if unknown := settings.UnknownPackages(s); len(unknown) > 0 {
			l.Warn("Ignoring unknown configuration packages", "packages", unknown)
		}

		ctx := logger.WithContext(cmd.Context(), l)
		ctx = context.WithValue(ctx, stateKey{}, &appState{Config: cfg, Settings: s, Packages: applied})
		cmd.SetContext(ctx)
		return nil
	},
}

// commandArgs is the path of the invoked command, e.g. ["sitectl", "restore"].
// Flag values never appear in it.
func commandArgs(cmd *cobra.Command) []string {
	return strings.Fields(cmd.CommandPath())
}

func init() {
	rootCmd.Version = settings.Version
	rootCmd.SetVersionTemplate("sitectl version {{ .Version }}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./sitectl.yaml or ~/.sitectl/sitectl.yaml)")
	rootCmd.PersistentFlags().BoolVar(&LogJSON, "log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&NoColor, "no-color", false, "disable colored log output")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug logging")
}

func Execute() error {
	return rootCmd.Execute()
}
