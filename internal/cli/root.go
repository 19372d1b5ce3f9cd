// Package cli provides the command-line interface for the game.
package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"luxury-tycoon/internal/config"
	"luxury-tycoon/internal/logging"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-15"
)

// App holds the application dependencies.
type App struct {
	ConfigDir string
	Debug     bool
	Logger    zerolog.Logger

	config *config.Config
}

// Config loads the configuration on first use. A missing file is created
// from the template.
func (a *App) Config() (*config.Config, error) {
	if a.config != nil {
		return a.config, nil
	}
	cfg, err := config.Load(a.ConfigDir)
	if err != nil {
		return nil, err
	}
	a.config = cfg
	a.Logger = a.newLogger(cfg)
	return cfg, nil
}

func (a *App) newLogger(cfg *config.Config) zerolog.Logger {
	level := cfg.Logging.Level
	if a.Debug {
		level = "debug"
	}
	lc := logging.DefaultLogConfig()
	lc.Level = level
	lc.File = cfg.Logging.File
	if cfg.Logging.Dir != "" {
		lc.FilePath = filepath.Join(cfg.Logging.Dir, "tycoon.log")
	}
	if cfg.Logging.MaxSizeMB > 0 {
		lc.MaxSize = cfg.Logging.MaxSizeMB
	}
	if cfg.Logging.MaxBackups > 0 {
		lc.MaxBackups = cfg.Logging.MaxBackups
	}
	if cfg.Logging.MaxAgeDays > 0 {
		lc.MaxAge = cfg.Logging.MaxAgeDays
	}
	return logging.NewLoggerWithConfig(lc)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(logger zerolog.Logger) *cobra.Command {
	app := &App{Logger: logger}

	rootCmd := &cobra.Command{
		Use:   "tycoon",
		Short: "Luxury Tycoon - a trading and collecting game economy",
		Long: `Luxury Tycoon runs the game economy: a simulated stock market, a wallet
with primary and premium currency, and a catalog of luxury items that
unlock as the player's balance grows.

Use 'tycoon serve' to run the HTTP/WebSocket API and 'tycoon simulate'
for a headless run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.ConfigDir, _ = cmd.Flags().GetString("config")
			app.Debug, _ = cmd.Flags().GetBool("debug")
			if app.Debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/luxury-tycoon)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newCatalogCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newSimulateCmd(app))
	rootCmd.AddCommand(newJournalCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Luxury Tycoon v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}
