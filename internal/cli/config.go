package cli

import (
	"os"

	"github.com/spf13/cobra"

	"luxury-tycoon/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(cfg)
			}
			showConfig(output, cfg)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := config.Path(app.ConfigDir)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			dir := app.ConfigDir
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			path := config.Path(dir)
			_, statErr := os.Stat(path)
			existed := statErr == nil

			if err := config.WriteTemplate(dir); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"path": path, "created": !existed})
			}
			if existed {
				output.Warning("Configuration already exists: %s", path)
			} else {
				output.Success("✓ Configuration written to %s", path)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if _, err := app.Config(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Economy")
	output.Printf("  Starting primary:  %.2f\n", cfg.Economy.StartingPrimary)
	output.Printf("  Starting premium:  %.0f\n", cfg.Economy.StartingPremium)
	output.Printf("  Daily reward:      %.2f\n", cfg.Economy.DailyReward)
	output.Printf("  Unlock threshold:  %.0f%% of price\n", cfg.Economy.UnlockThresholdFraction*100)
	output.Printf("  Premium rate:      %.0f primary per gem\n", cfg.Economy.PremiumToPrimaryRate)
	output.Printf("  History length:    %d\n", cfg.Economy.HistoryLength)
	catalogPath := cfg.Economy.CatalogPath
	if catalogPath == "" {
		catalogPath = "(embedded)"
	}
	output.Printf("  Catalog:           %s\n", catalogPath)
	output.Println()

	output.Bold("Scheduler")
	output.Printf("  Enabled:           %v\n", cfg.Scheduler.Enabled)
	output.Printf("  Tick interval:     %s\n", cfg.Scheduler.TickInterval)
	output.Println()

	output.Bold("Daily Spin")
	for _, p := range cfg.Spin.Prizes {
		output.Printf("  %-8s %8.0f  weight %d\n", p.Currency, p.Amount, p.Weight)
	}
	output.Println()

	output.Bold("Journal")
	output.Printf("  Enabled:           %v\n", cfg.Store.Enabled)
	output.Printf("  Path:              %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Server")
	output.Printf("  Address:           %s\n", cfg.Server.Addr)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:             %s\n", cfg.Logging.Level)
	output.Printf("  File:              %v (%s)\n", cfg.Logging.File, cfg.Logging.Dir)
}
