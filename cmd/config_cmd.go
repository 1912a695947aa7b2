package cmd

import (
	"fmt"

	"github.com/leaselad/leaselad/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configImportCmd = &cobra.Command{
	Use:   "import <settings.json>",
	Short: "Import lease settings exported from the LeaseLad web app",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigImport,
}

func init() {
	configCmd.AddCommand(configImportCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Tessie]")
	if token := config.GetAPIToken(cfg); token != "" {
		fmt.Printf("    API token: %s\n", maskToken(token))
	} else {
		fmt.Println("    API token: not configured")
	}
	if vin := config.GetVIN(cfg); vin != "" {
		fmt.Printf("    VIN:       %s\n", vin)
	} else {
		fmt.Println("    VIN:       first vehicle on account")
	}
	if cfg.Tessie.BaseURL != "" {
		fmt.Printf("    Base URL:  %s\n", cfg.Tessie.BaseURL)
	}
	fmt.Println()

	fmt.Println("  [Lease]")
	fmt.Printf("    Start date:     %s\n", cfg.Lease.StartDate)
	fmt.Printf("    Months:         %d\n", cfg.Lease.LeaseMonths)
	fmt.Printf("    Total miles:    %.0f\n", cfg.Lease.TotalMiles)
	fmt.Printf("    Start odometer: %.0f\n", cfg.Lease.StartOdometer)
	if _, err := cfg.LeaseTerms(); err != nil {
		fmt.Printf("    Invalid: %v\n", err)
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v (every %s)\n", cfg.TUI.AutoRefresh, cfg.RefreshInterval())
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule: %s\n", cfg.Daemon.Schedule)
	fmt.Println()

	fmt.Println("  Run `leaselad setup` to reconfigure.")
	return nil
}

func runConfigImport(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cfg, err = config.ImportLegacyJSON(args[0], cfg)
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("  Imported %s into %s\n", args[0], config.Path())
	fmt.Printf("  Lease: %s, %d months, %.0f miles\n",
		cfg.Lease.StartDate, cfg.Lease.LeaseMonths, cfg.Lease.TotalMiles)
	return nil
}

// maskToken keeps only enough of a secret to recognize it.
func maskToken(key string) string {
	if len(key) > 16 {
		return key[:6] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:2] + "..."
	}
	return "****"
}
