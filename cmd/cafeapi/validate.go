package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lionscafe/api/adapters/sqlite"
	"github.com/lionscafe/api/config"
)

const (
	checkMark = "✓"
	crossMark = "✗"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the configuration file.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Database is writable (optional)

Examples:
  cafeapi validate
  cafeapi validate --config /etc/cafeapi/config.yaml --check-database`,
	RunE: runValidate,
}

var validateCheckDatabase bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config valid\n", checkMark)

	fmt.Printf("  %s Environment: %s\n", checkMark, cfg.Env)
	fmt.Printf("  %s Listen: %s:%d\n", checkMark, cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  %s Database: %s\n", checkMark, cfg.Database.DSN)
	fmt.Printf("  %s JWT expiry: %s\n", checkMark, cfg.Auth.JWTExpiry)
	if cfg.RateLimit.Disabled {
		fmt.Printf("  %s Rate limiting: disabled\n", crossMark)
	} else {
		fmt.Printf("  %s Rate limiting: %d/%s (strict: %d/%s)\n", checkMark,
			cfg.RateLimit.Max, cfg.RateLimit.Window,
			cfg.RateLimit.StrictMax, cfg.RateLimit.StrictWindow)
	}
	if cfg.Server.FrontendURL != "" {
		fmt.Printf("  %s CORS origin: %s\n", checkMark, cfg.Server.FrontendURL)
	}

	if validateCheckDatabase {
		if err := checkDatabaseWritable(cfg.Database.DSN); err != nil {
			fmt.Printf("  %s Database writable\n", crossMark)
			fmt.Printf("      Error: %v\n", err)
			return err
		}
		fmt.Printf("  %s Database writable\n", checkMark)
	}

	fmt.Println("\nConfiguration is valid.")
	return nil
}

func checkDatabaseWritable(dsn string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Migrate()
}
