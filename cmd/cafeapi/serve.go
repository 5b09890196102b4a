package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lionscafe/api/bootstrap"
)

var hotReload bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Lion's Cafe API server.

The server will:
  - Load configuration from cafeapi.yaml (or --config)
  - Or load configuration from CAFE_* environment variables
  - Open the database and apply migrations
  - Serve the REST API with authentication and rate limiting

Environment variables (for Docker deployments):
  CAFE_JWT_SECRET     - JWT signing secret, min 32 chars (required)
  CAFE_DATABASE_DSN   - Database path (default: cafeapi.db)
  CAFE_SERVER_PORT    - Server port (default: 8080)
  CAFE_FRONTEND_URL   - Allowed CORS origin
  CAFE_LOG_LEVEL      - Log level: debug, info, warn, error

Examples:
  cafeapi serve
  cafeapi serve --config /etc/cafeapi/config.yaml
  cafeapi serve --hot-reload=false

  # Docker (env vars only):
  CAFE_JWT_SECRET=... cafeapi serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	if !hasConfigFile && os.Getenv("CAFE_JWT_SECRET") == "" {
		fmt.Println("No configuration found.")
		fmt.Println()
		fmt.Printf("Option 1: Create %s\n", cfgFile)
		fmt.Println("Option 2: Set CAFE_JWT_SECRET and friends in the environment")
		fmt.Println()
		fmt.Println("Example (env vars):")
		fmt.Println("  CAFE_JWT_SECRET=$(openssl rand -hex 32) cafeapi serve")
		return nil
	}

	opts := bootstrap.Options{}
	if hasConfigFile && hotReload {
		opts.ConfigPath = cfgFile
	} else if hasConfigFile {
		// File without hot reload: still read it, just no watcher.
		opts.ConfigPath = cfgFile
		opts.DisableWatch = true
	}

	app, err := bootstrap.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	return app.Run()
}
