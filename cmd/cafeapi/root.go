package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cafeapi",
	Short: "Restaurant backend with menu, ordering, reservations, and staff management",
	Long: `Lion's Cafe API serves the restaurant's customer and staff apps.

It handles accounts, the menu catalogue, dine-in and takeaway orders,
and table reservations behind a single authenticated HTTP API.

Quick start:
  cafeapi serve              # Start the API server
  cafeapi admin create       # Create the first admin account

Management:
  cafeapi admin     # Manage admin accounts
  cafeapi validate  # Validate configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "cafeapi.yaml", "config file path")
}
