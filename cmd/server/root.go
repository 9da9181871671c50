package main

import (
	"fmt"
	"os"

	"github.com/printstudio/internal/config"
	"github.com/printstudio/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfg     config.AppConfig
	verbose bool
)

// rootCmd serves the site when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "printstudio",
	Short: "Print studio website with live draft editing",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if verbose {
			cfg.LogLevel = "debug"
		}
		logger.Init(cfg.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

// Execute runs the command tree; main calls it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
