// Package cmd implements the CLI commands for RecipePipe using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gaurav-prasanna/recipepipe/core/config"
)

var (
	cfgFile   string
	flagDebug bool
	flagDB    string
)

var rootCmd = &cobra.Command{
	Use:   "recipepipe",
	Short: "RecipePipe: import recipes from any recipe web page",
	Long: `RecipePipe fetches recipe pages, extracts a structured recipe from
JSON-LD, microdata or the page layout itself, and keeps it in a local
collection you can search, annotate, export or serve over HTTP.

Usage:
  recipepipe import <url> [flags]
  recipepipe list
  recipepipe serve`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./recipepipe.yaml or ./config/recipepipe.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides database.path)")
}

// initConfig reads config sources and binds the persistent flags.
func initConfig(cmd *cobra.Command) error {
	v := viper.GetViper()
	if err := config.Setup(v, cfgFile); err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("log.development", flags.Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	if flagDebug {
		v.Set("log.level", "debug")
	}
	if flagDB != "" {
		v.Set("database.path", flagDB)
	}
	return nil
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
