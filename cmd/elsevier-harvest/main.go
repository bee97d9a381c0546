// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the elsevier-harvest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/elsevier-harvest/internal/logging"
	"github.com/pdiddy/elsevier-harvest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// creds holds the provider credentials resolved at startup.
var creds secrets.Credentials

// logger is the pipeline-wide structured logger.
var logger zerolog.Logger

// rootCmd is the base command for the elsevier-harvest CLI.
var rootCmd = &cobra.Command{
	Use:   "elsevier-harvest",
	Short: "Harvest article metadata, PlumX metrics, and figures from Elsevier APIs",
	Long: `elsevier-harvest queries the ScienceDirect and Scopus search APIs, the
PlumX analytics API, and the object retrieval API, and writes the results
to local CSV/JSON files and an optional SQLite archive.

Each stage is a subcommand: search, metrics, objects, and harvest (search
and metrics end to end). Credentials come from .secrets/ files
(elsevier-api-key, elsevier-inst-token) or ELSEVIER_API_KEY /
ELSEVIER_INST_TOKEN in the environment.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		pretty, _ := cmd.Flags().GetBool("pretty")
		logger = logging.New(logging.Config{Level: level, Pretty: pretty})

		c, err := secrets.Resolve(".secrets/")
		if err != nil {
			return err
		}
		creds = c
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./elsevier-harvest.yaml or ~/.config/elsevier-harvest/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("pretty", false, "human-readable log output")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("elsevier-harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "elsevier-harvest"))
		}
	}

	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("http.user_agent", "elsevier-harvest/"+version)
	viper.SetDefault("rate.min_interval", time.Second)
	viper.SetDefault("rate.multiplier", 2.0)
	viper.SetDefault("rate.ceiling", 2*time.Minute)
	viper.SetDefault("rate.max_retries", 5)
	viper.SetDefault("rate.network_retries", 2)
	viper.SetDefault("output.dir", filepath.Join("results", "search_queries"))
	viper.SetDefault("objects.output_dir", filepath.Join("results", "objects"))

	viper.SetEnvPrefix("ELSEVIER_HARVEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
