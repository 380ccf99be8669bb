// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cheminf CLI, the command-line
// surface of the cheminformatics course helpers: PubChem searches,
// batch property retrieval, and the local compound store.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rebelford/CheminformaticsPackage26/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is the CLI-wide structured logger, configured from --log-level
// before any subcommand runs. Library packages receive it explicitly.
var logger zerolog.Logger

const defaultUserAgent = "cheminf/0.1"

// rootCmd is the base command for the cheminf CLI.
var rootCmd = &cobra.Command{
	Use:   "cheminf",
	Short: "Course helpers for the PubChem PUG-REST API",
	Long: `cheminf wraps the PubChem PUG-REST API for the cheminformatics course:
fast similarity and identity searches by SMILES, chunked batch property
retrieval for large CID lists, and a local SQLite compound store for
offline notebook work.

Retrieval degrades gracefully: chunks that fail after all transport
retries are reported by index so they can be retried out of band.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		initLogger(level)
	},
}

func initLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(lvl).With().Timestamp().Logger()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cheminf.yaml or ~/.config/cheminf/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: trace, debug, info, warn, error")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cheminf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cheminf"))
		}
	}

	viper.SetEnvPrefix("CHEMINF")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// addHTTPFlags registers the transport flags shared by every command
// that talks to the API.
func addHTTPFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	cmd.Flags().Int("retries", 0, "attempts per request (default 3)")
	cmd.Flags().Duration("base-delay", 0, "base backoff delay between attempts (default 2s)")
}

// httpConfig resolves the transport settings: flag, then config file,
// then the transport's built-in default for anything still unset.
func httpConfig(cmd *cobra.Command) types.HTTPConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	retries, _ := cmd.Flags().GetInt("retries")
	baseDelay, _ := cmd.Flags().GetDuration("base-delay")

	if timeout == 0 {
		timeout = viper.GetDuration("http.timeout")
	}
	if retries == 0 {
		retries = viper.GetInt("http.retries")
	}
	if baseDelay == 0 {
		baseDelay = viper.GetDuration("http.base_delay")
	}

	return types.HTTPConfig{
		Timeout:   timeout,
		UserAgent: defaultUserAgent,
		Retries:   retries,
		BaseDelay: baseDelay,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
