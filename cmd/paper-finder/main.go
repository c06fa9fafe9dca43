// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-finder CLI. paper-finder
// locates legal open-access copies of scholarly papers; the serve command
// exposes the pipeline over HTTP, lookup runs it once from the terminal.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-finder/internal/secrets"
	"github.com/pdiddy/paper-finder/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the paper-finder CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-finder",
	Short: "Locate legal open-access copies of scholarly papers",
	Long: `paper-finder resolves a paper title plus first-author last name to the best
bibliographic match across Crossref and Europe PMC, enriches it with
open-access full-text URLs via Unpaywall, and offers a one-shot download.

Run "paper-finder serve" for the HTTP API or "paper-finder lookup" for a
single lookup from the terminal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env values feed viper's AutomaticEnv pickup below.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "warning: could not load .env:", err)
		}
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-finder.yaml or ~/.config/paper-finder/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-finder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-finder"))
		}
	}

	viper.SetEnvPrefix("PAPER_FINDER")
	viper.AutomaticEnv()

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.download_timeout", 2*time.Minute)
	viper.SetDefault("search.timeout", 20*time.Second)
	viper.SetDefault("search.user_agent", "paper-finder/"+version)
	viper.SetDefault("search.max_results", 15)
	viper.SetDefault("search.enable_crossref", true)
	viper.SetDefault("search.enable_europe_pmc", true)
	viper.SetDefault("search.requests_per_second", 5.0)
	viper.SetDefault("token.ttl", 30*time.Minute)
	viper.SetDefault("token.sweep_interval", 5*time.Minute)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// appConfig assembles the typed configuration from viper and secrets.
// The Unpaywall email resolves in order: config/env, then .secrets/.
func appConfig() types.AppConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("search.timeout"),
		UserAgent: viper.GetString("search.user_agent"),
	}

	email := viper.GetString("unpaywall.email")
	if email == "" {
		email = loadedSecrets[secrets.UnpaywallEmailKey]
	}

	return types.AppConfig{
		Search: types.SearchConfig{
			HTTPConfig:        httpCfg,
			MaxResults:        viper.GetInt("search.max_results"),
			EnableCrossref:    viper.GetBool("search.enable_crossref"),
			EnableEuropePMC:   viper.GetBool("search.enable_europe_pmc"),
			RequestsPerSecond: viper.GetFloat64("search.requests_per_second"),
		},
		Unpaywall: types.UnpaywallConfig{
			HTTPConfig: httpCfg,
			Email:      email,
		},
		Token: types.TokenConfig{
			TTL:           viper.GetDuration("token.ttl"),
			SweepInterval: viper.GetDuration("token.sweep_interval"),
		},
		Server: types.ServerConfig{
			Addr:            viper.GetString("server.addr"),
			DownloadTimeout: viper.GetDuration("server.download_timeout"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
