// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the price-scout CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/price-scout/internal/logging"
	"github.com/pdiddy/price-scout/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the price-scout CLI.
var rootCmd = &cobra.Command{
	Use:   "price-scout",
	Short: "Compare collectible prices across two retail sources",
	Long: `price-scout prices a catalog of collectible items against two retail
sources: a paginated listing site crawled over HTTP and an interactive
storefront driven through real browser sessions. Each run matches the
catalog against both sources, reconciles the prices, and reports which
source is cheaper per item.

Runs are recorded to a local price history so movement can be tracked
over time with the history command.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./price-scout.yaml or ~/.config/price-scout/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("price-scout")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "price-scout"))
		}
	}

	viper.SetEnvPrefix("PRICE_SCOUT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig starts from the production defaults and applies any
// overrides present in the config file or environment.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()

	if viper.IsSet("match_threshold") {
		cfg.MatchThreshold = viper.GetFloat64("match_threshold")
	}
	if viper.IsSet("fastbuy.base_url") {
		cfg.Fastbuy.BaseURL = viper.GetString("fastbuy.base_url")
	}
	if viper.IsSet("fastbuy.category_id") {
		cfg.Fastbuy.CategoryID = viper.GetInt("fastbuy.category_id")
	}
	if viper.IsSet("fastbuy.pages") {
		cfg.Fastbuy.Pages = viper.GetInt("fastbuy.pages")
	}
	if viper.IsSet("fastbuy.stagger") {
		cfg.Fastbuy.Stagger = viper.GetDuration("fastbuy.stagger")
	}
	if viper.IsSet("onechome.base_url") {
		cfg.Onechome.BaseURL = viper.GetString("onechome.base_url")
	}
	if viper.IsSet("onechome.sessions") {
		cfg.Onechome.Sessions = viper.GetInt("onechome.sessions")
	}
	if viper.IsSet("onechome.headless") {
		cfg.Onechome.Headless = viper.GetBool("onechome.headless")
	}
	if viper.IsSet("onechome.result_wait") {
		cfg.Onechome.ResultWait = viper.GetDuration("onechome.result_wait")
	}
	if viper.IsSet("store.dir") {
		cfg.Store.Dir = viper.GetString("store.dir")
	}

	return cfg
}

// newLogger builds the process logger from the persistent flags.
func newLogger() *zap.Logger {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonFormat, _ := rootCmd.PersistentFlags().GetBool("log-json")
	return logging.New(level, jsonFormat)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
