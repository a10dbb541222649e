// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the m2m-fetch CLI.
// It searches the USGS M2M catalog for Landsat scenes and downloads the
// selected scene bundles.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/m2m-fetch/internal/output"
	"github.com/pdiddy/m2m-fetch/internal/secrets"
	"github.com/pdiddy/m2m-fetch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// printer is configured from --color before any subcommand runs.
var printer = output.NewPrinter(os.Stdout, os.Stderr, false)

// rootCmd is the base command for the m2m-fetch CLI.
var rootCmd = &cobra.Command{
	Use:   "m2m-fetch",
	Short: "Search and download Landsat scenes through the USGS M2M API",
	Long: `m2m-fetch logs in to the USGS Machine-to-Machine API, finds the scenes
covering a WRS path/row or a point, keeps the Level-1 product bundles that
are available, resolves their download URLs, and fetches the archives.

Credentials come from .secrets/m2m-username and .secrets/m2m-password, or
from M2M_FETCH_USERNAME and M2M_FETCH_PASSWORD.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode, err := output.ParseColorMode(viper.GetString("color"))
		if err != nil {
			return err
		}
		printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(mode))

		s, err := secrets.Load(viper.GetString("secrets_dir"))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(cmd.ErrOrStderr(), "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./m2m-fetch.yaml or ~/.config/m2m-fetch/m2m-fetch.yaml)")
	pf.String("color", "auto", "color output: auto, always, or never")
	pf.String("secrets-dir", ".secrets", "directory holding m2m-username and m2m-password")
	pf.String("base-url", "", "M2M API root (default "+types.DefaultBaseURL+")")
	pf.Float64("rate-limit", 0, "maximum catalog requests per second (0 = unlimited)")

	for key, flag := range map[string]string{
		"color":                       "color",
		"secrets_dir":                 "secrets-dir",
		"session.base_url":            "base-url",
		"session.requests_per_second": "rate-limit",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("m2m-fetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "m2m-fetch"))
		}
	}

	viper.SetEnvPrefix("M2M_FETCH")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// execute runs the root command with args and reports a failure through
// the printer.
func execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printer.Error("%v", err)
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}
