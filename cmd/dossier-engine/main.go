// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the dossier-engine CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/dossier-engine/internal/secrets"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds one file per provider credential.
const secretsDir = ".secrets/"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is built in PersistentPreRunE from --verbose.
var logger = zap.NewNop()

// rootCmd is the base command for the dossier-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "dossier-engine",
	Short: "Research guests and write interview dossiers",
	Long: `dossier-engine prepares guest dossiers for a talk show. For a guest name it
checks who the person is, gathers deep research from several providers,
filters out namesakes, and streams a structured Markdown dossier.

Each stage is a subcommand: identify, research, and dossier. The run
command chains all of them and records the run in a local SQLite log.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secretsDir, os.Stderr)
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./dossier-engine.yaml or ~/.config/dossier-engine/dossier-engine.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().String("research-dir", "", "directory for research files (default .tmp)")
	rootCmd.PersistentFlags().String("dossier-dir", "", "directory for dossiers (default dossiers)")
	rootCmd.PersistentFlags().String("show-info", "", "show context document fed to the dossier writer")
	rootCmd.PersistentFlags().String("db", "", "SQLite run log (default .tmp/runs.db)")

	_ = viper.BindPFlag("research_dir", rootCmd.PersistentFlags().Lookup("research-dir"))
	_ = viper.BindPFlag("dossier_dir", rootCmd.PersistentFlags().Lookup("dossier-dir"))
	_ = viper.BindPFlag("show_info", rootCmd.PersistentFlags().Lookup("show-info"))
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dossier-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dossier-engine"))
		}
	}

	viper.SetEnvPrefix("DOSSIER_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// describe turns the typed pipeline errors into something an operator can act on.
func describe(err error) string {
	var ce *types.ConfigurationError
	if errors.As(err, &ce) {
		return fmt.Sprintf("%v: put it in %s%s or set %s", err, secretsDir, ce.Key, secrets.EnvName(ce.Key))
	}

	var tf *types.TotalFailureError
	if errors.As(err, &tf) {
		var b strings.Builder
		fmt.Fprintf(&b, "research for %q failed with every provider:", tf.Name)
		for _, c := range tf.Causes {
			fmt.Fprintf(&b, "\n  - %v", c)
		}
		return b.String()
	}

	var pe *types.ProviderError
	if errors.As(err, &pe) && pe.Status == 401 {
		return fmt.Sprintf("%v (check the %s credential)", err, pe.Provider)
	}
	return err.Error()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}
