// Command celebrations runs the celebrations backend: the wish API, the
// daily dispatch scheduler and a few operator commands sharing the same
// configuration.
//
//	@title						Celebrations API
//	@version					1.0
//	@description				Wish generation with a persisted per-client limit, roster management and the exactly-once daily celebration dispatch.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-celebrations-backend/internal/config"
	"github.com/tbourn/go-celebrations-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "celebrations",
		Short:         "Celebrations backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment (missing file is ignored)")

	load := func(component string) (config.Config, error) {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
				return config.Config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
		cfg, err := config.Load()
		if err != nil {
			return cfg, err
		}
		sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, component)
		return cfg, nil
	}

	root.AddCommand(newServeCmd(load))
	root.AddCommand(newDispatchCmd(load))
	root.AddCommand(newImportCmd(load))
	root.AddCommand(newTokenCmd(load))
	return root
}

// loader reads configuration and installs the logger for one command.
type loader func(component string) (config.Config, error)
