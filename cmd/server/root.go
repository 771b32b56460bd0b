package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"notes-api/internal/config"
	"notes-api/internal/logger"
)

const defaultConfigFile = "config.yml"

var (
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notes-api",
	Short: "Notes CRUD API with paginated, filtered and sorted listing",
	Long: `notes-api serves a JSON HTTP API for notes backed by PostgreSQL, SQLite
or an in-memory store, plus a gRPC health endpoint.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// loadConfig загружает конфигурацию и создает логгер приложения
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("error initializing config: %w", err)
	}

	level := cfg.Logger.Level
	if verbose {
		level = zerolog.DebugLevel.String()
	}
	log := logger.New(logger.Options{
		Level:   level,
		Format:  cfg.Logger.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	return cfg, log, nil
}
