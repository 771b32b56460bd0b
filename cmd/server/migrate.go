package main

import (
	"github.com/spf13/cobra"

	"notes-api/internal/server"
)

var migrateSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and insert the seed notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		dbCfg := *cfg.Database
		dbCfg.AutoMigrate = true
		dbCfg.Seed = migrateSeed

		store, err := server.OpenStore(cmd.Context(), &dbCfg, log)
		if err != nil {
			return err
		}
		if c, ok := store.(interface{ Close() error }); ok {
			defer c.Close()
		}

		log.Info().Str("driver", dbCfg.Driver).Msg("Migration completed")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", true, "Insert the seed notes if they are absent")
}
