package main

import (
	"github.com/spf13/cobra"

	"github.com/cultivated-hq/pulse-service/internal/repositories/postgres"
	"github.com/cultivated-hq/pulse-service/pkg"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := postgres.AutoMigrate(db); err != nil {
				return err
			}
			logger.Info("Database schema is up to date")
			return nil
		},
	}
}
