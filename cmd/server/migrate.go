package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yukikurage/taskboard/internal/database"
	"go.uber.org/zap"
)

func newMigrateCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the relational schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(*configDir)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			switch cfg.StoreDriver {
			case "memory", "redis":
				return fmt.Errorf("store driver %q has no schema to migrate", cfg.StoreDriver)
			}

			db, err := database.Connect(cfg, log)
			if err != nil {
				return err
			}
			if err := database.Migrate(db, log); err != nil {
				return err
			}
			log.Info("migration finished", zap.String("driver", cfg.StoreDriver))
			return nil
		},
	}
}
