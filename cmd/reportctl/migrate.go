package main

import (
	"report_portal/internal/config" // Configuration
	"report_portal/internal/db"     // Schema

	"github.com/spf13/cobra" // CLI framework
	"gorm.io/gorm"           // GORM ORM library
)

func newMigrateCmd(cfg *config.Config, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users and reports tables",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return withDB(cfg, *verbose, func(gdb *gorm.DB) error {
				return db.Migrate(gdb)
			})
		},
	}
}
