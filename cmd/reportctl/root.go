package main

import (
	"report_portal/internal/config" // Configuration
	"report_portal/internal/db"     // Database connection

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"github.com/spf13/cobra"     // CLI framework
	"gorm.io/gorm"               // GORM ORM library
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Administer the report portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log SQL and debug output")

	root.AddCommand(newMigrateCmd(cfg, &verbose))
	root.AddCommand(newUserCmd(cfg, &verbose))
	root.AddCommand(newReconcileCmd(cfg, &verbose))
	return root
}

// withDB opens the database for one command and closes it afterwards
func withDB(cfg *config.Config, verbose bool, fn func(*gorm.DB) error) error {
	gdb, err := db.Open(cfg.DSN(), cfg.DBMaxOpenConns, verbose)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(gdb)
}
