package main

import (
	"fmt"  // Output
	"io"   // Output writer
	"time" // Grace period

	"report_portal/internal/blob"    // Object storage
	"report_portal/internal/config"  // Configuration
	"report_portal/internal/service" // Reconciliation
	"report_portal/internal/store"   // Repositories

	"github.com/spf13/cobra" // CLI framework
	"gorm.io/gorm"           // GORM ORM library
)

func newReconcileCmd(cfg *config.Config, verbose *bool) *cobra.Command {
	var (
		dryRun    bool
		olderThan time.Duration
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Delete stored blobs that no report points at",
		Long: "Lists every client container and removes objects without a matching report row.\n" +
			"Objects younger than --older-than are skipped so uploads in flight are never touched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			blobs, _, err := blob.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return withDB(cfg, *verbose, func(gdb *gorm.DB) error {
				svc := service.NewReportService(store.NewUserRepository(gdb), store.NewReportRepository(gdb),
					blobs, nil, nil, nil, cfg.SignedURLTTL)
				orphans, err := svc.ReconcileOrphans(cmd.Context(), olderThan, dryRun)
				printOrphans(cmd.OutOrStdout(), orphans, dryRun)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only list orphaned blobs")
	cmd.Flags().DurationVar(&olderThan, "older-than", time.Hour, "grace period for recent uploads")
	return cmd
}

func printOrphans(w io.Writer, orphans []service.Orphan, dryRun bool) {
	verb := "deleted"
	if dryRun {
		verb = "would delete"
	}
	for _, o := range orphans {
		fmt.Fprintf(w, "%s client-%d/%s (modified %s)\n", verb, o.ClientID, o.Key, o.Modified.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(w, "%d orphaned blob(s)\n", len(orphans))
}
