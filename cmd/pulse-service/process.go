package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cultivated-hq/pulse-service/internal/services"
)

type ProcessFlags struct {
	DryRun       bool
	Limit        int
	ArchiveAfter time.Duration
}

func (f *ProcessFlags) BindFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&f.DryRun, "dry-run", f.DryRun, "List the sessions that would be processed without sending anything")
	fs.IntVar(&f.Limit, "limit", f.Limit, "Maximum number of sessions to process; 0 means no limit")
	fs.DurationVar(&f.ArchiveAfter, "archive-after", f.ArchiveAfter, "Also deactivate sessions expired longer than this; 0 skips archiving")
}

// NewProcessExpiredCommand runs a single expiry pass, suitable for cron
func NewProcessExpiredCommand() *cobra.Command {
	f := &ProcessFlags{}

	cmd := &cobra.Command{
		Use:   "process-expired",
		Short: "Send final reports for expired sessions once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApplication(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			summary, err := app.services.Report().ProcessExpiredSessions(ctx, services.ProcessOptions{
				Limit:  f.Limit,
				DryRun: f.DryRun,
			})
			if err != nil {
				return err
			}

			if f.ArchiveAfter > 0 && !f.DryRun {
				archived, err := app.services.Report().ArchiveStaleSessions(ctx, f.ArchiveAfter)
				if err != nil {
					return err
				}
				app.logger.Info("Archived stale sessions", "count", archived)
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(summary)
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
