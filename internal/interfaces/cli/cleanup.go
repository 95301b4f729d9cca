package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/application/cleanup"
)

func newCleanupCommand(opts *RootOptions) *cobra.Command {
	var (
		relTypes []string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup-edges",
		Short: "Audit persisted edges against current policies and demote or delete the stale ones",
		Long:  "cleanup-edges re-checks every selected relationship edge against the\ncurrent similarity thresholds.  Edges below the candidate band, and edges\nwritten before similarities were recorded, are deleted; edges in the band\nare demoted to candidate edges.  Runs as a dry run unless --dry-run=false.",
		Example: `  companygraph cleanup-edges --types HAS_SUPPLIER
  companygraph cleanup-edges --dry-run=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Cleanup.Run(cmd.Context(), cleanup.Request{
				Types:  relTypes,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringSliceVar(&relTypes, "types", nil, "relationship types to audit (default: all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "report what would change without touching the graph")
	return cmd
}
