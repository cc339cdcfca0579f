package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/handlers"
)

func newMaintenanceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Journal housekeeping",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Remove methods stored without an id",
		Long: `Remove method rows whose id is NULL or empty. This also runs
automatically before every other journal command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.openJournal(ctx, false, func(h *handlers.Handlers) error {
				return emit(a, cmd, h.CleanupMethods(ctx), func(p *printer, n int64) error {
					fmt.Fprintf(p.w, "removed %d invalid methods\n", n)
					return nil
				})
			})
		},
	})
	return cmd
}
