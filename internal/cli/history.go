package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mithrel/fitcoach/internal/present"
)

func newHistoryCmd() *cobra.Command {
	var page int
	var noHeaders bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent condition logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := presentOptions(cmd, noHeaders)
			if err != nil {
				return err
			}
			p, err := getApp(cmd).Client.History(cmd.Context(), page)
			if err != nil {
				return err
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderHistory(w, p, opts)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number (0 lets the server pick the first page)")
	addHeaderFlag(cmd, &noHeaders)
	return cmd
}
