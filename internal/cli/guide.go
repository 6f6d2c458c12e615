package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mithrel/fitcoach/internal/present"
)

func newGuideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Work with beginner-guide markup",
	}
	cmd.AddCommand(newGuideRenderCmd())
	return cmd
}

func newGuideRenderCmd() *cobra.Command {
	var file string
	var escape bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render guide markup from a file or stdin",
		Long: `Render guide markup to HTML. Input is read from --file, or stdin when
--file is empty or "-". Output defaults to HTML unless --output selects
another mode.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if file == "" || file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return err
			}
			opts, err := presentOptions(cmd, false)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("output") && getApp(cmd).Cfg.GetString("output") == "auto" {
				opts.Mode = present.ModeHTML
			}
			if cmd.Flags().Changed("escape") {
				opts.Guide.Escape = escape
			}
			return present.RenderGuide(cmd.OutOrStdout(), string(data), opts)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "guide file (default stdin)")
	cmd.Flags().BoolVar(&escape, "escape", false, "HTML-escape guide content (overrides guide.escape)")
	return cmd
}
