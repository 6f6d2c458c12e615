package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mithrel/fitcoach/internal/present"
)

func newRoutineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "routine",
		Aliases: []string{"routines"},
		Short:   "Manage your saved routine",
	}
	cmd.AddCommand(newRoutineListCmd())
	cmd.AddCommand(newRoutineAddCmd())
	cmd.AddCommand(newRoutineDeleteCmd())
	return cmd
}

func newRoutineListCmd() *cobra.Command {
	var page int
	var noHeaders bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved exercises, most viewed first",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := presentOptions(cmd, noHeaders)
			if err != nil {
				return err
			}
			p, err := getApp(cmd).Client.Routines(cmd.Context(), page)
			if err != nil {
				return err
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderRoutines(w, p, opts)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	addHeaderFlag(cmd, &noHeaders)
	return cmd
}

func newRoutineAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <exercise-id>",
		Short: "Save an exercise to your routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := getApp(cmd).Client.AddRoutine(cmd.Context(), id)
			if err != nil {
				return err
			}
			name := fmt.Sprintf("#%d", id)
			if res.Exercise != nil {
				name = res.Exercise.Name
			}
			if res.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to your routine\n", name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already in your routine\n", name)
			}
			return nil
		},
	}
}

func newRoutineDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <exercise-id>",
		Aliases: []string{"rm"},
		Short:   "Remove an exercise from your routine",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := getApp(cmd).Client.DeleteRoutine(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed #%d from your routine\n", id)
			return nil
		},
	}
}
