package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mithrel/fitcoach/internal/present"
)

func newExerciseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exercise",
		Aliases: []string{"exercises", "menu"},
		Short:   "Browse the exercise catalog",
	}
	cmd.AddCommand(newExerciseListCmd())
	cmd.AddCommand(newExerciseShowCmd())
	return cmd
}

func newExerciseListCmd() *cobra.Command {
	var page int
	var noHeaders bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List exercises",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := presentOptions(cmd, noHeaders)
			if err != nil {
				return err
			}
			p, err := getApp(cmd).Client.Exercises(cmd.Context(), page)
			if err != nil {
				return err
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderExercisePage(w, p, opts)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	addHeaderFlag(cmd, &noHeaders)
	return cmd
}

func newExerciseShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <exercise-id>",
		Short: "Show one exercise with its beginner guide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			opts, err := presentOptions(cmd, false)
			if err != nil {
				return err
			}
			ex, err := getApp(cmd).Client.Exercise(cmd.Context(), id)
			if err != nil {
				return err
			}
			return present.RenderExercise(cmd.OutOrStdout(), ex, opts)
		},
	}
}
