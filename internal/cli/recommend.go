package cli

import (
	"github.com/spf13/cobra"

	"github.com/mithrel/fitcoach/internal/present"
	"github.com/mithrel/fitcoach/pkg/models"
)

func newRecommendCmd() *cobra.Command {
	var in models.ConditionInput
	var noHeaders bool
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Log today's condition and get exercise recommendations",
		Example: `  fitcoach-cli recommend --fatigue 2 --mood 4 --concern "stiff shoulders"
  fitcoach-cli recommend --fatigue 5 --mood 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.Validate(); err != nil {
				return err
			}
			opts, err := presentOptions(cmd, noHeaders)
			if err != nil {
				return err
			}
			rec, err := getApp(cmd).Client.Recommend(cmd.Context(), in)
			if err != nil {
				return err
			}
			return present.RenderRecommendation(cmd.OutOrStdout(), rec, opts)
		},
	}
	cmd.Flags().IntVar(&in.FatigueLevel, "fatigue", 0, "fatigue level 1-5 (required)")
	cmd.Flags().IntVar(&in.MoodLevel, "mood", 0, "mood level 1-5 (required)")
	cmd.Flags().StringVar(&in.BodyConcern, "concern", "", "free text about body concerns")
	_ = cmd.MarkFlagRequired("fatigue")
	_ = cmd.MarkFlagRequired("mood")
	addHeaderFlag(cmd, &noHeaders)
	return cmd
}
