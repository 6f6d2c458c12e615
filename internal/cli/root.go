package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/fitcoach/internal/config"
	"github.com/mithrel/fitcoach/internal/wire"
)

type ctxKey string

const appKey ctxKey = "app"

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the Cobra root command and wires dependencies.
func NewRootCmd() *cobra.Command {
	var cfgPath string
	var output string
	var logLevel string

	cmd := &cobra.Command{
		Use:           "fitcoach-cli",
		Short:         "fitcoach: condition-based exercise recommendations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			if err := config.Load(cmd.Context(), v); err != nil {
				return err
			}
			// Flags win over file and env.
			if output != "" {
				v.Set("output", output)
			}
			if logLevel != "" {
				v.Set("log.level", logLevel)
			}
			app, err := wire.BuildApp(cmd.Context(), v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml)")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output mode: auto|plain|pretty|json|html")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "plain", "pretty", "json", "html"}, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(newRecommendCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newRoutineCmd())
	cmd.AddCommand(newExerciseCmd())
	cmd.AddCommand(newGuideCmd())
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newServerCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func getApp(cmd *cobra.Command) *wire.App {
	v := cmd.Context().Value(appKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return v.(*wire.App)
}
