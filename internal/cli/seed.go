package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/fitcoach/internal/db"
	"github.com/mithrel/fitcoach/pkg/models"
)

// seedFile is the JSON layout accepted by "seed".
type seedFile struct {
	Users []struct {
		Username string `json:"username"`
		Token    string `json:"token"`
		IsStaff  bool   `json:"is_staff"`
	} `json:"users"`
	Exercises []models.Exercise `json:"exercises"`
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users and exercises into the server database",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var in seedFile
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			app := getApp(cmd)
			store, closer, err := app.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closer.Close()

			users, exercises := 0, 0
			err = db.InTx(cmd.Context(), store.Tx, func(ctx context.Context) error {
				for _, u := range in.Users {
					if strings.TrimSpace(u.Username) == "" || strings.TrimSpace(u.Token) == "" {
						return fmt.Errorf("user entries need username and token")
					}
					if _, err := store.Users.CreateUser(ctx, models.User{Username: u.Username, Token: u.Token, IsStaff: u.IsStaff}); err != nil {
						return fmt.Errorf("user %s: %w", u.Username, err)
					}
					users++
				}
				for _, ex := range in.Exercises {
					if strings.TrimSpace(ex.Name) == "" {
						return fmt.Errorf("exercise entries need a name")
					}
					if _, err := store.Catalog.CreateExercise(ctx, ex); err != nil {
						return fmt.Errorf("exercise %s: %w", ex.Name, err)
					}
					exercises++
				}
				return nil
			})
			if err != nil {
				return err
			}
			app.Log.Info("seeded database", "users", users, "exercises", exercises)
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users and %d exercises\n", users, exercises)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed JSON file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
