package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/fitcoach/internal/present"
	"github.com/mithrel/fitcoach/pkg/models"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "admin",
		Aliases: []string{"manage"},
		Short:   "Staff tools: dashboard, accounts, catalog and tags",
	}
	cmd.AddCommand(newAdminStatsCmd())
	cmd.AddCommand(newAdminUserCmd())
	cmd.AddCommand(newAdminExerciseCmd())
	cmd.AddCommand(newAdminTagCmd())
	return cmd
}

func newAdminStatsCmd() *cobra.Command {
	var noHeaders bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show user, log and catalog totals with the latest logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := presentOptions(cmd, noHeaders)
			if err != nil {
				return err
			}
			st, err := getApp(cmd).Client.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return present.RenderStats(cmd.OutOrStdout(), st, opts)
		},
	}
	addHeaderFlag(cmd, &noHeaders)
	return cmd
}

func newAdminUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"users"},
		Short:   "List and update accounts",
	}

	var query string
	var page int
	var noHeaders bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := presentOptions(cmd, noHeaders)
			if err != nil {
				return err
			}
			p, err := getApp(cmd).Client.Users(cmd.Context(), query, page)
			if err != nil {
				return err
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderUsers(w, p, opts)
			})
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "filter usernames")
	list.Flags().IntVar(&page, "page", 0, "page number")
	addHeaderFlag(list, &noHeaders)

	show := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show an account with its recent condition logs",
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
			d, err := getApp(cmd).Client.User(cmd.Context(), id)
			if err != nil {
				return err
			}
			return present.RenderUserDetail(cmd.OutOrStdout(), d, opts)
		},
	}

	var isStaff, isActive bool
	set := &cobra.Command{
		Use:   "set <user-id>",
		Short: "Change staff or active flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var patch models.UserPatch
			if cmd.Flags().Changed("staff") {
				patch.IsStaff = &isStaff
			}
			if cmd.Flags().Changed("active") {
				patch.IsActive = &isActive
			}
			if patch.IsStaff == nil && patch.IsActive == nil {
				return fmt.Errorf("nothing to change: pass --staff and/or --active")
			}
			u, err := getApp(cmd).Client.UpdateUser(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (staff=%t active=%t)\n", u.Username, u.IsStaff, u.IsActive)
			return nil
		},
	}
	set.Flags().BoolVar(&isStaff, "staff", false, "grant or revoke staff access")
	set.Flags().BoolVar(&isActive, "active", true, "enable or disable the account")

	cmd.AddCommand(list, show, set)
	return cmd
}

// exerciseFlags are shared by "admin exercise add" and "edit".
type exerciseFlags struct {
	name, description, guideFile, category, target string
	tags                                           []string
}

func (f *exerciseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "exercise name")
	cmd.Flags().StringVar(&f.description, "description", "", "short description")
	cmd.Flags().StringVar(&f.guideFile, "guide-file", "", `beginner guide markup file ("-" for stdin)`)
	cmd.Flags().StringVar(&f.category, "category", "", "stretch|strength|cardio|other")
	cmd.Flags().StringVar(&f.target, "target", "", "target body area")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "comma separated tag names")
	_ = cmd.RegisterFlagCompletionFunc("category", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"stretch", "strength", "cardio", "other"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// apply copies the flags the user set onto ex.
func (f *exerciseFlags) apply(cmd *cobra.Command, ex *models.Exercise) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		ex.Name = f.name
	}
	if changed("description") {
		ex.Description = f.description
	}
	if changed("category") {
		ex.Category = models.Category(f.category)
	}
	if changed("target") {
		ex.TargetArea = f.target
	}
	if changed("tags") {
		ex.Tags = ex.Tags[:0:0]
		for _, t := range f.tags {
			if t = strings.TrimSpace(t); t != "" {
				ex.Tags = append(ex.Tags, models.Tag{Name: t})
			}
		}
	}
	if changed("guide-file") {
		var data []byte
		var err error
		if f.guideFile == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(f.guideFile)
		}
		if err != nil {
			return err
		}
		ex.BeginnerGuide = string(data)
	}
	return nil
}

func newAdminExerciseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exercise",
		Aliases: []string{"exercises"},
		Short:   "Search, create, edit and delete catalog exercises",
	}

	var query string
	var page int
	var noHeaders bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List exercises, optionally filtered by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := presentOptions(cmd, noHeaders)
			if err != nil {
				return err
			}
			p, err := getApp(cmd).Client.AdminExercises(cmd.Context(), query, page)
			if err != nil {
				return err
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderExercisePage(w, p, opts)
			})
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "filter names")
	list.Flags().IntVar(&page, "page", 0, "page number")
	addHeaderFlag(list, &noHeaders)

	var addFlags exerciseFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an exercise",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ex models.Exercise
			if err := addFlags.apply(cmd, &ex); err != nil {
				return err
			}
			out, err := getApp(cmd).Client.CreateExercise(cmd.Context(), ex)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created #%d %s\n", out.ID, out.Name)
			return nil
		},
	}
	addFlags.register(add)
	_ = add.MarkFlagRequired("name")

	var editFlags exerciseFlags
	edit := &cobra.Command{
		Use:   "edit <exercise-id>",
		Short: "Change the fields given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c := getApp(cmd).Client
			ex, err := c.Exercise(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := editFlags.apply(cmd, &ex); err != nil {
				return err
			}
			out, err := c.UpdateExercise(cmd.Context(), ex)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d %s\n", out.ID, out.Name)
			return nil
		},
	}
	editFlags.register(edit)

	del := &cobra.Command{
		Use:     "delete <exercise-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an exercise and drop it from every routine",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := getApp(cmd).Client.DeleteExercise(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted exercise #%d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, add, edit, del)
	return cmd
}

func newAdminTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tag",
		Aliases: []string{"tags"},
		Short:   "Manage exercise tags",
	}

	var page int
	var noHeaders bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := presentOptions(cmd, noHeaders)
			if err != nil {
				return err
			}
			p, err := getApp(cmd).Client.Tags(cmd.Context(), page)
			if err != nil {
				return err
			}
			return present.RenderTags(cmd.OutOrStdout(), p, opts)
		},
	}
	list.Flags().IntVar(&page, "page", 0, "page number")
	addHeaderFlag(list, &noHeaders)

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := getApp(cmd).Client.CreateTag(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tag #%d %s\n", t.ID, t.Name)
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename <tag-id> <name>",
		Short: "Rename a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := getApp(cmd).Client.RenameTag(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed tag #%d to %s\n", t.ID, t.Name)
			return nil
		},
	}

	del := &cobra.Command{
		Use:     "delete <tag-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a tag and detach it from every exercise",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := getApp(cmd).Client.DeleteTag(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted tag #%d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, add, rename, del)
	return cmd
}
