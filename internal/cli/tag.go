package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tgienger/kanban/internal/store"
)

func newTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tag",
		Aliases: []string{"tags"},
		Short:   "Manage tags",
	}
	cmd.AddCommand(
		newTagAddCmd(a),
		newTagListCmd(a),
		newTagUpdateCmd(a),
		newTagRmCmd(a),
	)
	return cmd
}

func newTagAddCmd(a *app) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.env.Store
			tag := st.AddTag(cmd.Context(), store.NewTag{Name: args[0], Color: color})
			if err := storeErr(st); err != nil {
				return err
			}
			if tag == nil {
				return fmt.Errorf("tag was not created")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tag %s (%s)\n", tag.Name, shortID(tag.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&color, "color", "c", "", "display color, e.g. #7aa2f7")
	setFlagAliases(cmd.Flags(), map[string]string{"colour": "color"})
	return cmd
}

func newTagListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tags with their task counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.env.Store
			tags := st.Tags()
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tTASKS")
			for _, t := range tags {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", shortID(t.ID), t.Name, t.Color, len(st.GetTasksByTag(t.ID)))
			}
			return tw.Flush()
		},
	}
}

func newTagUpdateCmd(a *app) *cobra.Command {
	var name, color string
	cmd := &cobra.Command{
		Use:     "update <name-or-id>",
		Aliases: []string{"rename"},
		Short:   "Rename or recolor a tag",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.env.Store
			tag, err := resolveTag(st, args[0])
			if err != nil {
				return err
			}
			var u store.TagUpdate
			if cmd.Flags().Changed("name") {
				u.Name = &name
			}
			if cmd.Flags().Changed("color") {
				u.Color = &color
			}
			st.UpdateTag(cmd.Context(), tag.ID, u)
			if err := storeErr(st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated tag %s\n", shortID(tag.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&color, "color", "c", "", "new color")
	setFlagAliases(cmd.Flags(), map[string]string{"colour": "color"})
	return cmd
}

func newTagRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name-or-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a tag and remove it from every task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.env.Store
			tag, err := resolveTag(st, args[0])
			if err != nil {
				return err
			}
			n := len(st.GetTasksByTag(tag.ID))
			st.DeleteTag(cmd.Context(), tag.ID)
			if err := storeErr(st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted tag %s (removed from %s)\n", tag.Name, plural(n, "task"))
			return nil
		},
	}
}
