package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui"
	"github.com/tgienger/kanban/internal/ui/styles"
)

func newBoardCmd(a *app) *cobra.Command {
	var plain bool
	var theme string
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the board (the default command)",
		Long: `Open the interactive board. When stdout is not a terminal, or with
--plain, the board is printed as a list grouped by status instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, a.env, plain, theme)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the board instead of opening it")
	cmd.Flags().StringVar(&theme, "theme", "", "color theme: "+strings.Join(styles.ThemeNames(), ", ")+" (default from config)")
	setFlagAliases(cmd.Flags(), map[string]string{"list": "plain"})
	return cmd
}

func runBoard(cmd *cobra.Command, env *Env, plain bool, theme string) error {
	if plain || !isTerminal() {
		printBoard(cmd.OutOrStdout(), env.Store)
		return nil
	}

	if theme == "" && env.Config != nil {
		theme = env.Config.UI.Theme
	}
	if err := styles.Use(theme); err != nil {
		return err
	}

	// Log lines written to stderr would corrupt the alt screen.
	if env.Config == nil || env.Config.Log.File == "" {
		env.Log.SetOutput(io.Discard)
	}

	app := ui.NewApp(cmd.Context(), env.Store, env.Settings)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running board: %w", err)
	}
	return nil
}

// printBoard writes root tasks grouped by status, hiding empty groups.
func printBoard(w io.Writer, st *store.Store) {
	roots := st.GetTasksByParentID("")
	if len(roots) == 0 {
		fmt.Fprintln(w, "No tasks. Add one with: kanban task add <title>")
		return
	}

	first := true
	for _, status := range models.ValidStatuses() {
		var column []models.Task
		for _, t := range roots {
			if t.Status == status {
				column = append(column, t)
			}
		}
		if len(column) == 0 {
			continue
		}
		if !first {
			fmt.Fprintln(w)
		}
		first = false

		fmt.Fprintf(w, "%s (%d)\n", status.Label(), len(column))
		for _, t := range column {
			line := fmt.Sprintf("  %s %-6s %s", shortID(t.ID), t.Priority, t.Title)
			if subs := st.GetTasksByParentID(t.ID); len(subs) > 0 {
				done := 0
				for _, s := range subs {
					if s.Status == models.StatusCompleted {
						done++
					}
				}
				line += fmt.Sprintf(" [%d/%d]", done, len(subs))
			}
			if tags := tagNames(st, t.ID); tags != "" {
				line += " " + tags
			}
			fmt.Fprintln(w, line)
		}
	}
}
