package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/muesli/reflow/truncate"
	"github.com/tgienger/kanban/internal/markdown"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"golang.org/x/term"
)

// isTerminal reports whether stdout is a terminal. Tests replace it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// outputWidth is the wrap width for rendered markdown.
func outputWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return min(w, 100)
	}
	return 80
}

func tagNames(st *store.Store, taskID string) string {
	var names []string
	for _, tag := range st.GetTagsForTask(taskID) {
		names = append(names, "#"+tag.Name)
	}
	return strings.Join(names, " ")
}

func printTaskTable(w io.Writer, st *store.Store, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRI\tSUB\tTITLE\tTAGS")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			shortID(t.ID),
			t.Status,
			t.Priority,
			len(st.GetTasksByParentID(t.ID)),
			truncate.StringWithTail(oneLine(t.Title), 50, "..."),
			tagNames(st, t.ID),
		)
	}
	tw.Flush()
}

func printTask(w io.Writer, st *store.Store, t models.Task, width int) {
	fmt.Fprintf(w, "%s\n", t.Title)
	fmt.Fprintf(w, "  id:        %s\n", t.ID)
	fmt.Fprintf(w, "  status:    %s\n", t.Status.Label())
	fmt.Fprintf(w, "  priority:  %s\n", t.Priority)
	if t.ParentID != "" {
		if parent, ok := st.GetTaskByID(t.ParentID); ok {
			fmt.Fprintf(w, "  parent:    %s %s\n", shortID(parent.ID), parent.Title)
		}
	}
	if tags := tagNames(st, t.ID); tags != "" {
		fmt.Fprintf(w, "  tags:      %s\n", tags)
	}
	if t.DueDate != nil {
		fmt.Fprintf(w, "  due:       %s\n", t.DueDate.Local().Format("2006-01-02"))
	}
	fmt.Fprintf(w, "  created:   %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "  updated:   %s\n", t.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if t.CompletedAt != nil {
		fmt.Fprintf(w, "  completed: %s\n", t.CompletedAt.Local().Format("2006-01-02 15:04"))
	}

	if desc := markdown.Render(t.Description, width, markdown.Plain); desc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, desc)
	}

	subtasks := st.GetTasksByParentID(t.ID)
	if len(subtasks) > 0 {
		fmt.Fprintf(w, "\nSubtasks:\n")
		for _, sub := range subtasks {
			fmt.Fprintf(w, "  %s %s %s\n", checkbox(sub), shortID(sub.ID), sub.Title)
		}
	}
}

func checkbox(t models.Task) string {
	switch t.Status {
	case models.StatusCompleted:
		return "[x]"
	case models.StatusCancelled:
		return "[-]"
	case models.StatusInProgress:
		return "[~]"
	}
	return "[ ]"
}

// printTree prints the subtree under rootID, or every root task when
// rootID is empty.
func printTree(w io.Writer, st *store.Store, rootID string) {
	depth0 := 0
	if rootID != "" {
		if root, ok := st.GetTaskByID(rootID); ok {
			fmt.Fprintf(w, "%s %s %s\n", checkbox(root), shortID(root.ID), root.Title)
			depth0 = 1
		}
	}
	nodes := st.Tree(rootID)
	if len(nodes) == 0 && rootID == "" {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s %s %s\n",
			strings.Repeat("  ", n.Depth+depth0),
			checkbox(n.Task), shortID(n.Task.ID), n.Task.Title)
	}
}
