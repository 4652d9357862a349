package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

const dateLayout = "2006-01-02"

var taskFlagAliases = map[string]string{
	"desc":   "description",
	"pri":    "priority",
	"tags":   "tag",
	"parent": "parent-id",
}

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(a),
		newTaskListCmd(a),
		newTaskShowCmd(a),
		newTaskUpdateCmd(a),
		newTaskMoveCmd(a),
		newTaskToggleCmd(a),
		newTaskRmCmd(a),
		newTaskTreeCmd(a),
	)
	return cmd
}

func parseDue(value string) (*time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: want YYYY-MM-DD", value)
	}
	return &d, nil
}

func newTaskAddCmd(a *app) *cobra.Command {
	var (
		description string
		status      string
		priority    string
		tags        []string
		parent      string
		due         string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Long: `Create a task. With --parent-id the task becomes a subtask and is
appended after its existing siblings.

Examples:
  kanban task add "Write release notes" -p high --tag docs
  kanban task add "Check links" --parent 3f2a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.env.Store
			in := store.NewTask{Title: args[0], Description: description}

			if status != "" {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				in.Status = s
			}
			if priority != "" {
				p, err := models.ParsePriority(priority)
				if err != nil {
					return err
				}
				in.Priority = p
			}
			ids, err := resolveTags(st, tags)
			if err != nil {
				return err
			}
			in.TagIDs = ids
			if parent != "" {
				p, err := resolveTask(st, parent)
				if err != nil {
					return err
				}
				in.ParentID = p.ID
			}
			if due != "" {
				if in.DueDate, err = parseDue(due); err != nil {
					return err
				}
			}

			created := st.AddTask(cmd.Context(), in)
			if err := storeErr(st); err != nil {
				return err
			}
			if created == nil {
				return fmt.Errorf("task was not created")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", shortID(created.ID), created.Title)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&description, "description", "d", "", "task description (markdown)")
	f.StringVarP(&status, "status", "s", "", "todo, in_progress, completed or cancelled")
	f.StringVarP(&priority, "priority", "p", "", "low, normal, medium, high or urgent")
	f.StringSliceVarP(&tags, "tag", "t", nil, "tag name or id (repeatable)")
	f.StringVar(&parent, "parent-id", "", "parent task id or prefix")
	f.StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	setFlagAliases(f, taskFlagAliases)
	return cmd
}

func newTaskListCmd(a *app) *cobra.Command {
	var (
		status string
		tag    string
		parent string
		all    bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List root tasks in board order. --parent-id lists the subtasks of one
task, --all lists every task.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.env.Store

			var tasks []models.Task
			switch {
			case parent != "":
				p, err := resolveTask(st, parent)
				if err != nil {
					return err
				}
				tasks = st.GetTasksByParentID(p.ID)
			case all:
				tasks = st.Tasks()
			default:
				tasks = st.GetTasksByParentID("")
			}

			if status != "" {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				tasks = keep(tasks, func(t models.Task) bool { return t.Status == s })
			}
			if tag != "" {
				tg, err := resolveTag(st, tag)
				if err != nil {
					return err
				}
				tasks = keep(tasks, func(t models.Task) bool { return t.HasTag(tg.ID) })
			}

			printTaskTable(cmd.OutOrStdout(), st, tasks)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&status, "status", "s", "", "only tasks with this status")
	f.StringVarP(&tag, "tag", "t", "", "only tasks with this tag")
	f.StringVar(&parent, "parent-id", "", "list subtasks of this task")
	f.BoolVarP(&all, "all", "a", false, "include subtasks")
	setFlagAliases(f, taskFlagAliases)
	return cmd
}

func keep(tasks []models.Task, pred func(models.Task) bool) []models.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

func newTaskShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its description and subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := resolveTask(a.env.Store, args[0])
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), a.env.Store, task, outputWidth())
			return nil
		},
	}
}

func newTaskUpdateCmd(a *app) *cobra.Command {
	var (
		title       string
		description string
		status      string
		priority    string
		tags        []string
		due         string
		clearDue    bool
	)
	cmd := &cobra.Command{
		Use:     "update <id>",
		Aliases: []string{"edit"},
		Short:   "Change fields of a task",
		Long: `Change fields of a task. Only the flags given are applied; --tag
replaces the whole tag list (pass --tag "" to clear it).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.env.Store
			task, err := resolveTask(st, args[0])
			if err != nil {
				return err
			}

			var u store.TaskUpdate
			f := cmd.Flags()
			if f.Changed("title") {
				u.Title = &title
			}
			if f.Changed("description") {
				u.Description = &description
			}
			if f.Changed("status") {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				u.Status = &s
			}
			if f.Changed("priority") {
				p, err := models.ParsePriority(priority)
				if err != nil {
					return err
				}
				u.Priority = &p
			}
			if f.Changed("tag") {
				var refs []string
				for _, t := range tags {
					if t != "" {
						refs = append(refs, t)
					}
				}
				ids, err := resolveTags(st, refs)
				if err != nil {
					return err
				}
				u.TagIDs = &ids
			}
			if f.Changed("due") {
				if u.DueDate, err = parseDue(due); err != nil {
					return err
				}
			}
			u.ClearDueDate = clearDue

			st.UpdateTask(cmd.Context(), task.ID, u)
			if err := storeErr(st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", shortID(task.ID))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVarP(&description, "description", "d", "", "new description (markdown)")
	f.StringVarP(&status, "status", "s", "", "todo, in_progress, completed or cancelled")
	f.StringVarP(&priority, "priority", "p", "", "low, normal, medium, high or urgent")
	f.StringSliceVarP(&tags, "tag", "t", nil, "tag name or id (repeatable, replaces existing)")
	f.StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	f.BoolVar(&clearDue, "clear-due", false, "remove the due date")
	setFlagAliases(f, taskFlagAliases)
	return cmd
}

func newTaskMoveCmd(a *app) *cobra.Command {
	var (
		parent string
		root   bool
		index  int
	)
	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Reparent or reorder a task",
		Long: `Move a task to position --index among the children of --parent-id,
or among the root tasks with --root. Without either the task stays under
its current parent. Indexes are clamped to the group size.

Moving a task under itself or one of its own subtasks is ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.env.Store
			task, err := resolveTask(st, args[0])
			if err != nil {
				return err
			}

			parentID := task.ParentID
			switch {
			case root && parent != "":
				return fmt.Errorf("--root and --parent-id are mutually exclusive")
			case root:
				parentID = ""
			case parent != "":
				p, err := resolveTask(st, parent)
				if err != nil {
					return err
				}
				parentID = p.ID
			}

			st.MoveTask(cmd.Context(), task.ID, parentID, index)
			if err := storeErr(st); err != nil {
				return err
			}

			moved, _ := st.GetTaskByID(task.ID)
			if moved.ParentID != parentID {
				return fmt.Errorf("cannot move a task under itself or its subtasks")
			}
			where := "root"
			if parentID != "" {
				where = shortID(parentID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved task %s to %s at position %d\n", shortID(task.ID), where, moved.Order)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&parent, "parent-id", "", "new parent task id or prefix")
	f.BoolVar(&root, "root", false, "move to the root level")
	f.IntVarP(&index, "index", "i", 0, "position among the new siblings")
	setFlagAliases(f, taskFlagAliases)
	return cmd
}

func newTaskToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Toggle a task between completed and todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.env.Store
			task, err := resolveTask(st, args[0])
			if err != nil {
				return err
			}
			st.ToggleTaskStatus(cmd.Context(), task.ID)
			if err := storeErr(st); err != nil {
				return err
			}
			toggled, _ := st.GetTaskByID(task.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", shortID(task.ID), toggled.Status.Label())
			return nil
		},
	}
}

func newTaskRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task and all of its subtasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.env.Store
			task, err := resolveTask(st, args[0])
			if err != nil {
				return err
			}
			n := len(st.Descendants(task.ID))
			st.DeleteTask(cmd.Context(), task.ID)
			if err := storeErr(st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s and %s\n", shortID(task.ID), plural(n, "subtask"))
			return nil
		},
	}
}

func newTaskTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [id]",
		Short: "Print tasks as a tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootID := ""
			if len(args) == 1 {
				task, err := resolveTask(a.env.Store, args[0])
				if err != nil {
					return err
				}
				rootID = task.ID
			}
			printTree(cmd.OutOrStdout(), a.env.Store, rootID)
			return nil
		},
	}
}
