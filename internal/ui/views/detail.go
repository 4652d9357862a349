package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kanban/internal/markdown"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// Requests from the detail view, handled by the board.
type (
	detailClosed  struct{}
	editRequested struct {
		task models.Task
	}
	newSubtaskRequested struct {
		parentID string
	}
	deleteRequested struct {
		task models.Task
	}
)

// DetailView shows one task with its rendered description and subtasks.
// Opening a subtask pushes it; Back pops.
type DetailView struct {
	ctx    context.Context
	store  *store.Store
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	stack  []string // task ids, current last
	cursor int      // selected subtask
}

// NewDetailView creates an empty detail view.
func NewDetailView(ctx context.Context, st *store.Store, s *styles.Styles, k keys.KeyMap) *DetailView {
	return &DetailView{ctx: ctx, store: st, styles: s, keys: k}
}

// Open shows the task, replacing any previous stack.
func (d *DetailView) Open(id string) {
	d.stack = []string{id}
	d.cursor = 0
}

// SetSize updates the layout.
func (d *DetailView) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func (d *DetailView) current() (models.Task, bool) {
	for len(d.stack) > 0 {
		if task, ok := d.store.GetTaskByID(d.stack[len(d.stack)-1]); ok {
			return task, true
		}
		// Deleted underneath us; fall back to the parent.
		d.stack = d.stack[:len(d.stack)-1]
	}
	return models.Task{}, false
}

// Update handles a key while the detail view is open.
func (d *DetailView) Update(msg tea.KeyMsg) tea.Cmd {
	task, ok := d.current()
	if !ok {
		return emit(detailClosed{})
	}
	subtasks := d.store.GetTasksByParentID(task.ID)
	d.cursor = clamp(d.cursor, 0, max(len(subtasks)-1, 0))

	switch {
	case key.Matches(msg, d.keys.Quit):
		return tea.Quit

	case key.Matches(msg, d.keys.Back):
		d.stack = d.stack[:len(d.stack)-1]
		d.cursor = 0
		if len(d.stack) == 0 {
			return emit(detailClosed{})
		}
		return nil

	case key.Matches(msg, d.keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}

	case key.Matches(msg, d.keys.Down):
		if d.cursor < len(subtasks)-1 {
			d.cursor++
		}

	case key.Matches(msg, d.keys.Enter):
		if len(subtasks) > 0 {
			d.stack = append(d.stack, subtasks[d.cursor].ID)
			d.cursor = 0
		}

	case key.Matches(msg, d.keys.Toggle):
		if len(subtasks) > 0 {
			d.store.ToggleTaskStatus(d.ctx, subtasks[d.cursor].ID)
		} else {
			d.store.ToggleTaskStatus(d.ctx, task.ID)
		}

	case key.Matches(msg, d.keys.MoveUp):
		if len(subtasks) > 0 && d.cursor > 0 {
			d.store.MoveTask(d.ctx, subtasks[d.cursor].ID, task.ID, d.cursor-1)
			d.cursor--
		}

	case key.Matches(msg, d.keys.MoveDown):
		if d.cursor < len(subtasks)-1 {
			d.store.MoveTask(d.ctx, subtasks[d.cursor].ID, task.ID, d.cursor+1)
			d.cursor++
		}

	case key.Matches(msg, d.keys.Priority):
		next := task.Priority.Next()
		d.store.UpdateTask(d.ctx, task.ID, store.TaskUpdate{Priority: &next})

	case key.Matches(msg, d.keys.NewSubtask), key.Matches(msg, d.keys.New):
		return emit(newSubtaskRequested{parentID: task.ID})

	case key.Matches(msg, d.keys.Edit):
		return emit(editRequested{task: task})

	case key.Matches(msg, d.keys.Delete):
		if len(subtasks) > 0 {
			return emit(deleteRequested{task: subtasks[d.cursor]})
		}
		return emit(deleteRequested{task: task})
	}
	return nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View renders the current task.
func (d *DetailView) View() string {
	task, ok := d.current()
	if !ok {
		return ""
	}
	s := d.styles
	textWidth := clamp(styles.ContentWidth(d.width)-10, 20, 90)
	label := s.TitleMuted

	status := lipgloss.NewStyle().Foreground(styles.StatusColor(task.Status)).Render(task.Status.Label())
	priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(task.Priority)).Bold(true).Render(string(task.Priority))

	tagsLine := s.TitleMuted.Render("None")
	if tags := d.store.GetTagsForTask(task.ID); len(tags) > 0 {
		var parts []string
		for _, tag := range tags {
			parts = append(parts, lipgloss.NewStyle().Foreground(styles.TagColor(tag)).Render(tag.Name))
		}
		tagsLine = strings.Join(parts, " ")
	}

	desc := markdown.Render(task.Description, textWidth, styles.Current.Markdown)
	if desc == "" {
		desc = s.TitleMuted.Render("No description")
	}

	dates := fmt.Sprintf("created %s • updated %s",
		task.CreatedAt.Local().Format("Jan 2 15:04"),
		task.UpdatedAt.Local().Format("Jan 2 15:04"))
	if task.DueDate != nil {
		dates += " • due " + task.DueDate.Local().Format("Jan 2")
	}
	if task.CompletedAt != nil {
		dates += " • done " + task.CompletedAt.Local().Format("Jan 2 15:04")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.TitleMuted.Render(d.breadcrumb()),
		s.Title.MarginBottom(1).Render(truncateText(task.Title, textWidth)),
		label.Render("Status")+"  "+status+"    "+label.Render("Priority")+"  "+priority,
		label.Render("Tags")+"  "+tagsLine,
		s.TitleMuted.Render(dates),
		"",
		label.Render("Description"),
		desc,
		"",
		label.Render("Subtasks"),
		d.renderSubtasks(task, textWidth),
		"",
		s.Error.Render(d.store.Err()),
		s.Help.Render(fmt.Sprintf("%s open • %s toggle • %s reorder • %s new subtask • %s edit • %s delete • %s back",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("space"),
			s.HelpKey.Render("J/K"),
			s.HelpKey.Render("s"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("esc"),
		)),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, d.width, d.height)
}

func (d *DetailView) breadcrumb() string {
	var parts []string
	for _, id := range d.stack[:len(d.stack)-1] {
		if t, ok := d.store.GetTaskByID(id); ok {
			parts = append(parts, truncateText(t.Title, 20))
		}
	}
	if len(parts) == 0 {
		return "Board"
	}
	return "Board › " + strings.Join(parts, " › ")
}

func (d *DetailView) renderSubtasks(task models.Task, width int) string {
	s := d.styles
	subtasks := d.store.GetTasksByParentID(task.ID)
	if len(subtasks) == 0 {
		return s.TitleMuted.Render("None (s to add one)")
	}

	var items []string
	for i, sub := range subtasks {
		check := "[ ]"
		if sub.Status == models.StatusCompleted {
			check = "[x]"
		}
		line := check + " " + sub.Title
		if n := len(d.store.GetTasksByParentID(sub.ID)); n > 0 {
			line += fmt.Sprintf(" (%d)", n)
		}
		line = truncateText(line, width)
		if i == d.cursor {
			items = append(items, s.ListSelected.Render(line))
		} else {
			items = append(items, s.ListItem.Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}
