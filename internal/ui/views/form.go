package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// Form field indexes.
const (
	fieldTitle = iota
	fieldDesc
	fieldPriority
	fieldTags
	fieldSave
	fieldCount
)

// formClosed is sent when the task form is saved or cancelled.
type formClosed struct {
	saved bool
}

// TaskForm creates and edits tasks.
type TaskForm struct {
	ctx    context.Context
	store  *store.Store
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int
	active bool

	taskID   string // empty when creating
	parentID string
	status   models.Status

	title     textinput.Model
	desc      textarea.Model
	priority  models.Priority
	tags      []models.Tag
	selected  map[string]bool
	tagCursor int
	focusIdx  int
	err       string
}

// NewTaskForm creates an idle form.
func NewTaskForm(ctx context.Context, st *store.Store, s *styles.Styles, k keys.KeyMap) *TaskForm {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = store.MaxTitleLength

	desc := textarea.New()
	desc.Placeholder = "Description (markdown)"
	desc.CharLimit = 5000
	desc.SetWidth(50)
	desc.SetHeight(5)
	desc.ShowLineNumbers = false

	return &TaskForm{
		ctx:    ctx,
		store:  st,
		styles: s,
		keys:   k,
		title:  title,
		desc:   desc,
	}
}

// StartNew resets the form for a new task under parentID in the given
// status column.
func (f *TaskForm) StartNew(parentID string, status models.Status) tea.Cmd {
	f.taskID = ""
	f.parentID = parentID
	f.status = status
	f.title.Reset()
	f.desc.Reset()
	f.priority = models.DefaultPriority
	f.selected = map[string]bool{}
	return f.start()
}

// StartEdit fills the form from an existing task.
func (f *TaskForm) StartEdit(task models.Task) tea.Cmd {
	f.taskID = task.ID
	f.parentID = task.ParentID
	f.status = task.Status
	f.title.SetValue(task.Title)
	f.desc.SetValue(task.Description)
	f.priority = task.Priority
	if !f.priority.IsValid() {
		f.priority = models.DefaultPriority
	}
	f.selected = map[string]bool{}
	for _, id := range task.TagIDs {
		f.selected[id] = true
	}
	return f.start()
}

func (f *TaskForm) start() tea.Cmd {
	f.active = true
	f.tags = f.store.Tags()
	f.tagCursor = 0
	f.focusIdx = fieldTitle
	f.err = ""
	f.updateFocus()
	return textinput.Blink
}

// SetSize updates the layout.
func (f *TaskForm) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.desc.SetWidth(clamp(styles.ContentWidth(width)-10, 20, 60))
}

// Update handles a key while the form is open.
func (f *TaskForm) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, f.keys.Back):
		return closeForm(false)

	case msg.String() == "ctrl+s":
		return f.save()

	case key.Matches(msg, f.keys.Tab):
		f.focusIdx = (f.focusIdx + 1) % fieldCount
		f.updateFocus()
		return nil

	case msg.String() == "shift+tab":
		f.focusIdx = (f.focusIdx + fieldCount - 1) % fieldCount
		f.updateFocus()
		return nil

	case key.Matches(msg, f.keys.Enter):
		switch f.focusIdx {
		case fieldTitle, fieldPriority:
			f.focusIdx++
			f.updateFocus()
			return nil
		case fieldTags:
			f.toggleTag()
			return nil
		case fieldSave:
			return f.save()
		}
	}

	switch f.focusIdx {
	case fieldPriority:
		switch msg.String() {
		case "left", "h":
			f.priority = prevPriority(f.priority)
		case "right", "l", " ":
			f.priority = f.priority.Next()
		}
		return nil
	case fieldTags:
		switch {
		case msg.String() == " ":
			f.toggleTag()
		case key.Matches(msg, f.keys.Up):
			if f.tagCursor > 0 {
				f.tagCursor--
			}
		case key.Matches(msg, f.keys.Down):
			if f.tagCursor < len(f.tags)-1 {
				f.tagCursor++
			}
		}
		return nil
	}

	var cmd tea.Cmd
	switch f.focusIdx {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDesc:
		f.desc, cmd = f.desc.Update(msg)
	}
	return cmd
}

func (f *TaskForm) toggleTag() {
	if f.tagCursor >= len(f.tags) {
		return
	}
	id := f.tags[f.tagCursor].ID
	f.selected[id] = !f.selected[id]
}

func (f *TaskForm) selectedTagIDs() []string {
	ids := []string{}
	for _, tag := range f.tags {
		if f.selected[tag.ID] {
			ids = append(ids, tag.ID)
		}
	}
	return ids
}

func (f *TaskForm) updateFocus() {
	f.title.Blur()
	f.desc.Blur()
	switch f.focusIdx {
	case fieldTitle:
		f.title.Focus()
	case fieldDesc:
		f.desc.Focus()
	}
}

// save writes the form through the store. On a store error the form stays
// open and shows it.
func (f *TaskForm) save() tea.Cmd {
	f.store.ClearError()
	desc := strings.TrimSpace(f.desc.Value())
	tagIDs := f.selectedTagIDs()

	if f.taskID == "" {
		created := f.store.AddTask(f.ctx, store.NewTask{
			Title:       f.title.Value(),
			Description: desc,
			Status:      f.status,
			Priority:    f.priority,
			TagIDs:      tagIDs,
			ParentID:    f.parentID,
		})
		if created == nil {
			f.err = f.store.Err()
			f.store.ClearError()
			return nil
		}
		return closeForm(true)
	}

	title := f.title.Value()
	priority := f.priority
	f.store.UpdateTask(f.ctx, f.taskID, store.TaskUpdate{
		Title:       &title,
		Description: &desc,
		Priority:    &priority,
		TagIDs:      &tagIDs,
	})
	if msg := f.store.Err(); msg != "" {
		f.err = msg
		f.store.ClearError()
		return nil
	}
	return closeForm(true)
}

func closeForm(saved bool) tea.Cmd {
	return func() tea.Msg { return formClosed{saved: saved} }
}

func prevPriority(p models.Priority) models.Priority {
	all := models.ValidPriorities()
	i := p.Rank()
	if i <= 0 {
		return all[len(all)-1]
	}
	return all[i-1]
}

// View renders the form.
func (f *TaskForm) View() string {
	s := f.styles
	contentWidth := styles.ContentWidth(f.width)

	formTitle := "New Task"
	switch {
	case f.taskID != "":
		formTitle = "Edit Task"
	case f.parentID != "":
		if parent, ok := f.store.GetTaskByID(f.parentID); ok {
			formTitle = "New Subtask of " + truncateText(parent.Title, 40)
		}
	}

	fieldStyles := make([]lipgloss.Style, fieldCount)
	for i := range fieldStyles {
		fieldStyles[i] = s.Input
	}
	btnStyle := s.Button
	if f.focusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	} else {
		fieldStyles[f.focusIdx] = s.InputFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 60)

	priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(f.priority)).Render("◀ " + string(f.priority) + " ▶")

	lines := []string{
		s.Title.Render(formTitle),
		"",
		"Title:",
		fieldStyles[fieldTitle].Width(inputWidth).Render(f.title.View()),
		"",
		"Description:",
		fieldStyles[fieldDesc].Render(f.desc.View()),
		"",
		"Priority:",
		fieldStyles[fieldPriority].Width(20).Render(priority),
		"",
		"Tags:",
		f.renderTagSelector(fieldStyles[fieldTags], inputWidth),
		"",
		btnStyle.Render(" Save "),
	}
	if f.err != "" {
		lines = append(lines, "", s.Error.Render(f.err))
	}
	lines = append(lines, "", s.TitleMuted.Render("Tab: next • ←→: priority • Space: toggle tag • Ctrl+S: save • Esc: cancel"))

	centered := lipgloss.Place(contentWidth, f.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
	return styles.CenterView(centered, f.width, f.height)
}

func (f *TaskForm) renderTagSelector(containerStyle lipgloss.Style, width int) string {
	s := f.styles
	if len(f.tags) == 0 {
		return containerStyle.Width(width).Render(s.TitleMuted.Render("No tags yet (t on the board to add some)"))
	}

	var items []string
	for i, tag := range f.tags {
		checkbox := "[ ]"
		if f.selected[tag.ID] {
			checkbox = "[x]"
		}
		dot := lipgloss.NewStyle().Foreground(styles.TagColor(tag)).Render("●")
		text := checkbox + " " + dot + " " + tag.Name
		if f.focusIdx == fieldTags && i == f.tagCursor {
			items = append(items, s.ListSelected.Render(text))
		} else {
			items = append(items, s.ListItem.Render(text))
		}
	}
	return containerStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}
