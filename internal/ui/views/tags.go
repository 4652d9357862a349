package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

type tagItem struct {
	tag   models.Tag
	count int
}

func (i tagItem) Title() string       { return i.tag.Name }
func (i tagItem) Description() string { return fmt.Sprintf("%d tasks", i.count) }
func (i tagItem) FilterValue() string { return i.tag.Name }

type tagDelegate struct {
	styles *styles.Styles
	width  int
}

func (d tagDelegate) Height() int                               { return 1 }
func (d tagDelegate) Spacing() int                              { return 0 }
func (d tagDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d tagDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	t, ok := item.(tagItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)
	style := d.styles.ListItem.Width(width)
	if index == m.Index() {
		style = d.styles.ListSelected.Width(width)
	}

	dot := lipgloss.NewStyle().Foreground(styles.TagColor(t.tag)).Render("●")
	count := d.styles.TitleMuted.Render(t.Description())
	fmt.Fprint(w, style.Render(dot+" "+t.Title()+"  "+count))
}

// TagListView lists tags and edits them.
type TagListView struct {
	ctx      context.Context
	store    *store.Store
	list     list.Model
	delegate *tagDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	editing   bool
	editingID string // empty when creating
	name      textinput.Model
	color     textinput.Model
	focusIdx  int // 0=name, 1=color, 2=save
	formErr   string

	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string
}

// NewTagListView creates the tag manager.
func NewTagListView(ctx context.Context, st *store.Store) *TagListView {
	s := styles.NewStyles()

	name := textinput.New()
	name.Placeholder = "Tag name"
	name.CharLimit = store.MaxTagNameLength

	color := textinput.New()
	color.Placeholder = "#7aa2f7 (optional)"
	color.CharLimit = 7

	delegate := &tagDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Tags"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &TagListView{
		ctx:      ctx,
		store:    st,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		name:     name,
		color:    color,
	}
}

// Init loads the tags.
func (v *TagListView) Init() tea.Cmd {
	v.refresh()
	return nil
}

func (v *TagListView) refresh() {
	tags := v.store.Tags()
	items := make([]list.Item, len(tags))
	for i, t := range tags {
		items[i] = tagItem{tag: t, count: len(v.store.GetTasksByTag(t.ID))}
	}
	v.list.SetItems(items)
}

func (v *TagListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v, v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v, v.updateEditing(msg)
		}
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			if v.list.FilterState() == list.FilterApplied {
				break
			}
			return v, emit(BackToBoard{})
		case key.Matches(msg, v.keys.New):
			return v, v.startEdit(nil)
		case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(tagItem); ok {
				return v, v.startEdit(&item.tag)
			}
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(tagItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.tag.ID
				v.deleteTargetName = item.tag.Name
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *TagListView) startEdit(tag *models.Tag) tea.Cmd {
	v.editing = true
	v.focusIdx = 0
	v.formErr = ""
	v.name.Reset()
	v.color.Reset()
	v.editingID = ""
	if tag != nil {
		v.editingID = tag.ID
		v.name.SetValue(tag.Name)
		v.color.SetValue(tag.Color)
	}
	v.updateFocus()
	return textinput.Blink
}

func (v *TagListView) updateConfirmDelete(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		v.store.DeleteTag(v.ctx, v.deleteTargetID)
		v.confirmingDelete = false
		v.refresh()
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return nil
}

func (v *TagListView) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return nil

	case msg.String() == "ctrl+s":
		v.save()
		return nil

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return nil
		}
		v.save()
		return nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.name, cmd = v.name.Update(msg)
	case 1:
		v.color, cmd = v.color.Update(msg)
	}
	return cmd
}

func (v *TagListView) updateFocus() {
	v.name.Blur()
	v.color.Blur()
	switch v.focusIdx {
	case 0:
		v.name.Focus()
	case 1:
		v.color.Focus()
	}
}

func (v *TagListView) save() {
	v.store.ClearError()
	name := v.name.Value()
	color := strings.TrimSpace(v.color.Value())

	if v.editingID == "" {
		v.store.AddTag(v.ctx, store.NewTag{Name: name, Color: color})
	} else {
		v.store.UpdateTag(v.ctx, v.editingID, store.TagUpdate{Name: &name, Color: &color})
	}
	if msg := v.store.Err(); msg != "" {
		v.formErr = msg
		v.store.ClearError()
		return
	}
	v.editing = false
	v.refresh()
}

// View renders the view
func (v *TagListView) View() string {
	if v.confirmingDelete {
		return renderConfirm(v.styles, "Delete Tag?", v.deleteTargetName+" will be removed from every task", v.width, v.height)
	}
	if v.editing {
		return v.renderForm()
	}
	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *TagListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Tags"),
		"",
		s.TitleMuted.Render("Press 'n' to create one, esc to go back"),
		"",
		s.ButtonPrimary.Render(" New Tag "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TagListView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	colorStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		colorStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 40)

	title := "New Tag"
	if v.editingID != "" {
		title = "Edit Tag"
	}
	preview := lipgloss.NewStyle().
		Foreground(styles.TagColor(models.Tag{Color: strings.TrimSpace(v.color.Value())})).
		Render("● preview")

	lines := []string{
		s.Title.Render(title),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.name.View()),
		"",
		"Color:",
		colorStyle.Width(inputWidth).Render(v.color.View()),
		preview,
		"",
		btnStyle.Render(" Save "),
	}
	if v.formErr != "" {
		lines = append(lines, "", s.Error.Render(v.formErr))
	}
	lines = append(lines, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TagListView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s edit • %s new • %s del • %s filter • %s board • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
