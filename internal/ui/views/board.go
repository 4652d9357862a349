package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// BoardView shows root tasks in one column per status.
type BoardView struct {
	ctx      context.Context
	store    *store.Store
	settings Settings // may be nil
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	column  int
	cursors map[models.Status]int

	showCancelled bool

	searching   bool
	searchInput textinput.Model

	filterTag    string // tag id, empty = no filter
	filterOpen   bool
	filterCursor int

	form   *TaskForm
	detail *DetailView

	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	showHelpPopup bool
}

// NewBoardView creates the board. Settings may be nil.
func NewBoardView(ctx context.Context, st *store.Store, settings Settings) *BoardView {
	s := styles.NewStyles()
	k := keys.DefaultKeyMap()

	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 100

	v := &BoardView{
		ctx:         ctx,
		store:       st,
		settings:    settings,
		styles:      s,
		keys:        k,
		cursors:     map[models.Status]int{},
		searchInput: search,
		form:        NewTaskForm(ctx, st, s, k),
		detail:      NewDetailView(ctx, st, s, k),
	}
	v.restoreSettings()
	return v
}

func (v *BoardView) restoreSettings() {
	if v.settings == nil {
		return
	}
	if val, err := v.settings.GetSetting(SettingShowCancelled); err == nil {
		v.showCancelled = val == "true"
	}
	if val, err := v.settings.GetSetting(SettingBoardColumn); err == nil {
		if n, err := strconv.Atoi(val); err == nil {
			v.column = clamp(n, 0, len(v.columns())-1)
		}
	}
}

func (v *BoardView) saveSetting(key, value string) {
	if v.settings == nil {
		return
	}
	if err := v.settings.SetSetting(key, value); err != nil {
		v.store.Logger().WithError(err).Warnf("Event ID: SETTING_SAVE_FAILED, Description: %s", key)
	}
}

// Init initializes the view
func (v *BoardView) Init() tea.Cmd {
	return nil
}

func (v *BoardView) columns() []models.Status {
	cols := []models.Status{models.StatusTodo, models.StatusInProgress, models.StatusCompleted}
	if v.showCancelled {
		cols = append(cols, models.StatusCancelled)
	}
	return cols
}

func (v *BoardView) currentStatus() models.Status {
	cols := v.columns()
	return cols[clamp(v.column, 0, len(cols)-1)]
}

// cards returns the visible root tasks with the given status, in order.
func (v *BoardView) cards(status models.Status) []models.Task {
	query := strings.ToLower(strings.TrimSpace(v.searchInput.Value()))
	var out []models.Task
	for _, t := range v.store.GetTasksByParentID("") {
		if t.Status != status {
			continue
		}
		if v.filterTag != "" && !t.HasTag(v.filterTag) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (v *BoardView) selected() (models.Task, bool) {
	status := v.currentStatus()
	cards := v.cards(status)
	if len(cards) == 0 {
		return models.Task{}, false
	}
	i := clamp(v.cursors[status], 0, len(cards)-1)
	v.cursors[status] = i
	return cards[i], true
}

// Update handles messages
func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.form.SetSize(msg.Width, msg.Height)
		v.detail.SetSize(msg.Width, msg.Height)
		return v, nil

	case formClosed:
		v.form.active = false
		return v, nil

	case detailClosed:
		v.detail.stack = nil
		return v, nil

	case editRequested:
		return v, v.form.StartEdit(msg.task)

	case newSubtaskRequested:
		return v, v.form.StartNew(msg.parentID, models.StatusTodo)

	case deleteRequested:
		v.askDelete(msg.task)
		return v, nil

	case tea.KeyMsg:
		// Any key dismisses a reported error.
		if v.store.Err() != "" && !v.form.active {
			v.store.ClearError()
		}

		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v, v.updateConfirmDelete(msg)
		}
		if v.form.active {
			return v, v.form.Update(msg)
		}
		if v.detailOpen() {
			return v, v.detail.Update(msg)
		}
		if v.filterOpen {
			return v, v.updateFilter(msg)
		}
		if v.searching {
			return v, v.updateSearch(msg)
		}
		return v, v.updateNormal(msg)
	}

	return v, nil
}

// detailOpen reports whether the detail view still has a task to show.
func (v *BoardView) detailOpen() bool {
	_, ok := v.detail.current()
	return ok
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) tea.Cmd {
	status := v.currentStatus()
	cards := v.cards(status)

	switch {
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.filterTag != "" || v.searchInput.Value() != "" {
			v.filterTag = ""
			v.searchInput.SetValue("")
		}

	case key.Matches(msg, v.keys.Left):
		if v.column > 0 {
			v.column--
			v.saveSetting(SettingBoardColumn, strconv.Itoa(v.column))
		}

	case key.Matches(msg, v.keys.Right):
		if v.column < len(v.columns())-1 {
			v.column++
			v.saveSetting(SettingBoardColumn, strconv.Itoa(v.column))
		}

	case key.Matches(msg, v.keys.Up):
		if v.cursors[status] > 0 {
			v.cursors[status]--
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursors[status] < len(cards)-1 {
			v.cursors[status]++
		}

	case key.Matches(msg, v.keys.MoveLeft), key.Matches(msg, v.keys.MoveRight):
		task, ok := v.selected()
		if !ok {
			return nil
		}
		target := v.column - 1
		if key.Matches(msg, v.keys.MoveRight) {
			target = v.column + 1
		}
		cols := v.columns()
		if target < 0 || target >= len(cols) {
			return nil
		}
		v.store.SetTaskStatus(v.ctx, task.ID, cols[target])
		v.column = target
		v.followTask(task.ID)

	case key.Matches(msg, v.keys.MoveUp), key.Matches(msg, v.keys.MoveDown):
		task, ok := v.selected()
		if !ok {
			return nil
		}
		i := v.cursors[status]
		j := i - 1
		if key.Matches(msg, v.keys.MoveDown) {
			j = i + 1
		}
		if j < 0 || j >= len(cards) {
			return nil
		}
		// Cards are a filtered view of the root group; target the
		// neighbour's slot in the full group.
		v.store.MoveTask(v.ctx, task.ID, "", cards[j].Order)
		v.cursors[status] = j

	case key.Matches(msg, v.keys.Toggle):
		if task, ok := v.selected(); ok {
			v.store.ToggleTaskStatus(v.ctx, task.ID)
		}

	case key.Matches(msg, v.keys.Priority):
		if task, ok := v.selected(); ok {
			next := task.Priority.Next()
			v.store.UpdateTask(v.ctx, task.ID, store.TaskUpdate{Priority: &next})
		}

	case key.Matches(msg, v.keys.New):
		return v.form.StartNew("", status)

	case key.Matches(msg, v.keys.NewSubtask):
		if task, ok := v.selected(); ok {
			return v.form.StartNew(task.ID, models.StatusTodo)
		}

	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.selected(); ok {
			return v.form.StartEdit(task)
		}

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selected(); ok {
			v.askDelete(task)
		}

	case key.Matches(msg, v.keys.Enter):
		if task, ok := v.selected(); ok {
			v.detail.Open(task.ID)
		}

	case key.Matches(msg, v.keys.Search):
		v.searching = true
		v.searchInput.Focus()
		return textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.filterOpen = true
		v.filterCursor = 0

	case key.Matches(msg, v.keys.Tags):
		return emit(OpenTags{})

	case key.Matches(msg, v.keys.Account):
		return emit(OpenAccount{})

	case key.Matches(msg, v.keys.ShowCancelled):
		v.showCancelled = !v.showCancelled
		v.column = clamp(v.column, 0, len(v.columns())-1)
		v.saveSetting(SettingShowCancelled, strconv.FormatBool(v.showCancelled))

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
	}
	return nil
}

// followTask moves the cursor of the current column onto the task.
func (v *BoardView) followTask(id string) {
	status := v.currentStatus()
	for i, t := range v.cards(status) {
		if t.ID == id {
			v.cursors[status] = i
			return
		}
	}
}

func (v *BoardView) askDelete(task models.Task) {
	v.confirmingDelete = true
	v.deleteTargetID = task.ID
	v.deleteTargetName = task.Title
}

func (v *BoardView) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.searchInput.SetValue("")
		fallthrough
	case key.Matches(msg, v.keys.Enter):
		v.searching = false
		v.searchInput.Blur()
		return nil
	}
	var cmd tea.Cmd
	v.searchInput, cmd = v.searchInput.Update(msg)
	return cmd
}

func (v *BoardView) updateFilter(msg tea.KeyMsg) tea.Cmd {
	tags := v.store.Tags()
	switch {
	case key.Matches(msg, v.keys.Back):
		v.filterOpen = false

	case key.Matches(msg, v.keys.Up):
		if v.filterCursor > 0 {
			v.filterCursor--
		}

	case key.Matches(msg, v.keys.Down):
		if v.filterCursor < len(tags) { // +1 for "All"
			v.filterCursor++
		}

	case key.Matches(msg, v.keys.Enter):
		v.filterTag = ""
		if v.filterCursor > 0 && v.filterCursor <= len(tags) {
			v.filterTag = tags[v.filterCursor-1].ID
		}
		v.filterOpen = false
	}
	return nil
}

func (v *BoardView) updateConfirmDelete(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		v.store.DeleteTask(v.ctx, v.deleteTargetID)
		v.confirmingDelete = false
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return nil
}

// View renders the board
func (v *BoardView) View() string {
	if v.showHelpPopup {
		return renderHelpPopup(v.styles, v.keys.BoardHelp(), v.width, v.height)
	}
	if v.confirmingDelete {
		return renderConfirm(v.styles, "Delete task and its subtasks?", v.deleteTargetName, v.width, v.height)
	}
	if v.form.active {
		return v.form.View()
	}
	if v.detailOpen() {
		return v.detail.View()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderColumns())
	b.WriteString("\n")
	if msg := v.store.Err(); msg != "" {
		b.WriteString(v.styles.Error.Render(msg))
		b.WriteString("\n")
	}
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *BoardView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	title := "Board"
	if u := v.store.CurrentUser(); u != nil {
		title += s.TitleMuted.Render("  " + u.Username)
	} else {
		title += s.TitleMuted.Render("  guest")
	}

	searchStyle := s.Input
	if v.searching {
		searchStyle = s.InputFocused
	}
	searchBox := searchStyle.Width(clamp(contentWidth-30, 10, 30)).Render(v.searchInput.View())

	tagLabel := "All"
	for _, t := range v.store.Tags() {
		if t.ID == v.filterTag {
			tagLabel = t.Name
		}
	}
	tagStyle := s.Button
	if v.filterOpen {
		tagStyle = s.ButtonFocused
	}
	tagBtn := tagStyle.Render("Tags: " + tagLabel + " ▼")

	header := lipgloss.JoinHorizontal(lipgloss.Center, searchBox, "  ", tagBtn)
	if v.filterOpen {
		header += "\n" + v.renderFilterDropdown()
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.Title.Render(title), header)
}

func (v *BoardView) renderFilterDropdown() string {
	s := v.styles
	var items []string

	allStyle := s.ListItem
	if v.filterCursor == 0 {
		allStyle = s.ListSelected
	}
	items = append(items, allStyle.Render("All"))

	for i, tag := range v.store.Tags() {
		itemStyle := s.ListItem
		if v.filterCursor == i+1 {
			itemStyle = s.ListSelected
		}
		dot := lipgloss.NewStyle().Foreground(styles.TagColor(tag)).Render("●")
		items = append(items, itemStyle.Render(dot+" "+tag.Name))
	}
	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *BoardView) renderColumns() string {
	cols := v.columns()
	contentWidth := styles.ContentWidth(v.width)
	colWidth := max(contentWidth/len(cols)-4, 12)

	// Each card is 2 lines.
	visible := max((v.height-14)/2, 1)

	rendered := make([]string, 0, len(cols))
	for i, status := range cols {
		rendered = append(rendered, v.renderColumn(status, i == v.column, colWidth, visible))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (v *BoardView) renderColumn(status models.Status, focused bool, width, visible int) string {
	s := v.styles
	cards := v.cards(status)

	header := s.ColumnHeader.Foreground(styles.StatusColor(status)).
		Render(fmt.Sprintf("%s (%d)", status.Label(), len(cards)))

	lines := []string{header}
	if len(cards) == 0 {
		lines = append(lines, s.TitleMuted.Render("empty"))
	}

	cursor := clamp(v.cursors[status], 0, max(len(cards)-1, 0))
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(start+visible, len(cards))
	for i := start; i < end; i++ {
		lines = append(lines, v.renderCard(cards[i], focused && i == cursor, width))
	}
	if end < len(cards) {
		lines = append(lines, s.TitleMuted.Render(fmt.Sprintf("… %d more", len(cards)-end)))
	}

	colStyle := s.Column
	if focused {
		colStyle = s.ColumnFocused
	}
	return colStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *BoardView) renderCard(task models.Task, selected bool, width int) string {
	s := v.styles

	marker := lipgloss.NewStyle().Foreground(styles.PriorityColor(task.Priority)).Render("●")
	title := truncateText(task.Title, width-4)

	var meta []string
	if n := len(v.store.GetTasksByParentID(task.ID)); n > 0 {
		done := 0
		for _, sub := range v.store.GetTasksByParentID(task.ID) {
			if sub.Status == models.StatusCompleted {
				done++
			}
		}
		meta = append(meta, fmt.Sprintf("%d/%d", done, n))
	}
	for _, tag := range v.store.GetTagsForTask(task.ID) {
		meta = append(meta, lipgloss.NewStyle().Foreground(styles.TagColor(tag)).Render("#"+tag.Name))
	}
	metaLine := truncateText(strings.Join(meta, " "), width-2)

	cardStyle := s.Card
	if selected {
		cardStyle = s.CardSelected
	}
	return cardStyle.Width(width).Render(marker + " " + title + "\n  " + s.TitleMuted.Render(metaLine))
}

func (v *BoardView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 70 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}

	return s.Help.Render(
		fmt.Sprintf("%s open • %s new • %s edit • %s del • %s done • %s move • %s search • %s filter • %s tags • %s help • %s quit",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("space"),
			s.HelpKey.Render("HJKL"),
			s.HelpKey.Render("/"),
			s.HelpKey.Render("f"),
			s.HelpKey.Render("t"),
			s.HelpKey.Render("?"),
			s.HelpKey.Render("q"),
		),
	)
}
