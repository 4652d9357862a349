package views

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/tgienger/kanban/internal/identity"
	"github.com/tgienger/kanban/internal/logging"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/slot"
	"github.com/tgienger/kanban/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type memSettings map[string]string

func (m memSettings) GetSetting(key string) (string, error) { return m[key], nil }
func (m memSettings) SetSetting(key, value string) error {
	m[key] = value
	return nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	mem := slot.NewMemory()
	id, err := identity.NewLocal(ctx, identity.LocalOptions{Slot: mem, Secret: "s", Cost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	st, err := store.Open(ctx, store.Options{Slot: mem, Identity: id, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return st
}

type model interface {
	Update(tea.Msg) (tea.Model, tea.Cmd)
}

// send delivers msg and feeds resulting messages back until none remain.
func send(m model, msg tea.Msg) {
	_, cmd := m.Update(msg)
	drain(m, cmd, 0)
}

func drain(m model, cmd tea.Cmd, depth int) {
	if cmd == nil || depth > 4 {
		return
	}
	switch msg := cmd().(type) {
	case nil, tea.QuitMsg, spinner.TickMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			drain(m, c, depth+1)
		}
	default:
		_, next := m.Update(msg)
		drain(m, next, depth+1)
	}
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m model, ks ...tea.KeyMsg) {
	for _, k := range ks {
		send(m, k)
	}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	save  = tea.KeyMsg{Type: tea.KeyCtrlS}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func newTestBoard(t *testing.T, settings Settings) (*BoardView, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	b := NewBoardView(context.Background(), st, settings)
	send(b, tea.WindowSizeMsg{Width: 120, Height: 40})
	return b, st
}

func addRoot(t *testing.T, st *store.Store, title string, status models.Status) models.Task {
	t.Helper()
	task := st.AddTask(context.Background(), store.NewTask{Title: title, Status: status})
	if task == nil {
		t.Fatalf("add %q: %s", title, st.Err())
	}
	return *task
}

func TestBoard_CreateTaskInCurrentColumn(t *testing.T) {
	b, st := newTestBoard(t, nil)

	press(b, typed("l"), typed("n"), typed("Write docs"), save)

	tasks := st.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(tasks))
	}
	if tasks[0].Title != "Write docs" || tasks[0].Status != models.StatusInProgress {
		t.Errorf("got %q in %s, want Write docs in in_progress", tasks[0].Title, tasks[0].Status)
	}
	if b.form.active {
		t.Error("form should close after saving")
	}
	if !strings.Contains(b.View(), "Write docs") {
		t.Error("new card not rendered")
	}
}

func TestBoard_FormShowsValidationError(t *testing.T) {
	b, st := newTestBoard(t, nil)

	press(b, typed("n"), save)

	if !b.form.active {
		t.Fatal("form should stay open on a validation error")
	}
	if b.form.err != "Title is required" {
		t.Errorf("form error = %q", b.form.err)
	}
	if len(st.Tasks()) != 0 || st.Err() != "" {
		t.Error("store should be unchanged with its error cleared")
	}

	press(b, esc)
	if b.form.active {
		t.Error("esc should cancel the form")
	}
}

func TestBoard_MoveCardBetweenColumns(t *testing.T) {
	b, st := newTestBoard(t, nil)
	task := addRoot(t, st, "Card", models.StatusTodo)

	press(b, typed("L"))
	got, _ := st.GetTaskByID(task.ID)
	if got.Status != models.StatusInProgress {
		t.Fatalf("status = %s, want in_progress", got.Status)
	}
	if b.currentStatus() != models.StatusInProgress {
		t.Error("focus should follow the card")
	}

	press(b, typed("L"))
	got, _ = st.GetTaskByID(task.ID)
	if got.Status != models.StatusCompleted || got.CompletedAt == nil {
		t.Errorf("expected completed with CompletedAt, got %s %v", got.Status, got.CompletedAt)
	}

	press(b, typed("H"))
	got, _ = st.GetTaskByID(task.ID)
	if got.Status != models.StatusInProgress || got.CompletedAt != nil {
		t.Errorf("expected in_progress without CompletedAt, got %s %v", got.Status, got.CompletedAt)
	}
}

func TestBoard_ReorderWithinColumn(t *testing.T) {
	b, st := newTestBoard(t, nil)
	a := addRoot(t, st, "A", models.StatusTodo)
	addRoot(t, st, "Other", models.StatusInProgress)
	c := addRoot(t, st, "C", models.StatusTodo)

	// Select C, the second card in To Do, and move it above A.
	press(b, typed("j"), typed("K"))

	cards := b.cards(models.StatusTodo)
	if cards[0].ID != c.ID || cards[1].ID != a.ID {
		t.Errorf("expected C before A, got %s, %s", cards[0].Title, cards[1].Title)
	}
	if b.cursors[models.StatusTodo] != 0 {
		t.Error("cursor should follow the moved card")
	}
	roots := st.GetTasksByParentID("")
	for i, r := range roots {
		if r.Order != i {
			t.Errorf("root orders not contiguous: %s has %d at %d", r.Title, r.Order, i)
		}
	}
}

func TestBoard_ToggleAndDelete(t *testing.T) {
	b, st := newTestBoard(t, nil)
	task := addRoot(t, st, "Card", models.StatusTodo)
	st.AddTask(context.Background(), store.NewTask{Title: "Sub", ParentID: task.ID})

	press(b, typed(" "))
	got, _ := st.GetTaskByID(task.ID)
	if got.Status != models.StatusCompleted {
		t.Fatalf("toggle: status = %s", got.Status)
	}

	press(b, typed("l"), typed("l"), typed("d"))
	if !b.confirmingDelete {
		t.Fatal("expected delete confirmation")
	}
	press(b, typed("n"))
	if len(st.Tasks()) != 2 {
		t.Fatal("declined delete should keep the task")
	}

	press(b, typed("d"), typed("y"))
	if len(st.Tasks()) != 0 {
		t.Errorf("expected task and subtask deleted, %d remain", len(st.Tasks()))
	}
}

func TestBoard_DetailSubtasks(t *testing.T) {
	b, st := newTestBoard(t, nil)
	parent := addRoot(t, st, "Parent", models.StatusTodo)

	press(b, enter)
	if !b.detailOpen() {
		t.Fatal("enter should open the detail view")
	}

	press(b, typed("s"), typed("First"), save)
	press(b, typed("s"), typed("Second"), save)
	subs := st.GetTasksByParentID(parent.ID)
	if len(subs) != 2 || subs[0].Title != "First" || subs[1].Title != "Second" {
		t.Fatalf("unexpected subtasks %+v", subs)
	}
	if !b.detailOpen() {
		t.Fatal("detail should still be open after the form closes")
	}

	// Move Second above First.
	press(b, typed("j"), typed("K"))
	subs = st.GetTasksByParentID(parent.ID)
	if subs[0].Title != "Second" {
		t.Errorf("expected Second first, got %s", subs[0].Title)
	}

	// Toggle the selected subtask, then drill into it and back out.
	press(b, typed("x"))
	if got, _ := st.GetTaskByID(subs[0].ID); got.Status != models.StatusCompleted {
		t.Errorf("subtask status = %s", got.Status)
	}
	press(b, enter)
	if cur, _ := b.detail.current(); cur.ID != subs[0].ID {
		t.Errorf("expected to drill into %s", subs[0].Title)
	}
	press(b, esc, esc)
	if b.detailOpen() {
		t.Error("two escapes should close the detail view")
	}
}

func TestBoard_FilterByTag(t *testing.T) {
	b, st := newTestBoard(t, nil)
	ctx := context.Background()
	tag := st.AddTag(ctx, store.NewTag{Name: "urgent"})
	st.AddTask(ctx, store.NewTask{Title: "Tagged", TagIDs: []string{tag.ID}})
	st.AddTask(ctx, store.NewTask{Title: "Plain"})

	press(b, typed("f"), down, enter)
	cards := b.cards(models.StatusTodo)
	if len(cards) != 1 || cards[0].Title != "Tagged" {
		t.Errorf("expected only the tagged card, got %+v", cards)
	}

	press(b, esc)
	if len(b.cards(models.StatusTodo)) != 2 {
		t.Error("esc should clear the filter")
	}
}

func TestBoard_Search(t *testing.T) {
	b, st := newTestBoard(t, nil)
	addRoot(t, st, "Fix login bug", models.StatusTodo)
	addRoot(t, st, "Write docs", models.StatusTodo)

	press(b, typed("/"), typed("LOGIN"), enter)
	cards := b.cards(models.StatusTodo)
	if len(cards) != 1 || cards[0].Title != "Fix login bug" {
		t.Errorf("search is case-insensitive on titles, got %+v", cards)
	}
}

func TestBoard_RemembersColumn(t *testing.T) {
	settings := memSettings{}
	b, st := newTestBoard(t, settings)

	press(b, typed("c"), typed("l"), typed("l"), typed("l"))
	if settings[SettingBoardColumn] != "3" || settings[SettingShowCancelled] != "true" {
		t.Fatalf("settings = %v", settings)
	}

	again := NewBoardView(context.Background(), st, settings)
	if again.currentStatus() != models.StatusCancelled {
		t.Errorf("restored column = %s, want cancelled", again.currentStatus())
	}
}

type failingSettings struct{}

func (failingSettings) GetSetting(string) (string, error) { return "", nil }
func (failingSettings) SetSetting(string, string) error  { return errors.New("database is locked") }

func TestBoard_LogsSettingFailures(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	st, err := store.Open(ctx, store.Options{Slot: slot.NewMemory(), Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	b := NewBoardView(ctx, st, failingSettings{})

	press(b, typed("l"))

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || !strings.Contains(entry.Message, "SETTING_SAVE_FAILED") {
		t.Fatalf("expected a logged warning, got %+v", entry)
	}
	if entry.Data[logrus.ErrorKey] == nil {
		t.Error("expected the error attached to the entry")
	}
	if b.column != 1 {
		t.Error("the column change should still apply")
	}
}

func TestBoard_OpensOtherViews(t *testing.T) {
	b, _ := newTestBoard(t, nil)

	_, cmd := b.Update(typed("t"))
	if _, ok := cmd().(OpenTags); !ok {
		t.Error("t should open the tag manager")
	}
	_, cmd = b.Update(typed("u"))
	if _, ok := cmd().(OpenAccount); !ok {
		t.Error("u should open the account view")
	}
}

func TestTagList_CreateRenameDelete(t *testing.T) {
	st := newTestStore(t)
	v := NewTagListView(context.Background(), st)
	v.Init()
	send(v, tea.WindowSizeMsg{Width: 100, Height: 30})

	press(v, typed("n"), typed("work"), enter, typed("#ff0000"), save)
	tags := st.Tags()
	if len(tags) != 1 || tags[0].Name != "work" || tags[0].Color != "#ff0000" {
		t.Fatalf("unexpected tags %+v", tags)
	}

	press(v, typed("n"), save)
	if !v.editing || v.formErr != "Tag name is required" {
		t.Errorf("expected validation error in the form, got editing=%v err=%q", v.editing, v.formErr)
	}
	press(v, esc)

	press(v, enter, tea.KeyMsg{Type: tea.KeyCtrlU}, typed("office"), save)
	if got := st.Tags()[0].Name; got != "office" {
		t.Errorf("rename: name = %q", got)
	}

	press(v, typed("d"), typed("y"))
	if len(st.Tags()) != 0 {
		t.Error("tag should be deleted")
	}

	_, cmd := v.Update(esc)
	if _, ok := cmd().(BackToBoard); !ok {
		t.Error("esc should return to the board")
	}
}

func TestAccount_RegisterLoginLogout(t *testing.T) {
	st := newTestStore(t)
	v := NewAccountView(context.Background(), st)
	v.Init()

	press(v, tea.KeyMsg{Type: tea.KeyCtrlR})
	if !v.registering {
		t.Fatal("ctrl+r should switch to registration")
	}
	press(v, typed("ada@example.com"), enter, typed("correct horse"), enter, typed("ada"), enter)

	if u := st.CurrentUser(); u == nil || u.Username != "ada" {
		t.Fatalf("expected ada signed in, got %+v (err %q)", u, v.err)
	}
	if v.working {
		t.Error("should not be working after the result arrives")
	}

	press(v, typed("o"))
	if st.CurrentUser() != nil {
		t.Fatal("o should sign out")
	}

	press(v, tea.KeyMsg{Type: tea.KeyCtrlR})
	press(v, typed("ada@example.com"), enter, typed("wrong password"), enter)
	if st.CurrentUser() != nil {
		t.Error("wrong password must not sign in")
	}
	if !strings.Contains(v.err, "Login failed") {
		t.Errorf("expected login error shown, got %q", v.err)
	}
	if st.Err() != "" {
		t.Error("store error should be cleared once shown")
	}
}
