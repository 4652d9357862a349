package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewBoard View = iota
	ViewTags
	ViewAccount
)

type App struct {
	ctx         context.Context
	store       *store.Store
	currentView View
	board       *views.BoardView
	tags        *views.TagListView
	account     *views.AccountView
	width       int
	height      int
}

// NewApp creates the application. Settings may be nil, in which case UI
// preferences are not remembered.
func NewApp(ctx context.Context, st *store.Store, settings views.Settings) *App {
	a := &App{
		ctx:         ctx,
		store:       st,
		currentView: ViewBoard,
		board:       views.NewBoardView(ctx, st, settings),
		tags:        views.NewTagListView(ctx, st),
		account:     views.NewAccountView(ctx, st),
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.store.CurrentUser() == nil {
		a.currentView = ViewAccount
		return a.account.Init()
	}
	return a.board.Init()
}

// open switches views and replays the window size so the new view can lay
// itself out.
func (a *App) open(v View, init tea.Cmd) tea.Cmd {
	a.currentView = v
	return tea.Batch(
		init,
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The board persists behind the other views.
		a.board.Update(msg)
		if a.currentView == ViewBoard {
			return a, nil
		}

	case views.BackToBoard, views.SignedIn:
		return a, a.open(ViewBoard, a.board.Init())

	case views.OpenTags:
		return a, a.open(ViewTags, a.tags.Init())

	case views.OpenAccount:
		return a, a.open(ViewAccount, a.account.Init())
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewBoard:
		_, cmd = a.board.Update(msg)
	case ViewTags:
		_, cmd = a.tags.Update(msg)
	case ViewAccount:
		_, cmd = a.account.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewTags:
		return a.tags.View()
	case ViewAccount:
		return a.account.View()
	}
	return a.board.View()
}
