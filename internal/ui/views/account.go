package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// Account form fields.
const (
	accountEmail = iota
	accountPassword
	accountUsername
)

// authDone carries the result of a sign-in attempt run off the update loop.
type authDone struct {
	ok  bool
	err string
}

// AccountView signs in, registers and signs out.
type AccountView struct {
	ctx    context.Context
	store  *store.Store
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int

	registering bool
	working     bool
	spinner     spinner.Model
	inputs      []textinput.Model
	focusIdx    int
	err         string
}

// NewAccountView creates the account view.
func NewAccountView(ctx context.Context, st *store.Store) *AccountView {
	s := styles.NewStyles()

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 72

	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Current.Primary)

	return &AccountView{
		ctx:     ctx,
		store:   st,
		styles:  s,
		keys:    keys.DefaultKeyMap(),
		spinner: sp,
		inputs:  []textinput.Model{email, password, username},
	}
}

// Init resets the form.
func (v *AccountView) Init() tea.Cmd {
	v.err = ""
	v.focusIdx = accountEmail
	for i := range v.inputs {
		v.inputs[i].Reset()
	}
	v.updateFocus()
	return textinput.Blink
}

func (v *AccountView) fieldCount() int {
	if v.registering {
		return 3
	}
	return 2
}

func (v *AccountView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case spinner.TickMsg:
		if !v.working {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case authDone:
		v.working = false
		if !msg.ok {
			v.err = msg.err
			return v, nil
		}
		v.inputs[accountPassword].Reset()
		return v, emit(SignedIn{})

	case tea.KeyMsg:
		if v.working {
			return v, nil
		}
		if v.store.CurrentUser() != nil {
			return v, v.updateSignedIn(msg)
		}
		return v, v.updateSignedOut(msg)
	}
	return v, nil
}

func (v *AccountView) updateSignedIn(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.String() == "ctrl+c":
		return tea.Quit
	case msg.String() == "o":
		v.store.Logout(v.ctx)
		return v.Init()
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		return emit(BackToBoard{})
	}
	return nil
}

func (v *AccountView) updateSignedOut(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.String() == "ctrl+c":
		return tea.Quit

	case key.Matches(msg, v.keys.Back):
		return emit(BackToBoard{})

	case msg.String() == "ctrl+r":
		v.registering = !v.registering
		v.err = ""
		if v.focusIdx >= v.fieldCount() {
			v.focusIdx = accountEmail
		}
		v.updateFocus()
		return nil

	case key.Matches(msg, v.keys.Tab), msg.String() == "down":
		v.focusIdx = (v.focusIdx + 1) % v.fieldCount()
		v.updateFocus()
		return nil

	case msg.String() == "shift+tab", msg.String() == "up":
		v.focusIdx = (v.focusIdx + v.fieldCount() - 1) % v.fieldCount()
		v.updateFocus()
		return nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < v.fieldCount()-1 {
			v.focusIdx++
			v.updateFocus()
			return nil
		}
		return v.submit()
	}

	var cmd tea.Cmd
	v.inputs[v.focusIdx], cmd = v.inputs[v.focusIdx].Update(msg)
	return cmd
}

func (v *AccountView) updateFocus() {
	for i := range v.inputs {
		v.inputs[i].Blur()
	}
	v.inputs[v.focusIdx].Focus()
}

// submit runs the identity call as a command; password hashing is slow
// enough to stall the UI otherwise.
func (v *AccountView) submit() tea.Cmd {
	email := strings.TrimSpace(v.inputs[accountEmail].Value())
	password := v.inputs[accountPassword].Value()
	username := strings.TrimSpace(v.inputs[accountUsername].Value())
	registering := v.registering

	v.err = ""
	v.working = true
	v.store.ClearError()

	auth := func() tea.Msg {
		var ok bool
		if registering {
			ok = v.store.Register(v.ctx, username, email, password)
		} else {
			ok = v.store.Login(v.ctx, email, password)
		}
		res := authDone{ok: ok, err: v.store.Err()}
		v.store.ClearError()
		return res
	}
	return tea.Batch(v.spinner.Tick, auth)
}

// View renders the view
func (v *AccountView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var content string
	if u := v.store.CurrentUser(); u != nil {
		lines := []string{
			s.Title.Render("Account"),
			"",
			"Signed in as " + s.HelpKey.Render(u.Username),
			s.TitleMuted.Render(u.Email),
		}
		if u.LastLoginAt != nil {
			lines = append(lines, s.TitleMuted.Render("Last login "+u.LastLoginAt.Local().Format("Jan 2 15:04")))
		}
		lines = append(lines, "", s.TitleMuted.Render("o: sign out • esc: board"))
		content = lipgloss.JoinVertical(lipgloss.Left, lines...)
	} else {
		content = v.renderForm(contentWidth)
	}

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *AccountView) renderForm(contentWidth int) string {
	s := v.styles
	inputWidth := clamp(contentWidth-6, 20, 40)

	field := func(i int, label string) []string {
		st := s.Input
		if i == v.focusIdx {
			st = s.InputFocused
		}
		return []string{label + ":", st.Width(inputWidth).Render(v.inputs[i].View()), ""}
	}

	title := "Sign In"
	toggle := "ctrl+r: create an account"
	if v.registering {
		title = "Create Account"
		toggle = "ctrl+r: sign in instead"
	}

	lines := []string{s.Title.Render(title), ""}
	lines = append(lines, field(accountEmail, "Email")...)
	lines = append(lines, field(accountPassword, "Password")...)
	if v.registering {
		lines = append(lines, field(accountUsername, "Username")...)
	}

	switch {
	case v.working:
		lines = append(lines, v.spinner.View()+" working…")
	case v.err != "":
		lines = append(lines, s.Error.Render(v.err))
	}
	lines = append(lines, "", s.TitleMuted.Render("Enter: next/submit • "+toggle+" • Esc: continue as guest"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
