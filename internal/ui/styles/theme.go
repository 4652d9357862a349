// Package styles holds the board palette and the lipgloss styles built from
// it.
package styles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kanban/internal/markdown"
	"github.com/tgienger/kanban/internal/models"
)

// Theme is a named palette.
type Theme struct {
	Name string

	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Primary    lipgloss.Color
	Highlight  lipgloss.Color // selected card background
	Border     lipgloss.Color
	Error      lipgloss.Color

	// Lane colors, one per status.
	Todo       lipgloss.Color
	InProgress lipgloss.Color
	Done       lipgloss.Color
	Cancelled  lipgloss.Color

	// Priority markers indexed by Priority.Rank.
	Priorities [5]lipgloss.Color

	Markdown markdown.Style
}

// Night is the default dark theme.
var Night = Theme{
	Name:       "night",
	Background: "#16161e",
	Foreground: "#d5d9f0",
	Muted:      "#5c6386",
	Primary:    "#82aaff",
	Highlight:  "#2d3b6b",
	Border:     "#363c58",
	Error:      "#ff7a93",
	Todo:       "#86e1fc",
	InProgress: "#ffc777",
	Done:       "#a6da95",
	Cancelled:  "#5c6386",
	Priorities: [5]lipgloss.Color{"#5c6386", "#d5d9f0", "#82aaff", "#ffc777", "#ff7a93"},
	Markdown:   markdown.Dark,
}

// Day is a theme for light terminals.
var Day = Theme{
	Name:       "day",
	Background: "#f4f4f6",
	Foreground: "#2f3549",
	Muted:      "#8a8fa8",
	Primary:    "#2e5cb8",
	Highlight:  "#d3ddf5",
	Border:     "#b8bdd0",
	Error:      "#c4314b",
	Todo:       "#1d7f9e",
	InProgress: "#a86500",
	Done:       "#3d7a2a",
	Cancelled:  "#8a8fa8",
	Priorities: [5]lipgloss.Color{"#8a8fa8", "#2f3549", "#2e5cb8", "#a86500", "#c4314b"},
	Markdown:   markdown.Light,
}

var themes = map[string]Theme{
	Night.Name: Night,
	Day.Name:   Day,
}

// Current holds the active theme. Set it with Use before building styles.
var Current = Night

// Use makes the named theme current. An empty name selects Night.
func Use(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Night.Name
	}
	t, ok := themes[name]
	if !ok {
		return fmt.Errorf("unknown theme %q (want one of %s)", name, strings.Join(ThemeNames(), ", "))
	}
	Current = t
	return nil
}

// ThemeNames lists the available themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaxWidth caps the rendered board width.
const MaxWidth = 120

// ContentWidth returns min(terminalWidth, MaxWidth).
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content on terminals wider than MaxWidth.
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, content)
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	FilterBar lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	Tag lipgloss.Style

	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	ColumnHeader  lipgloss.Style
	Card          lipgloss.Style
	CardSelected  lipgloss.Style

	Error lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style
}

// NewStyles builds styles from the current theme.
func NewStyles() *Styles {
	t := Current
	boxed := func(border lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)
	}
	text := lipgloss.NewStyle().Foreground(t.Foreground)
	selected := lipgloss.NewStyle().
		Foreground(t.Primary).
		Background(t.Highlight).
		Bold(true)

	return &Styles{
		Title:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		TitleMuted: lipgloss.NewStyle().Foreground(t.Muted),

		ListItem:     text.Padding(0, 2),
		ListSelected: selected.Padding(0, 2),

		FilterBar: boxed(t.Border),

		Button:        boxed(t.Border).Foreground(t.Foreground).Padding(0, 2),
		ButtonFocused: boxed(t.Primary).Foreground(t.Primary).Padding(0, 2).Bold(true),
		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Tag: lipgloss.NewStyle().Padding(0, 1).MarginRight(1),

		Column:        boxed(t.Border),
		ColumnFocused: boxed(t.Primary),
		ColumnHeader:  lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Card:          text.Padding(0, 1),
		CardSelected:  selected.Padding(0, 1),

		Error: lipgloss.NewStyle().Foreground(t.Error).Padding(0, 1),

		Input:        boxed(t.Border).Foreground(t.Foreground),
		InputFocused: boxed(t.Primary).Foreground(t.Foreground),

		Help:    lipgloss.NewStyle().Foreground(t.Muted).Padding(1, 2),
		HelpKey: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
	}
}

// PriorityColor returns the marker color for a priority.
func PriorityColor(p models.Priority) lipgloss.Color {
	r := p.Rank()
	if r < 0 {
		return Current.Muted
	}
	return Current.Priorities[r]
}

// StatusColor returns the lane color for a status.
func StatusColor(s models.Status) lipgloss.Color {
	switch s {
	case models.StatusInProgress:
		return Current.InProgress
	case models.StatusCompleted:
		return Current.Done
	case models.StatusCancelled:
		return Current.Cancelled
	default:
		return Current.Todo
	}
}

// TagColor returns the tag's own color, or the todo lane color when it has
// none.
func TagColor(tag models.Tag) lipgloss.Color {
	if tag.Color == "" {
		return Current.Todo
	}
	return lipgloss.Color(tag.Color)
}
