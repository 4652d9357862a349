package views

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// Settings persists small UI preferences between sessions.
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Setting keys.
const (
	SettingBoardColumn   = "board_column"
	SettingShowCancelled = "board_show_cancelled"
)

// BackToBoard signals to return to the board.
type BackToBoard struct{}

// OpenTags signals to open the tag manager.
type OpenTags struct{}

// OpenAccount signals to open the sign-in view.
type OpenAccount struct{}

// SignedIn is sent after a successful login or registration.
type SignedIn struct{}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// truncateText cuts s to width cells, marking the cut with an ellipsis.
func truncateText(s string, width int) string {
	if width <= 1 {
		return ""
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

func renderConfirm(s *styles.Styles, title, subject string, width, height int) string {
	contentWidth := styles.ContentWidth(width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		s.TitleMuted.Render(truncateText(subject, contentWidth-4)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}

func renderHelpPopup(s *styles.Styles, bindings []key.Binding, width, height int) string {
	contentWidth := styles.ContentWidth(width)

	keyWidth := 0
	for _, b := range bindings {
		keyWidth = max(keyWidth, lipgloss.Width(b.Help().Key))
	}

	lines := []string{s.Title.Render("Keyboard Shortcuts"), ""}
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, s.HelpKey.Width(keyWidth+2).Render(h.Key)+h.Desc)
	}
	lines = append(lines, "", s.TitleMuted.Render("Press any key to close"))

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
	return styles.CenterView(centered, width, height)
}
