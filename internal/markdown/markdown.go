// Package markdown renders task descriptions for the terminal.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Style selects the glamour style used for rendering.
type Style int

const (
	// Plain renders without color, for pipes and files.
	Plain Style = iota
	// Dark renders with the dark terminal palette.
	Dark
	// Light renders for light terminal backgrounds.
	Light
)

type rendererKey struct {
	style Style
	width int
}

var (
	rendererMu sync.Mutex
	renderers  = map[rendererKey]*glamour.TermRenderer{}
)

// Render formats markdown text wrapped to width. Empty or blank input
// renders as "". When the renderer fails the trimmed input is returned.
func Render(input string, width int, style Style) string {
	value := strings.TrimRight(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	if strings.TrimSpace(value) == "" {
		return ""
	}
	if width < 1 {
		width = 1
	}

	renderer := markdownRenderer(style, width)
	if renderer == nil {
		return value
	}
	formatted, err := renderer.Render(value)
	if err != nil {
		return value
	}
	return strings.Trim(formatted, "\n")
}

func markdownRenderer(style Style, width int) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	key := rendererKey{style: style, width: width}
	if cached, ok := renderers[key]; ok {
		return cached
	}

	var cfg ansi.StyleConfig
	switch style {
	case Dark:
		cfg = styles.DarkStyleConfig
	case Light:
		cfg = styles.LightStyleConfig
	default:
		cfg = styles.ASCIIStyleConfig
		cfg.Item.BlockPrefix = "- "
	}
	// The document margin is owned by the surrounding layout.
	zero := uint(0)
	cfg.Document.Margin = &zero

	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(cfg),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[key] = created
	return created
}
