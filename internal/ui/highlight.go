package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Highlighter colors desktop entry text
type Highlighter struct {
	style *chroma.Style
	lexer chroma.Lexer
}

// NewHighlighter creates a highlighter for the INI-like desktop entry format
func NewHighlighter() *Highlighter {
	lexer := lexers.Get("ini")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Highlighter{
		style: styles.Get("catppuccin-mocha"),
		lexer: chroma.Coalesce(lexer),
	}
}

// Highlight returns the lines of content with terminal colors applied.
// Tokens spanning a newline are split so every line renders on its own.
func (h *Highlighter) Highlight(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}

	iterator, err := h.lexer.Tokenise(nil, content)
	if err != nil {
		return strings.Split(content, "\n")
	}

	lines := []string{}
	var current strings.Builder
	for token := iterator(); token != chroma.EOF; token = iterator() {
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
			current.WriteString(h.render(token.Type, part))
		}
	}
	lines = append(lines, current.String())
	return lines
}

// HighlightLine highlights a single entry line
func (h *Highlighter) HighlightLine(line string) string {
	out := h.Highlight(line)
	if len(out) == 0 {
		return line
	}
	return out[0]
}

func (h *Highlighter) render(typ chroma.TokenType, text string) string {
	if text == "" {
		return ""
	}
	entry := h.style.Get(typ)
	if !entry.Colour.IsSet() {
		return text
	}

	styled := lipgloss.NewStyle().Foreground(lipgloss.Color(entry.Colour.String()))
	if entry.Bold == chroma.Yes {
		styled = styled.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		styled = styled.Italic(true)
	}
	return styled.Render(text)
}
