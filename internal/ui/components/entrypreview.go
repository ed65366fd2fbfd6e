package components

import (
	"fmt"
	"strings"
	"time"

	"appimage-installer/internal/models"
	"appimage-installer/internal/ui"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// EntryPreview shows an installed app and its desktop entry
type EntryPreview struct {
	viewport    viewport.Model
	highlighter *ui.Highlighter

	App            models.AppRecord
	BundleSize     int64
	MenuPresent    bool
	DesktopPresent bool
	TotalLines     int

	Width  int
	Height int

	// Now is the reference time for "installed ... ago"
	Now func() time.Time

	lineNumStyle lipgloss.Style
	headerStyle  lipgloss.Style
	infoStyle    lipgloss.Style
	borderStyle  lipgloss.Style
}

// NewEntryPreview creates an empty preview
func NewEntryPreview() *EntryPreview {
	vp := viewport.New(60, 15)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	return &EntryPreview{
		viewport:    vp,
		highlighter: ui.NewHighlighter(),
		Width:       60,
		Height:      20,
		Now:         time.Now,
		lineNumStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6c7086")).
			Width(3).
			Align(lipgloss.Right),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89b4fa")),
		infoStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6c7086")),
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.Border).
			Padding(0, 1),
	}
}

// SetSize updates the viewport dimensions
func (p *EntryPreview) SetSize(width, height int) {
	p.Width = width
	p.Height = height

	// header (4 lines) and border (2 lines)
	p.viewport.Height = max(3, height-6)
	p.viewport.Width = max(20, width-4)
}

// SetEntry shows rec with its desktop entry text
func (p *EntryPreview) SetEntry(rec models.AppRecord, content string, menu, desktop bool, bundleSize int64) {
	p.App = rec
	p.MenuPresent = menu
	p.DesktopPresent = desktop
	p.BundleSize = bundleSize

	lines := p.highlighter.Highlight(content)
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(p.lineNumStyle.Render(fmt.Sprintf("%d", i+1)) + " │ " + line)
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	p.TotalLines = len(lines)
	p.viewport.SetContent(b.String())
	p.viewport.GotoTop()
}

// Clear empties the preview
func (p *EntryPreview) Clear() {
	p.App = models.AppRecord{}
	p.TotalLines = 0
	p.viewport.SetContent("")
}

// Update handles messages for viewport scrolling
func (p *EntryPreview) Update(msg tea.Msg) (*EntryPreview, tea.Cmd) {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// View renders the preview
func (p *EntryPreview) View() string {
	style := p.borderStyle.Width(p.Width).Height(p.Height)
	if p.App.Name == "" {
		return style.Render(ui.MutedStyle.Render("Select an app to see its desktop entry"))
	}

	var b strings.Builder
	b.WriteString(p.headerStyle.Render(p.App.Name))
	if !p.App.InstallDate.IsZero() {
		b.WriteString(p.infoStyle.Render("  installed " + formatTimeAgo(p.App.InstallDate.Time, p.Now())))
	}
	b.WriteString("\n")

	b.WriteString(ui.PathStyle.Render(p.App.Path))
	if p.BundleSize > 0 {
		b.WriteString(p.infoStyle.Render("  " + formatBytes(p.BundleSize)))
	}
	b.WriteString("\n")
	b.WriteString(ui.RenderPresence("menu", p.MenuPresent) + "  " + ui.RenderPresence("desktop", p.DesktopPresent) + "\n")
	b.WriteString(ui.DividerStyle.Render(strings.Repeat("─", max(0, p.Width-4))) + "\n")

	b.WriteString(p.viewport.View())
	if p.TotalLines > p.viewport.Height {
		b.WriteString("\n" + p.infoStyle.Render(fmt.Sprintf("─── %.0f%% ───", p.viewport.ScrollPercent()*100)))
	}

	return style.Render(b.String())
}

// ScrollUp scrolls up one line
func (p *EntryPreview) ScrollUp() {
	p.viewport.LineUp(1)
}

// ScrollDown scrolls down one line
func (p *EntryPreview) ScrollDown() {
	p.viewport.LineDown(1)
}

// formatBytes formats bytes to human readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatTimeAgo formats t relative to now
func formatTimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}

	d := now.Sub(t)
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}

// stripAnsi removes ANSI escape codes from a string
func stripAnsi(str string) string {
	var result strings.Builder
	inEscape := false

	for i := 0; i < len(str); i++ {
		if str[i] == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if str[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteByte(str[i])
	}

	return result.String()
}
