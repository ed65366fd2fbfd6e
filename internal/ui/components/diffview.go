package components

import (
	"fmt"
	"strings"

	"appimage-installer/internal/desktop"
	"appimage-installer/internal/ui"

	"github.com/charmbracelet/lipgloss"
)

// DiffView shows the line diff between two versions of a desktop entry
type DiffView struct {
	Width  int
	Height int

	Title string
	Diff  *desktop.EntryDiff

	ScrollOffset int

	highlighter *ui.Highlighter

	addStyle     lipgloss.Style
	deleteStyle  lipgloss.Style
	contextStyle lipgloss.Style
	headerStyle  lipgloss.Style
}

// NewDiffView creates a new DiffView
func NewDiffView() *DiffView {
	return &DiffView{
		Width:       60,
		Height:      12,
		highlighter: ui.NewHighlighter(),
		addStyle:    ui.AddedStyle,
		deleteStyle: ui.RemovedStyle,
		contextStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6c7086")),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89b4fa")),
	}
}

// SetTexts diffs before against after
func (d *DiffView) SetTexts(title, before, after string) {
	d.Title = title
	d.Diff = desktop.Diff(before, after)
	d.ScrollOffset = 0
}

// Clear removes the diff
func (d *DiffView) Clear() {
	d.Diff = nil
	d.ScrollOffset = 0
}

// ScrollUp scrolls the view up
func (d *DiffView) ScrollUp() {
	if d.ScrollOffset > 0 {
		d.ScrollOffset--
	}
}

// ScrollDown scrolls the view down
func (d *DiffView) ScrollDown() {
	if d.Diff != nil && d.ScrollOffset < len(d.Diff.Lines)-1 {
		d.ScrollOffset++
	}
}

// HasChanges returns true if there are differences
func (d *DiffView) HasChanges() bool {
	return d.Diff != nil && d.Diff.HasChanges()
}

// View renders the diff view
func (d *DiffView) View() string {
	if d.Diff == nil {
		return ui.MutedStyle.Render("No diff to display")
	}

	var b strings.Builder
	b.WriteString(d.headerStyle.Render(d.Title))
	b.WriteString("  ")
	b.WriteString(d.renderStats())
	b.WriteString("\n")

	if !d.Diff.HasChanges() {
		b.WriteString(ui.MutedStyle.Render("No changes"))
		return b.String()
	}

	lineWidth := max(10, d.Width-4)
	var lines []string
	for _, line := range d.Diff.Lines {
		lines = append(lines, d.formatLine(line, lineWidth))
	}

	visible := max(1, d.Height-2)
	start := min(d.ScrollOffset, len(lines))
	end := min(start+visible, len(lines))
	b.WriteString(strings.Join(lines[start:end], "\n"))
	return b.String()
}

func (d *DiffView) renderStats() string {
	if !d.Diff.HasChanges() {
		return ui.MutedStyle.Render("identical")
	}
	var parts []string
	if d.Diff.LinesAdded > 0 {
		parts = append(parts, d.addStyle.Render(fmt.Sprintf("+%d", d.Diff.LinesAdded)))
	}
	if d.Diff.LinesRemoved > 0 {
		parts = append(parts, d.deleteStyle.Render(fmt.Sprintf("-%d", d.Diff.LinesRemoved)))
	}
	return strings.Join(parts, " ")
}

func (d *DiffView) formatLine(line desktop.DiffLine, maxWidth int) string {
	content := truncate(line.Content, maxWidth-2)

	switch line.Type {
	case desktop.DiffInsert:
		return d.addStyle.Render("+ " + content)
	case desktop.DiffDelete:
		return d.deleteStyle.Render("- " + content)
	default:
		return d.contextStyle.Render("  ") + d.highlighter.HighlightLine(content)
	}
}
