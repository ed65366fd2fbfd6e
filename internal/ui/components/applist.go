package components

import (
	"fmt"
	"strings"

	"appimage-installer/internal/models"
	"appimage-installer/internal/ui"
)

// AppList is the list of installed apps
type AppList struct {
	Apps    []models.AppRecord
	Cursor  int
	Width   int
	Height  int
	Focused bool
	Title   string

	filter  string
	visible []models.AppRecord
}

// NewAppList creates a new app list
func NewAppList(apps []models.AppRecord) *AppList {
	l := &AppList{
		Width:   34,
		Height:  15,
		Focused: true,
		Title:   "Installed",
	}
	l.SetApps(apps)
	return l
}

// SetApps replaces the apps, keeping the cursor on the same name when it is
// still listed.
func (l *AppList) SetApps(apps []models.AppRecord) {
	current, ok := l.Current()
	l.Apps = apps
	l.refilter()
	if ok {
		l.Select(current.Name)
	}
	l.clamp()
}

// SetFilter shows only apps whose name contains query, ignoring case
func (l *AppList) SetFilter(query string) {
	l.filter = strings.TrimSpace(query)
	l.refilter()
	l.Cursor = 0
}

// Filter returns the active filter query
func (l *AppList) Filter() string {
	return l.filter
}

func (l *AppList) refilter() {
	if l.filter == "" {
		l.visible = l.Apps
		return
	}
	q := strings.ToLower(l.filter)
	l.visible = nil
	for _, app := range l.Apps {
		if strings.Contains(strings.ToLower(app.Name), q) {
			l.visible = append(l.visible, app)
		}
	}
}

func (l *AppList) clamp() {
	if l.Cursor >= len(l.visible) {
		l.Cursor = max(0, len(l.visible)-1)
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
}

// Select moves the cursor to name and reports whether it is listed
func (l *AppList) Select(name string) bool {
	for i, app := range l.visible {
		if app.Name == name {
			l.Cursor = i
			return true
		}
	}
	return false
}

// MoveUp moves cursor up
func (l *AppList) MoveUp() {
	if l.Cursor > 0 {
		l.Cursor--
	}
}

// MoveDown moves cursor down
func (l *AppList) MoveDown() {
	if l.Cursor < len(l.visible)-1 {
		l.Cursor++
	}
}

func (l *AppList) pageSize() int {
	if l.Height-3 < 1 {
		return 10
	}
	return l.Height - 3
}

// PageUp moves cursor up by a page
func (l *AppList) PageUp() {
	l.Cursor -= l.pageSize()
	l.clamp()
}

// PageDown moves cursor down by a page
func (l *AppList) PageDown() {
	l.Cursor += l.pageSize()
	l.clamp()
}

// GoToFirst moves cursor to the first item
func (l *AppList) GoToFirst() {
	l.Cursor = 0
}

// GoToLast moves cursor to the last item
func (l *AppList) GoToLast() {
	l.Cursor = max(0, len(l.visible)-1)
}

// Current returns the app under the cursor
func (l *AppList) Current() (models.AppRecord, bool) {
	if l.Cursor >= 0 && l.Cursor < len(l.visible) {
		return l.visible[l.Cursor], true
	}
	return models.AppRecord{}, false
}

// Visible returns the apps that pass the filter
func (l *AppList) Visible() []models.AppRecord {
	return l.visible
}

// View renders the app list
func (l *AppList) View() string {
	var b strings.Builder

	title := l.Title
	switch {
	case l.filter != "":
		title = fmt.Sprintf("%s (%d/%d) /%s", l.Title, len(l.visible), len(l.Apps), l.filter)
	case len(l.Apps) > 0:
		title = fmt.Sprintf("%s (%d)", l.Title, len(l.Apps))
	}
	b.WriteString(ui.PanelTitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(ui.DividerStyle.Render(strings.Repeat("─", max(0, l.Width-2))))
	b.WriteString("\n")

	if len(l.visible) == 0 {
		msg := "No apps installed. Press i to install one."
		if l.filter != "" {
			msg = "No app matches the filter"
		}
		b.WriteString(ui.MutedStyle.Render(msg))
		return l.wrapInPanel(b.String())
	}

	visibleHeight := l.pageSize()
	startIdx := 0
	if l.Cursor >= visibleHeight {
		startIdx = l.Cursor - visibleHeight + 1
	}
	endIdx := min(startIdx+visibleHeight, len(l.visible))

	if startIdx > 0 {
		b.WriteString(ui.MutedStyle.Render("  ↑ more"))
		b.WriteString("\n")
	}
	for i := startIdx; i < endIdx; i++ {
		b.WriteString(l.renderItem(l.visible[i], i == l.Cursor))
		if i < endIdx-1 {
			b.WriteString("\n")
		}
	}
	if endIdx < len(l.visible) {
		b.WriteString("\n")
		b.WriteString(ui.MutedStyle.Render("  ↓ more"))
	}

	return l.wrapInPanel(b.String())
}

func (l *AppList) renderItem(app models.AppRecord, isCursor bool) string {
	date := ""
	if !app.InstallDate.IsZero() {
		date = app.InstallDate.Local().Format("2006-01-02")
	}

	name := truncate(app.Name, max(10, l.Width-len(date)-8))
	nameStyle := ui.AppNameStyle
	if isCursor && !l.Focused {
		// keep the cursor visible while another panel has focus
		nameStyle = ui.CursorStyle
	}
	content := nameStyle.Render(name)
	if date != "" {
		pad := max(1, l.Width-8-len([]rune(name))-len(date))
		content += strings.Repeat(" ", pad) + ui.AppDateStyle.Render(date)
	}

	if isCursor && l.Focused {
		return ui.SelectedItemStyle.Width(max(0, l.Width-4)).Render(content)
	}
	return ui.ItemStyle.Render(content)
}

func (l *AppList) wrapInPanel(content string) string {
	style := ui.PanelStyle
	if l.Focused {
		style = ui.ActivePanelStyle
	}
	return style.Width(l.Width).Height(l.Height).Render(content)
}

// truncate shortens s to n runes with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
