package components

import (
	"strings"

	"appimage-installer/internal/ui"
)

// ConfirmDialog asks a yes/no question. "No" is highlighted first.
type ConfirmDialog struct {
	Title   string
	Message string
	Width   int
	Visible bool

	yes bool
}

// NewConfirmDialog creates a hidden dialog
func NewConfirmDialog() *ConfirmDialog {
	return &ConfirmDialog{Width: 50}
}

// Show opens the dialog
func (d *ConfirmDialog) Show(title, message string) {
	d.Title = title
	d.Message = message
	d.Visible = true
	d.yes = false
}

// Hide hides the dialog
func (d *ConfirmDialog) Hide() {
	d.Visible = false
}

// Toggle switches the highlighted button
func (d *ConfirmDialog) Toggle() {
	d.yes = !d.yes
}

// Yes reports whether the "Yes" button is highlighted
func (d *ConfirmDialog) Yes() bool {
	return d.yes
}

// View renders the dialog
func (d *ConfirmDialog) View() string {
	if !d.Visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(ui.PanelTitleStyle.Render(d.Title))
	b.WriteString("\n\n")
	b.WriteString(d.Message)
	b.WriteString("\n\n")
	b.WriteString(ui.RenderButton("Yes", d.yes) + "  " + ui.RenderButton("No", !d.yes))
	b.WriteString("\n\n")
	b.WriteString(strings.Join([]string{
		ui.RenderHelpItem("y/n", "answer"),
		ui.RenderHelpItem("tab", "switch"),
		ui.RenderHelpItem("enter", "confirm"),
	}, "  "))

	return ui.DialogStyle.Width(d.Width).Render(b.String())
}
