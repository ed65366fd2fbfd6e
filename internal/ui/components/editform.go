package components

import (
	"strings"

	"appimage-installer/internal/config"
	"appimage-installer/internal/installer"
	"appimage-installer/internal/models"
	"appimage-installer/internal/ui"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Edit form fields
const (
	FieldName = iota
	FieldComment
	FieldIcon
	fieldCount
)

// PreviewFunc returns the desktop entry of name before and after req
type PreviewFunc func(name string, req installer.EditRequest) (before, after string, err error)

// EditForm edits the name, comment and icon of one app with a live diff of
// its desktop entry.
type EditForm struct {
	App     models.AppRecord
	Inputs  []textinput.Model
	Focus   int
	Width   int
	Visible bool
	Err     error

	preview PreviewFunc
	diff    *DiffView
}

// NewEditForm creates a hidden form
func NewEditForm(preview PreviewFunc) *EditForm {
	labels := []string{"App name", "Description", "/path/to/icon.png (empty keeps the current icon)"}
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = labels[i]
		ti.CharLimit = 256
		ti.Width = 44
		inputs[i] = ti
	}

	return &EditForm{
		Inputs:  inputs,
		Width:   64,
		preview: preview,
		diff:    NewDiffView(),
	}
}

// Show opens the form for app
func (f *EditForm) Show(app models.AppRecord) tea.Cmd {
	f.App = app
	f.Visible = true
	f.Err = nil
	f.Inputs[FieldName].SetValue(app.Name)
	f.Inputs[FieldComment].SetValue(app.Comment)
	f.Inputs[FieldIcon].SetValue("")
	f.Focus = FieldName
	f.refresh()
	return f.focusCurrent()
}

// Hide hides the form
func (f *EditForm) Hide() {
	f.Visible = false
	for i := range f.Inputs {
		f.Inputs[i].Blur()
	}
}

// Next focuses the next field
func (f *EditForm) Next() tea.Cmd {
	f.Focus = (f.Focus + 1) % fieldCount
	return f.focusCurrent()
}

// Prev focuses the previous field
func (f *EditForm) Prev() tea.Cmd {
	f.Focus = (f.Focus + fieldCount - 1) % fieldCount
	return f.focusCurrent()
}

func (f *EditForm) focusCurrent() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.Inputs {
		if i == f.Focus {
			cmd = f.Inputs[i].Focus()
		} else {
			f.Inputs[i].Blur()
		}
	}
	return cmd
}

// Update forwards msg to the focused input and refreshes the diff
func (f *EditForm) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.Inputs[f.Focus], cmd = f.Inputs[f.Focus].Update(msg)
	f.refresh()
	return cmd
}

// Request builds the edit from the fields that differ from the app
func (f *EditForm) Request() installer.EditRequest {
	var req installer.EditRequest
	if name := strings.TrimSpace(f.Inputs[FieldName].Value()); name != f.App.Name {
		req.NewName = &name
	}
	if comment := f.Inputs[FieldComment].Value(); comment != f.App.Comment {
		req.Comment = &comment
	}
	if icon := strings.TrimSpace(f.Inputs[FieldIcon].Value()); icon != "" {
		req.IconPath = config.ExpandHome(icon)
	}
	return req
}

// Empty reports whether the form changes nothing
func (f *EditForm) Empty() bool {
	req := f.Request()
	return req.NewName == nil && req.Comment == nil && req.IconPath == ""
}

func (f *EditForm) refresh() {
	if f.preview == nil {
		return
	}
	before, after, err := f.preview(f.App.Name, f.Request())
	f.Err = err
	if err != nil {
		f.diff.Clear()
		return
	}
	f.diff.Width = f.Width - 4
	f.diff.SetTexts(f.App.DesktopFileName(), before, after)
}

// View renders the form
func (f *EditForm) View() string {
	if !f.Visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(ui.PanelTitleStyle.Render("Edit " + f.App.Name))
	b.WriteString("\n\n")

	labels := []string{"Name", "Comment", "Icon"}
	for i, input := range f.Inputs {
		b.WriteString(ui.LabelStyle.Render(labels[i]) + " " + input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if f.Err != nil {
		b.WriteString(ui.ErrorTextStyle.Render("✗ " + f.Err.Error()))
	} else {
		b.WriteString(f.diff.View())
	}
	b.WriteString("\n\n")
	b.WriteString(strings.Join([]string{
		ui.RenderHelpItem("tab", "next field"),
		ui.RenderHelpItem("enter", "save"),
		ui.RenderHelpItem("esc", "cancel"),
	}, "  "))

	return ui.DialogStyle.Width(f.Width).Render(b.String())
}
