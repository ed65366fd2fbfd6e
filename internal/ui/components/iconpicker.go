package components

import (
	"fmt"
	"strings"

	"appimage-installer/internal/icons"
	"appimage-installer/internal/models"
	"appimage-installer/internal/ui"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// IconPicker lists icon candidates while a search is still running. The last
// row is always "use the default icon".
type IconPicker struct {
	AppName    string
	Candidates []models.IconCandidate
	Cursor     int
	Width      int
	Height     int
	Visible    bool

	searching bool
	state     icons.State
	spinner   spinner.Model
}

// NewIconPicker creates a hidden picker
func NewIconPicker() *IconPicker {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.ProgressStyle

	return &IconPicker{
		Width:   64,
		Height:  18,
		spinner: s,
	}
}

// Show opens the picker for a new search
func (d *IconPicker) Show(appName string) tea.Cmd {
	d.AppName = appName
	d.Candidates = nil
	d.Cursor = 0
	d.Visible = true
	d.searching = true
	d.state = icons.StateSearching
	return d.spinner.Tick
}

// Hide hides the picker
func (d *IconPicker) Hide() {
	d.Visible = false
	d.searching = false
}

// IsVisible returns whether the picker is visible
func (d *IconPicker) IsVisible() bool {
	return d.Visible
}

// Searching reports whether more candidates may arrive
func (d *IconPicker) Searching() bool {
	return d.searching
}

// SetState records the resolver state shown next to the spinner
func (d *IconPicker) SetState(s icons.State) {
	d.state = s
}

// Add appends a candidate as it arrives
func (d *IconPicker) Add(c models.IconCandidate) {
	d.Candidates = append(d.Candidates, c)
}

// Finish marks the search complete
func (d *IconPicker) Finish() {
	d.searching = false
	d.state = icons.StateDone
}

// Update advances the spinner while searching
func (d *IconPicker) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok || !d.searching {
		return nil
	}
	var cmd tea.Cmd
	d.spinner, cmd = d.spinner.Update(msg)
	return cmd
}

func (d *IconPicker) rows() int {
	return len(d.Candidates) + 1
}

// MoveUp moves cursor up
func (d *IconPicker) MoveUp() {
	if d.Cursor > 0 {
		d.Cursor--
	}
}

// MoveDown moves cursor down
func (d *IconPicker) MoveDown() {
	if d.Cursor < d.rows()-1 {
		d.Cursor++
	}
}

// Selected returns the path of the highlighted candidate, or "" for the
// default icon row.
func (d *IconPicker) Selected() string {
	if d.Cursor < len(d.Candidates) {
		return d.Candidates[d.Cursor].Path
	}
	return ""
}

// View renders the picker
func (d *IconPicker) View() string {
	if !d.Visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(ui.PanelTitleStyle.Render("Choose an icon for " + d.AppName))
	b.WriteString("\n")
	b.WriteString(ui.DividerStyle.Render(strings.Repeat("─", d.Width-4)))
	b.WriteString("\n\n")

	if d.searching {
		b.WriteString(d.spinner.View() + " " + ui.MutedStyle.Render(fmt.Sprintf("%s... %d found", d.state, len(d.Candidates))))
	} else {
		b.WriteString(ui.MutedStyle.Render(fmt.Sprintf("Search finished, %d found", len(d.Candidates))))
	}
	b.WriteString("\n\n")

	visibleHeight := max(1, d.Height-9)
	startIdx := 0
	if d.Cursor >= visibleHeight {
		startIdx = d.Cursor - visibleHeight + 1
	}
	endIdx := min(startIdx+visibleHeight, d.rows())

	for i := startIdx; i < endIdx; i++ {
		label := "Use the default icon"
		if i < len(d.Candidates) {
			label = truncate(d.Candidates[i].Label(), d.Width-12)
		}
		prefix := "  "
		if i == d.Cursor {
			prefix = "> "
		}
		line := fmt.Sprintf("%s[%d] %s", prefix, i+1, label)
		if i == d.Cursor {
			b.WriteString(ui.SelectedItemStyle.Width(d.Width - 6).Render(line))
		} else {
			b.WriteString(ui.ItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(ui.DividerStyle.Render(strings.Repeat("─", d.Width-4)))
	b.WriteString("\n")
	b.WriteString(strings.Join([]string{
		ui.RenderHelpItem("↑/↓", "navigate"),
		ui.RenderHelpItem("enter", "choose"),
		ui.RenderHelpItem("esc", "default icon"),
	}, "  "))

	return ui.DialogStyle.Width(d.Width).Render(b.String())
}
