package main

import (
	"fmt"
	"strings"

	"appimage-installer/internal/ui"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.screen {
	case ScreenInstall:
		b.WriteString(m.center(m.renderInstallDialog()))
	case ScreenEdit:
		b.WriteString(m.center(m.editForm.View()))
	case ScreenConfirm:
		b.WriteString(m.center(m.confirm.View()))
	case ScreenIconPicker:
		b.WriteString(m.center(m.picker.View()))
	case ScreenHistory:
		b.WriteString(m.renderHistory())
	case ScreenHelp:
		b.WriteString(m.renderHelp())
	default:
		if m.filtering {
			b.WriteString(m.filterInput.View())
			b.WriteString("\n")
		}
		b.WriteString(ui.JoinHorizontal(m.appList.View(), m.preview.View()))
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return ui.AppStyle.Render(b.String())
}

// center places a dialog in the content area
func (m *Model) center(content string) string {
	return lipgloss.Place(m.width-2, max(1, m.height-6), lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHeader() string {
	title := ui.TitleStyle.Render("📦 AppImage Installer")
	ver := ui.VersionStyle.Render("v" + version)
	return ui.HeaderStyle.Render(title + "  " + ver)
}

func (m *Model) renderInstallDialog() string {
	var b strings.Builder
	b.WriteString(ui.PanelTitleStyle.Render("Install an AppImage"))
	b.WriteString("\n\n")
	b.WriteString(ui.MutedStyle.Render("Path of the file to install:"))
	b.WriteString("\n")
	b.WriteString(m.pathInput.View())
	b.WriteString("\n\n")
	b.WriteString(strings.Join([]string{
		ui.RenderHelpItem("enter", "install"),
		ui.RenderHelpItem("esc", "cancel"),
	}, "  "))
	return ui.DialogStyle.Width(min(m.width-4, 72)).Render(b.String())
}

func (m *Model) renderHistory() string {
	var b strings.Builder
	b.WriteString(ui.PanelTitleStyle.Render("Registry history"))
	b.WriteString("\n\n")

	if len(m.history) == 0 {
		b.WriteString(ui.MutedStyle.Render("No history recorded. Set track_history: true in the config to keep one."))
		b.WriteString("\n")
	}
	for _, e := range m.history {
		b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			ui.HelpKeyStyle.Render(e.Hash),
			ui.AppDateStyle.Render(e.When.Local().Format("2006-01-02 15:04")),
			e.Message,
		))
	}
	return ui.PanelStyle.Width(max(20, m.width-6)).Height(max(3, m.height-8)).Render(b.String())
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(ui.PanelTitleStyle.Render("⌨️  Keyboard Shortcuts"))
	b.WriteString("\n\n")

	full := m.help
	full.ShowAll = true
	b.WriteString(full.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(ui.MutedStyle.Render("Installing asks for an icon when none is bundled. The last row keeps the default icon."))
	return ui.PanelStyle.Width(max(20, m.width-6)).Render(b.String())
}

func (m *Model) renderStatusBar() string {
	var status string
	switch {
	case m.busy:
		status = m.spinner.View() + " " + ui.StatusTextStyle.Render(m.busyLabel)
	case m.status != "":
		status = ui.RenderNotification(m.statusType, m.status)
	default:
		status = ui.StatusTextStyle.Render("Ready")
	}

	stats := fmt.Sprintf("Apps: %d", len(m.appList.Apps))
	if f := m.appList.Filter(); f != "" {
		stats = fmt.Sprintf("Apps: %d/%d", len(m.appList.Visible()), len(m.appList.Apps))
	}

	return ui.StatusBarStyle.Render(status + "  •  " + stats)
}

func (m *Model) renderHelpBar() string {
	var items []string
	switch m.screen {
	case ScreenInstall:
		items = []string{ui.RenderHelpItem("enter", "install"), ui.RenderHelpItem("esc", "cancel")}
	case ScreenEdit:
		items = []string{
			ui.RenderHelpItem("tab", "next field"),
			ui.RenderHelpItem("enter", "save"),
			ui.RenderHelpItem("esc", "cancel"),
		}
	case ScreenConfirm:
		items = []string{ui.RenderHelpItem("y/n", "answer"), ui.RenderHelpItem("tab", "toggle")}
	case ScreenIconPicker:
		items = []string{ui.RenderHelpItem("enter", "choose"), ui.RenderHelpItem("esc", "default icon")}
	case ScreenHistory, ScreenHelp:
		items = []string{ui.RenderHelpItem("esc", "back")}
	default:
		if m.filtering {
			items = []string{ui.RenderHelpItem("enter", "keep filter"), ui.RenderHelpItem("esc", "clear")}
			break
		}
		return ui.HelpBarStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return ui.HelpBarStyle.Render(strings.Join(items, "  "))
}
