package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"appimage-installer/internal/config"
	"appimage-installer/internal/desktop"
	"appimage-installer/internal/history"
	"appimage-installer/internal/icons"
	"appimage-installer/internal/installer"
	"appimage-installer/internal/ui"
	"appimage-installer/internal/ui/components"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Screen represents the current screen
type Screen int

const (
	ScreenMain Screen = iota
	ScreenInstall
	ScreenEdit
	ScreenConfirm
	ScreenIconPicker
	ScreenHistory
	ScreenHelp
)

const historySize = 20

// Messages
type opDoneMsg struct {
	result installer.Result
}

type historyMsg struct {
	entries []history.Entry
	err     error
}

type iconEventMsg struct {
	session *icons.Session
	event   icons.Event
	ok      bool
}

// Model is the main application model
type Model struct {
	inst   *installer.Installer
	writer *desktop.Writer
	ctx    context.Context
	cancel context.CancelFunc

	appList  *components.AppList
	preview  *components.EntryPreview
	editForm *components.EditForm
	confirm  *components.ConfirmDialog
	picker   *components.IconPicker

	spinner     spinner.Model
	help        help.Model
	keys        ui.KeyMap
	pathInput   textinput.Model
	filterInput textinput.Model

	screen Screen
	// dialogs opened by a running operation return to this screen
	underScreen Screen
	filtering   bool
	busy        bool
	busyLabel   string
	status      string
	statusType  string
	history     []history.Entry
	width       int
	height      int

	confirmReply chan<- bool
	iconReply    chan<- string
	session      *icons.Session
}

// NewModel creates the model over the shared services
func NewModel(svc *services) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.ProgressStyle

	pathInput := textinput.New()
	pathInput.Placeholder = "~/Downloads/App.AppImage"
	pathInput.CharLimit = 1024
	pathInput.Width = 56

	filterInput := textinput.New()
	filterInput.Prompt = "/"
	filterInput.Placeholder = "filter"
	filterInput.CharLimit = 64

	m := &Model{
		inst:        svc.inst,
		writer:      svc.writer,
		ctx:         ctx,
		cancel:      cancel,
		appList:     components.NewAppList(svc.inst.List()),
		preview:     components.NewEntryPreview(),
		editForm:    components.NewEditForm(svc.inst.PreviewEdit),
		confirm:     components.NewConfirmDialog(),
		picker:      components.NewIconPicker(),
		spinner:     s,
		help:        help.New(),
		keys:        ui.DefaultKeyMap(),
		pathInput:   pathInput,
		filterInput: filterInput,
		screen:      ScreenMain,
		width:       100,
		height:      30,
	}
	m.updatePanelSizes()
	m.refreshPreview()
	return m
}

func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updatePanelSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		if m.screen == ScreenMain {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.picker.IsVisible() {
			cmds = append(cmds, m.picker.Update(msg))
		}

	case resolverStateMsg:
		state := icons.State(msg)
		m.picker.SetState(state)
		if m.busy && state != icons.StateIdle && state != icons.StateDone {
			m.busyLabel = fmt.Sprintf("Icon: %s", state)
		}

	case confirmRequestMsg:
		m.openDialog(ScreenConfirm)
		m.confirm.Show(msg.title, msg.message)
		m.confirmReply = msg.reply

	case iconRequestMsg:
		m.openDialog(ScreenIconPicker)
		m.session = msg.session
		m.iconReply = msg.reply
		cmds = append(cmds, m.picker.Show(msg.name), waitForIcon(msg.session))

	case iconEventMsg:
		if msg.session != m.session {
			break
		}
		if !msg.ok || msg.event.Kind == icons.EventDone {
			m.picker.Finish()
			break
		}
		m.picker.Add(msg.event.Candidate)
		cmds = append(cmds, waitForIcon(msg.session))

	case warnMsg:
		m.setStatus("warning", string(msg))

	case opDoneMsg:
		m.finishOp(msg.result)

	case historyMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus("error", msg.err.Error())
			break
		}
		m.history = msg.entries
		m.screen = ScreenHistory
	}

	return m, tea.Batch(cmds...)
}

// openDialog shows a dialog requested by the running operation
func (m *Model) openDialog(s Screen) {
	if m.screen != ScreenConfirm && m.screen != ScreenIconPicker {
		m.underScreen = m.screen
	}
	m.screen = s
}

func (m *Model) closeDialog() {
	m.screen = m.underScreen
	if m.screen == ScreenConfirm || m.screen == ScreenIconPicker {
		m.screen = ScreenMain
	}
}

func (m *Model) finishOp(res installer.Result) {
	m.busy = false
	m.busyLabel = ""

	switch res.Status {
	case installer.StatusSucceeded:
		if len(res.Warnings) > 0 {
			m.setStatus("warning", res.Message()+": "+res.Warnings[0].Error())
		} else {
			m.setStatus("success", res.Message())
		}
	case installer.StatusCancelled:
		m.setStatus("info", res.Message())
	default:
		m.setStatus("error", res.Message())
	}

	m.appList.SetApps(m.inst.List())
	if res.OK() && res.Op != installer.OpRemove {
		m.appList.Select(res.Name)
	}
	m.refreshPreview()
}

func (m *Model) setStatus(kind, message string) {
	m.statusType = kind
	m.status = message
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenConfirm:
		return m.handleConfirmKeys(msg)
	case ScreenIconPicker:
		return m.handlePickerKeys(msg)
	case ScreenInstall:
		return m.handleInstallKeys(msg)
	case ScreenEdit:
		return m.handleEditKeys(msg)
	case ScreenHistory, ScreenHelp:
		if key.Matches(msg, m.keys.Escape, m.keys.Quit, m.keys.Help, m.keys.Enter) {
			m.screen = ScreenMain
		}
		return m, nil
	}

	if m.filtering {
		return m.handleFilterKeys(msg)
	}
	return m.handleMainKeys(msg)
}

func (m *Model) handleMainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.busy {
			m.setStatus("warning", "Wait for the current operation to finish")
			return m, nil
		}
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.appList.MoveUp()
		m.refreshPreview()
	case key.Matches(msg, m.keys.Down):
		m.appList.MoveDown()
		m.refreshPreview()
	case key.Matches(msg, m.keys.PageUp):
		m.appList.PageUp()
		m.refreshPreview()
	case key.Matches(msg, m.keys.PageDown):
		m.appList.PageDown()
		m.refreshPreview()
	case key.Matches(msg, m.keys.Home):
		m.appList.GoToFirst()
		m.refreshPreview()
	case key.Matches(msg, m.keys.End):
		m.appList.GoToLast()
		m.refreshPreview()

	case key.Matches(msg, m.keys.Help):
		m.screen = ScreenHelp

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterInput.SetValue(m.appList.Filter())
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()

	case key.Matches(msg, m.keys.Escape):
		if m.appList.Filter() != "" {
			m.appList.SetFilter("")
			m.refreshPreview()
		}

	case key.Matches(msg, m.keys.Refresh):
		if !m.busy {
			m.appList.SetApps(m.inst.List())
			m.refreshPreview()
			m.setStatus("info", fmt.Sprintf("%d apps installed", len(m.appList.Apps)))
		}

	case key.Matches(msg, m.keys.Install):
		if m.rejectWhileBusy() {
			return m, nil
		}
		m.pathInput.SetValue("")
		m.screen = ScreenInstall
		return m, m.pathInput.Focus()

	case key.Matches(msg, m.keys.Edit):
		if m.rejectWhileBusy() {
			return m, nil
		}
		app, ok := m.appList.Current()
		if !ok {
			return m, nil
		}
		m.editForm.Width = min(m.width-4, 80)
		m.screen = ScreenEdit
		return m, m.editForm.Show(app)

	case key.Matches(msg, m.keys.Remove):
		if m.rejectWhileBusy() {
			return m, nil
		}
		app, ok := m.appList.Current()
		if !ok {
			return m, nil
		}
		return m, m.startOp("Removing "+app.Name, func(ctx context.Context) installer.Result {
			return m.inst.Remove(ctx, app.Name)
		})

	case key.Matches(msg, m.keys.History):
		if m.rejectWhileBusy() {
			return m, nil
		}
		m.busy = true
		m.busyLabel = "Reading history"
		return m, m.loadHistory()
	}

	return m, nil
}

func (m *Model) rejectWhileBusy() bool {
	if m.busy {
		m.setStatus("warning", "Another operation is running")
	}
	return m.busy
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.filtering = false
		m.filterInput.Blur()
		m.appList.SetFilter("")
		m.refreshPreview()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.appList.SetFilter(strings.TrimSpace(m.filterInput.Value()))
	m.refreshPreview()
	return m, cmd
}

func (m *Model) handleInstallKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.pathInput.Blur()
		m.screen = ScreenMain
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		path := config.ExpandHome(strings.TrimSpace(m.pathInput.Value()))
		if path == "" {
			m.setStatus("warning", "Enter the path of an AppImage")
			return m, nil
		}
		m.pathInput.Blur()
		m.screen = ScreenMain
		return m, m.startOp("Installing "+installer.AppName(path), func(ctx context.Context) installer.Result {
			return m.inst.Install(ctx, path, installer.InstallOptions{})
		})
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.editForm.Hide()
		m.screen = ScreenMain
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m, m.editForm.Next()
	case key.Matches(msg, m.keys.ShiftTab):
		return m, m.editForm.Prev()
	case key.Matches(msg, m.keys.Enter):
		if m.editForm.Err != nil {
			m.setStatus("error", m.editForm.Err.Error())
			return m, nil
		}
		if m.editForm.Empty() {
			m.setStatus("info", "Nothing to change")
			return m, nil
		}
		name := m.editForm.App.Name
		req := m.editForm.Request()
		m.editForm.Hide()
		m.screen = ScreenMain
		return m, m.startOp("Saving "+name, func(ctx context.Context) installer.Result {
			return m.inst.Edit(ctx, name, req)
		})
	}

	return m, m.editForm.Update(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.answerConfirm(true)
	case key.Matches(msg, m.keys.No), key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit):
		m.answerConfirm(false)
	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab),
		msg.String() == "left", msg.String() == "right", msg.String() == "h", msg.String() == "l":
		m.confirm.Toggle()
	case key.Matches(msg, m.keys.Enter):
		m.answerConfirm(m.confirm.Yes())
	}
	return m, nil
}

func (m *Model) answerConfirm(yes bool) {
	if m.confirmReply != nil {
		m.confirmReply <- yes
		m.confirmReply = nil
	}
	m.confirm.Hide()
	m.closeDialog()
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.picker.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.picker.MoveDown()
	case key.Matches(msg, m.keys.Enter):
		m.answerIcon(m.picker.Selected())
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit):
		m.answerIcon("")
	}
	return m, nil
}

func (m *Model) answerIcon(path string) {
	if m.iconReply != nil {
		m.iconReply <- path
		m.iconReply = nil
	}
	m.session = nil
	m.picker.Hide()
	m.closeDialog()
}

// startOp runs one lifecycle operation off the update loop
func (m *Model) startOp(label string, op func(ctx context.Context) installer.Result) tea.Cmd {
	m.busy = true
	m.busyLabel = label
	m.setStatus("", "")
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{result: op(ctx)}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.inst.History(historySize)
		return historyMsg{entries: entries, err: err}
	}
}

// waitForIcon delivers the next event of a search session
func waitForIcon(s *icons.Session) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-s.Events()
		return iconEventMsg{session: s, event: ev, ok: ok}
	}
}

func (m *Model) refreshPreview() {
	if m.busy {
		return
	}
	app, ok := m.appList.Current()
	if !ok {
		m.preview.Clear()
		return
	}

	content, _ := m.inst.Entry(app.Name)
	menu, desk := m.writer.Exists(app.Name)
	var size int64
	if info, err := os.Stat(app.Path); err == nil {
		size = info.Size()
	}
	m.preview.SetEntry(app, content, menu, desk, size)
}

func (m *Model) updatePanelSizes() {
	listWidth := max(28, m.width/3)
	panelHeight := max(6, m.height-8)

	m.appList.Width = listWidth
	m.appList.Height = panelHeight
	m.preview.SetSize(max(20, m.width-listWidth-6), panelHeight)
	m.picker.Width = min(m.width-4, 72)
	m.picker.Height = max(8, min(m.height-8, 20))
	m.confirm.Width = min(m.width-4, 56)
	m.help.Width = m.width
}
