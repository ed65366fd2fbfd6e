package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"appimage-installer/internal/desktop"
	"appimage-installer/internal/icons"
	"appimage-installer/internal/installer"
	"appimage-installer/internal/registry"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	svc  *services
	src  string
	sent chan tea.Msg
}

func newTestApp(t *testing.T, searcher *icons.Searcher) *testApp {
	t.Helper()
	root := t.TempDir()
	iconDir := filepath.Join(root, "appimages", "icons")
	writer := desktop.NewWriter(filepath.Join(root, "applications"), filepath.Join(root, "Desktop"))
	src := filepath.Join(root, "downloads")
	for _, dir := range []string{iconDir, src, writer.MenuDir, writer.DesktopDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	resolver := &icons.Resolver{IconDir: iconDir, Searcher: searcher}
	sent := make(chan tea.Msg, 16)
	inst := installer.New(installer.Options{
		BundleDir: filepath.Join(root, "appimages"),
		IconDir:   iconDir,
		Store:     registry.NewStore(filepath.Join(root, "installed_apps.json")),
		Writer:    writer,
		Resolver:  resolver,
		Prompter:  &tuiPrompter{send: func(msg tea.Msg) { sent <- msg }},
	})

	return &testApp{
		svc:  &services{inst: inst, writer: writer, resolver: resolver},
		src:  src,
		sent: sent,
	}
}

func (a *testApp) bundle(t *testing.T, file string) string {
	t.Helper()
	path := filepath.Join(a.src, file)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hello\n"), 0755))
	return path
}

func (a *testApp) install(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		res := a.svc.inst.Install(context.Background(), a.bundle(t, name+".AppImage"), installer.InstallOptions{SkipIcon: true})
		require.True(t, res.OK(), res.Message())
	}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

// runAsync runs an operation command the way the program does, off the
// update loop
func runAsync(cmd tea.Cmd) <-chan tea.Msg {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	return done
}

func receive(t *testing.T, ch <-chan tea.Msg) tea.Msg {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a message")
		return nil
	}
}

func TestInstallFromPathDialog(t *testing.T) {
	app := newTestApp(t, nil)
	m := NewModel(app.svc)
	path := app.bundle(t, "Foo.AppImage")

	press(m, "i")
	require.Equal(t, ScreenInstall, m.screen)

	cmd := press(m, path, "enter")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Equal(t, ScreenMain, m.screen)

	m.Update(cmd())
	assert.False(t, m.busy)
	assert.Equal(t, "success", m.statusType)
	assert.Equal(t, "install Foo: done", m.status)

	current, ok := m.appList.Current()
	require.True(t, ok)
	assert.Equal(t, "Foo", current.Name)
	assert.Equal(t, "Foo", m.preview.App.Name)
	assert.True(t, m.preview.MenuPresent)
	assert.True(t, m.preview.DesktopPresent)
}

func TestInstallDialogEscape(t *testing.T) {
	m := NewModel(newTestApp(t, nil).svc)

	press(m, "i", "esc")
	assert.Equal(t, ScreenMain, m.screen)
	assert.False(t, m.busy)

	press(m, "i")
	cmd := press(m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, "warning", m.statusType)
}

func TestRemoveAsksForConfirmation(t *testing.T) {
	app := newTestApp(t, nil)
	app.install(t, "Foo")
	m := NewModel(app.svc)

	done := runAsync(press(m, "x"))
	m.Update(receive(t, app.sent))
	require.Equal(t, ScreenConfirm, m.screen)
	assert.Contains(t, m.View(), "Remove Foo")

	press(m, "y")
	assert.Equal(t, ScreenMain, m.screen)

	m.Update(receive(t, done))
	assert.Equal(t, "success", m.statusType)
	assert.Empty(t, m.appList.Apps)
	assert.Empty(t, m.preview.App.Name)
}

func TestRemoveDeclined(t *testing.T) {
	app := newTestApp(t, nil)
	app.install(t, "Foo")
	m := NewModel(app.svc)

	done := runAsync(press(m, "x"))
	m.Update(receive(t, app.sent))
	press(m, "n")

	m.Update(receive(t, done))
	assert.Equal(t, "info", m.statusType)
	assert.Equal(t, "remove Foo: cancelled", m.status)
	assert.Len(t, m.appList.Apps, 1)
}

func TestEditRenames(t *testing.T) {
	app := newTestApp(t, nil)
	app.install(t, "Foo")
	m := NewModel(app.svc)

	press(m, "e")
	require.Equal(t, ScreenEdit, m.screen)

	cmd := press(m, "backspace", "backspace", "backspace", "Bar", "enter")
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Equal(t, "edit Bar: done", m.status)
	current, ok := m.appList.Current()
	require.True(t, ok)
	assert.Equal(t, "Bar", current.Name)
	_, ok = app.svc.writer.Read("Bar")
	assert.True(t, ok)
}

func TestEditNothingChanged(t *testing.T) {
	app := newTestApp(t, nil)
	app.install(t, "Foo")
	m := NewModel(app.svc)

	press(m, "e")
	cmd := press(m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, ScreenEdit, m.screen)
	assert.Equal(t, "Nothing to change", m.status)

	press(m, "esc")
	assert.Equal(t, ScreenMain, m.screen)
}

func TestBusyRejectsOperations(t *testing.T) {
	app := newTestApp(t, nil)
	app.install(t, "Foo")
	m := NewModel(app.svc)

	m.startOp("Working", func(context.Context) installer.Result { return installer.Result{} })
	assert.Nil(t, press(m, "x"))
	assert.Nil(t, press(m, "i"))
	assert.Equal(t, ScreenMain, m.screen)
	assert.Equal(t, "Another operation is running", m.status)

	press(m, "q")
	assert.Equal(t, "warning", m.statusType)
}

func TestFilter(t *testing.T) {
	app := newTestApp(t, nil)
	app.install(t, "Foo", "Bar", "Baz")
	m := NewModel(app.svc)

	press(m, "/", "ba")
	assert.True(t, m.filtering)
	assert.Len(t, m.appList.Visible(), 2)

	press(m, "enter")
	assert.False(t, m.filtering)
	assert.Equal(t, "ba", m.appList.Filter())

	press(m, "esc")
	assert.Len(t, m.appList.Visible(), 3)
}

func TestHelpAndHistoryScreens(t *testing.T) {
	m := NewModel(newTestApp(t, nil).svc)

	press(m, "?")
	assert.Equal(t, ScreenHelp, m.screen)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	press(m, "esc")
	assert.Equal(t, ScreenMain, m.screen)

	cmd := press(m, "H")
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, ScreenHistory, m.screen)
	assert.Contains(t, m.View(), "No history recorded")
}

func TestIconPickerChoosesCandidate(t *testing.T) {
	var img bytes.Buffer
	rgba := image.NewRGBA(image.Rect(0, 0, 8, 8))
	rgba.Set(1, 1, color.White)
	require.NoError(t, png.Encode(&img, rgba))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img.Bytes())
	}))
	t.Cleanup(srv.Close)

	searcher := icons.NewSearcher([]icons.Provider{staticProvider{srv.URL + "/foo.png"}}, 5*time.Second)
	searcher.TempDir = t.TempDir()
	app := newTestApp(t, searcher)
	m := NewModel(app.svc)

	press(m, "i")
	done := runAsync(press(m, app.bundle(t, "Foo.AppImage"), "enter"))

	msg := receive(t, app.sent)
	req, ok := msg.(iconRequestMsg)
	require.True(t, ok, "got %T", msg)
	m.Update(req)
	require.Equal(t, ScreenIconPicker, m.screen)

	for m.picker.Searching() {
		m.Update(waitForIcon(req.session)())
	}
	require.Len(t, m.picker.Candidates, 1)

	press(m, "enter")
	assert.Equal(t, ScreenMain, m.screen)
	assert.Nil(t, m.session)

	m.Update(receive(t, done))
	assert.Equal(t, "install Foo: done", m.status)
	data, err := os.ReadFile(app.svc.resolver.IconPath("Foo"))
	require.NoError(t, err)
	assert.NotEqual(t, icons.DefaultIcon(), data)
}

func TestResolverStateShownWhileBusy(t *testing.T) {
	m := NewModel(newTestApp(t, nil).svc)
	m.startOp("Installing Foo", func(context.Context) installer.Result { return installer.Result{} })

	m.Update(resolverStateMsg(icons.StateSearching))
	assert.Equal(t, "Icon: searching", m.busyLabel)

	m.Update(warnMsg("no providers answered"))
	assert.Equal(t, "warning", m.statusType)
}

func TestLooksLikeBundle(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Foo.AppImage")
	require.NoError(t, os.WriteFile(file, nil, 0755))

	assert.True(t, looksLikeBundle(file))
	assert.False(t, looksLikeBundle(dir))
	assert.False(t, looksLikeBundle(filepath.Join(dir, "missing")))
	assert.False(t, looksLikeBundle("--debug"))
}

type staticProvider struct {
	url string
}

func (p staticProvider) Name() string { return "static" }

func (p staticProvider) Search(context.Context, string) ([]string, error) {
	return []string{p.url}, nil
}
