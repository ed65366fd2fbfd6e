package components

import (
	"strings"
	"testing"

	"appimage-installer/internal/icons"
	"appimage-installer/internal/models"
)

func TestIconPicker_StreamingCandidates(t *testing.T) {
	d := NewIconPicker()
	if cmd := d.Show("Foo"); cmd == nil {
		t.Error("Show should start the spinner")
	}
	if !d.IsVisible() || !d.Searching() {
		t.Fatal("picker should be visible and searching")
	}
	if d.Selected() != "" {
		t.Error("Only the default row exists before candidates arrive")
	}

	d.Add(models.IconCandidate{Source: "flathub", URL: "https://a/1.png", Path: "/tmp/1.png"})
	view := stripAnsi(d.View())
	if !strings.Contains(view, "1 found") {
		t.Errorf("view should count candidates: %q", view)
	}

	d.Add(models.IconCandidate{Source: "github", URL: "https://b/2.png", Path: "/tmp/2.png"})
	d.MoveDown()
	if got := d.Selected(); got != "/tmp/2.png" {
		t.Errorf("Selected = %q", got)
	}

	d.Finish()
	if d.Searching() {
		t.Error("Finish should stop the search")
	}
	if !strings.Contains(stripAnsi(d.View()), "Search finished, 2 found") {
		t.Error("view should show completion")
	}

	d.MoveDown()
	d.MoveDown()
	if d.Cursor != 2 || d.Selected() != "" {
		t.Errorf("last row should be the default icon, cursor=%d", d.Cursor)
	}
	d.MoveUp()
	d.MoveUp()
	d.MoveUp()
	if d.Cursor != 0 {
		t.Errorf("MoveUp should stop at 0, got %d", d.Cursor)
	}
}

func TestIconPicker_ShowResets(t *testing.T) {
	d := NewIconPicker()
	d.Show("Foo")
	d.Add(models.IconCandidate{Path: "/tmp/1.png"})
	d.MoveDown()
	d.SetState(icons.StateAggregating)

	d.Show("Bar")
	if len(d.Candidates) != 0 || d.Cursor != 0 || d.AppName != "Bar" {
		t.Error("Show should reset the picker")
	}
}

func TestIconPicker_Hidden(t *testing.T) {
	d := NewIconPicker()
	if d.View() != "" {
		t.Error("hidden picker renders nothing")
	}
	d.Show("Foo")
	d.Hide()
	if d.IsVisible() || d.Update(nil) != nil {
		t.Error("Hide should stop the picker")
	}
}
