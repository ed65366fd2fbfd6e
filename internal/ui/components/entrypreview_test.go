package components

import (
	"strings"
	"testing"
	"time"

	"appimage-installer/internal/models"
	"appimage-installer/internal/ui"
)

func TestEntryPreview_Empty(t *testing.T) {
	p := NewEntryPreview()
	if !strings.Contains(p.View(), "Select an app") {
		t.Error("Empty preview should ask for a selection")
	}
}

func TestEntryPreview_SetEntry(t *testing.T) {
	installed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewEntryPreview()
	p.Now = func() time.Time { return installed.Add(3 * 24 * time.Hour) }
	p.SetSize(70, 20)

	rec := models.AppRecord{Name: "Foo", Path: "/apps/Foo.AppImage", InstallDate: models.NewTimestamp(installed)}
	p.SetEntry(rec, "[Desktop Entry]\nName=Foo\nExec=/apps/Foo.AppImage\n", true, false, 2048)

	if p.TotalLines != 3 {
		t.Errorf("TotalLines = %d, want 3", p.TotalLines)
	}

	view := stripAnsi(p.View())
	for _, want := range []string{"Foo", "installed 3 days ago", "2.0 KB", "● menu", "○ desktop", "Name=Foo"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}

	if !strings.Contains(p.View(), ui.PathStyle.Render(rec.Path)) {
		t.Error("View should render the bundle path in the path style")
	}

	p.Clear()
	if !strings.Contains(p.View(), "Select an app") {
		t.Error("Clear should empty the preview")
	}
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}
	for _, tt := range tests {
		if got := formatTimeAgo(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("formatTimeAgo(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
	if got := formatTimeAgo(time.Time{}, now); got != "never" {
		t.Errorf("zero time = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 << 20, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
