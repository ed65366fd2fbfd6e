package ui

import (
	"regexp"
	"strings"
	"testing"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansi.ReplaceAllString(s, "")
}

const sampleEntry = `[Desktop Entry]
Type=Application
Name=Foo
Exec="/home/u/.local/share/appimages/Foo.AppImage"
Comment=A foo

[Desktop Action New]
Name=New Window
`

func TestHighlight_KeepsLines(t *testing.T) {
	h := NewHighlighter()
	lines := h.Highlight(sampleEntry)

	want := strings.Split(strings.TrimSuffix(sampleEntry, "\n"), "\n")
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if got := stripANSI(lines[i]); got != want[i] {
			t.Errorf("line %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestHighlight_Empty(t *testing.T) {
	h := NewHighlighter()
	if lines := h.Highlight(""); len(lines) != 0 {
		t.Errorf("Highlight(\"\") = %v, want none", lines)
	}
}

func TestHighlightLine(t *testing.T) {
	h := NewHighlighter()
	if got := stripANSI(h.HighlightLine("Name=Foo")); got != "Name=Foo" {
		t.Errorf("HighlightLine = %q", got)
	}
	if got := h.HighlightLine(""); got != "" {
		t.Errorf("HighlightLine(\"\") = %q", got)
	}
}
