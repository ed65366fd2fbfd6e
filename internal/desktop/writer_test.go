package desktop

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	tmp := t.TempDir()
	return NewWriter(filepath.Join(tmp, "applications"), filepath.Join(tmp, "Desktop"))
}

func TestWriter_WriteCreatesBothExecutable(t *testing.T) {
	w := newTestWriter(t)
	content := Render(Entry{Name: "Foo", Exec: "/x/Foo", Icon: "/i/Foo.png"})

	if err := w.Write("Foo", content); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	for _, path := range w.Paths("Foo") {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
		if info.Mode().Perm()&0100 == 0 {
			t.Errorf("%s should be executable, mode %v", path, info.Mode())
		}
		data, _ := os.ReadFile(path)
		if string(data) != content {
			t.Errorf("%s content mismatch", path)
		}
	}
}

func TestWriter_WriteFixesModeOfExistingFile(t *testing.T) {
	w := newTestWriter(t)
	path := w.Paths("Foo")[0]
	os.MkdirAll(filepath.Dir(path), 0755)
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatalf("seed error = %v", err)
	}

	if err := w.Write("Foo", "new"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0755 {
		t.Errorf("expected 0755, got %v", info.Mode().Perm())
	}
}

func TestWriter_RewriteRenamesBoth(t *testing.T) {
	w := newTestWriter(t)
	content := "[Desktop Entry]\nName=Foo\nExec=/x/Foo\nX-Keep=1\n"
	if err := w.Write("Foo", content); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	err := w.Rewrite("Foo", "Bar", "", func(s string) string {
		name := "Bar"
		return Update(s, Changes{Name: &name})
	})
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	menu, desk := w.Exists("Foo")
	if menu || desk {
		t.Error("old entries should be gone")
	}
	menu, desk = w.Exists("Bar")
	if !menu || !desk {
		t.Fatal("new entries should exist in both locations")
	}
	got, _ := w.Read("Bar")
	if !strings.Contains(got, "Name=Bar") || !strings.Contains(got, "X-Keep=1") {
		t.Errorf("unexpected rewritten content: %q", got)
	}
}

func TestWriter_RewriteRegeneratesMissingCopy(t *testing.T) {
	w := newTestWriter(t)
	menuPath := w.Paths("Foo")[0]
	os.MkdirAll(filepath.Dir(menuPath), 0755)
	os.WriteFile(menuPath, []byte("[Desktop Entry]\nName=Foo\nX-Menu=1\n"), 0755)

	fallback := Render(Entry{Name: "Foo", Exec: "/x/Foo", Icon: "i"})
	err := w.Rewrite("Foo", "Foo", fallback, func(s string) string { return s })
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	desktopCopy, err := os.ReadFile(w.Paths("Foo")[1])
	if err != nil {
		t.Fatalf("desktop copy should have been regenerated: %v", err)
	}
	if string(desktopCopy) != fallback {
		t.Errorf("expected fallback content, got %q", desktopCopy)
	}
	menuCopy, _ := os.ReadFile(menuPath)
	if !strings.Contains(string(menuCopy), "X-Menu=1") {
		t.Error("menu copy should keep its own content")
	}
}

func TestWriter_RemoveMissingIsNotError(t *testing.T) {
	w := newTestWriter(t)

	if err := w.Remove("Ghost"); err != nil {
		t.Fatalf("Remove() of missing entries error = %v", err)
	}

	w.Write("Foo", "x")
	if err := w.Remove("Foo"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	menu, desk := w.Exists("Foo")
	if menu || desk {
		t.Error("entries should be removed from both locations")
	}
}

func TestWriter_ReadPrefersMenu(t *testing.T) {
	w := newTestWriter(t)
	paths := w.Paths("Foo")
	os.MkdirAll(filepath.Dir(paths[1]), 0755)
	os.WriteFile(paths[1], []byte("desktop"), 0755)

	got, ok := w.Read("Foo")
	if !ok || got != "desktop" {
		t.Errorf("expected desktop copy when menu missing, got %q %v", got, ok)
	}

	os.MkdirAll(filepath.Dir(paths[0]), 0755)
	os.WriteFile(paths[0], []byte("menu"), 0755)
	if got, _ := w.Read("Foo"); got != "menu" {
		t.Errorf("expected menu copy, got %q", got)
	}

	if _, ok := w.Read("Missing"); ok {
		t.Error("Read of missing entry should report false")
	}
}
