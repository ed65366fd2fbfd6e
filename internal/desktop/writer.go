package desktop

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// fileMode marks entries executable so desktops treat them as trusted launchers.
const fileMode = 0755

// Writer keeps the menu entry and the desktop shortcut of every app in sync.
type Writer struct {
	MenuDir    string
	DesktopDir string
}

// NewWriter creates a writer for the two entry locations
func NewWriter(menuDir, desktopDir string) *Writer {
	return &Writer{MenuDir: menuDir, DesktopDir: desktopDir}
}

// Dirs returns both entry locations, menu first
func (w *Writer) Dirs() []string {
	return []string{w.MenuDir, w.DesktopDir}
}

// Paths returns the entry file of name in every location
func (w *Writer) Paths(name string) []string {
	paths := make([]string, 0, 2)
	for _, dir := range w.Dirs() {
		paths = append(paths, filepath.Join(dir, name+".desktop"))
	}
	return paths
}

// Write writes content as the entry of name in both locations.
func (w *Writer) Write(name, content string) error {
	var errs []error
	for _, path := range w.Paths(name) {
		if err := writeEntry(path, content); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Read returns the first existing copy of the entry of name, menu first.
func (w *Writer) Read(name string) (string, bool) {
	for _, path := range w.Paths(name) {
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), true
		}
	}
	return "", false
}

// Exists reports whether the entry exists in each location (menu, desktop).
func (w *Writer) Exists(name string) (menu, desktop bool) {
	paths := w.Paths(name)
	return fileExists(paths[0]), fileExists(paths[1])
}

// Rewrite rewrites the entry of oldName as newName in both locations. The
// existing text of each copy is passed through edit; a copy that is missing is
// regenerated from fallback before editing. When the names differ the old
// files are removed after the new ones are written.
func (w *Writer) Rewrite(oldName, newName string, fallback string, edit func(string) string) error {
	oldPaths := w.Paths(oldName)
	newPaths := w.Paths(newName)

	var errs []error
	for i := range oldPaths {
		content := fallback
		if data, err := os.ReadFile(oldPaths[i]); err == nil {
			content = string(data)
		}

		if err := writeEntry(newPaths[i], edit(content)); err != nil {
			errs = append(errs, err)
			continue
		}

		if oldPaths[i] != newPaths[i] {
			if err := removeIfExists(oldPaths[i]); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Remove deletes the entry of name from both locations. Missing files are
// not errors.
func (w *Writer) Remove(name string) error {
	var errs []error
	for _, path := range w.Paths(name) {
		if err := removeIfExists(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeEntry(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), fileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, fileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
