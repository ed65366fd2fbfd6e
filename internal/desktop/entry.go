// Package desktop renders, parses and edits desktop entry files and keeps the
// menu and desktop-shortcut copies of each entry in sync.
package desktop

import (
	"strings"
)

// Header is the group header every generated entry starts with.
const Header = "[Desktop Entry]"

// Entry holds the values used to render a new desktop entry
type Entry struct {
	Name      string
	Exec      string
	Icon      string
	Comment   string
	ExtraArgs []string
}

// Render produces the text of a desktop entry.
func Render(e Entry) string {
	var b strings.Builder

	b.WriteString(Header + "\n")
	b.WriteString("Name=" + e.Name + "\n")

	exec := quoteExec(e.Exec)
	if len(e.ExtraArgs) > 0 {
		exec += " " + strings.Join(e.ExtraArgs, " ")
	}
	b.WriteString("Exec=" + exec + "\n")
	b.WriteString("Icon=" + e.Icon + "\n")
	b.WriteString("Type=Application\n")
	if e.Comment != "" {
		b.WriteString("Comment=" + e.Comment + "\n")
	}
	b.WriteString("Categories=Utility;\n")
	b.WriteString("Terminal=false\n")

	return b.String()
}

// quoteExec quotes a path containing spaces so the launcher reads it as one
// argument.
func quoteExec(path string) string {
	if strings.ContainsAny(path, " \t") {
		return `"` + strings.ReplaceAll(path, `"`, `\"`) + `"`
	}
	return path
}

// Parse returns the keys of the [Desktop Entry] group. Comments and other
// groups are ignored; the first occurrence of a key wins.
func Parse(content string) map[string]string {
	values := make(map[string]string)
	inEntry := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}

		if isGroupHeader(line) {
			inEntry = line == Header
			continue
		}
		if !inEntry {
			continue
		}

		if parts := strings.SplitN(line, "=", 2); len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			if _, seen := values[key]; !seen {
				values[key] = strings.TrimSpace(parts[1])
			}
		}
	}
	return values
}

// Changes describes an in-place edit. Nil fields are left untouched.
type Changes struct {
	Name    *string
	Comment *string
	Icon    *string
}

// Update applies changes to existing entry text. Only the values of the
// affected keys in the [Desktop Entry] group change; every other line is kept
// as is. A comment that does not exist yet is inserted directly after the
// header when it is non-empty.
func Update(content string, c Changes) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines)+1)

	inEntry := false
	headerIdx := -1
	seen := map[string]bool{}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if isGroupHeader(trimmed) {
			inEntry = trimmed == Header
			out = append(out, line)
			if inEntry && headerIdx < 0 {
				headerIdx = len(out) - 1
			}
			continue
		}

		if inEntry {
			key, _, ok := splitKey(trimmed)
			if ok && !seen[key] {
				if v := c.valueFor(key); v != nil {
					seen[key] = true
					out = append(out, key+"="+*v)
					continue
				}
			}
		}
		out = append(out, line)
	}

	if c.Comment != nil && *c.Comment != "" && !seen["Comment"] && headerIdx >= 0 {
		insert := "Comment=" + *c.Comment
		out = append(out[:headerIdx+1], append([]string{insert}, out[headerIdx+1:]...)...)
	}

	return strings.Join(out, "\n")
}

func (c Changes) valueFor(key string) *string {
	switch key {
	case "Name":
		return c.Name
	case "Comment":
		return c.Comment
	case "Icon":
		return c.Icon
	}
	return nil
}

func splitKey(line string) (string, string, bool) {
	if line == "" || line[0] == '#' {
		return "", "", false
	}
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), parts[1], true
}

func isGroupHeader(line string) bool {
	return len(line) > 2 && line[0] == '[' && line[len(line)-1] == ']'
}
