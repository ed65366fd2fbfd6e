package desktop

import (
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffType represents the type of diff operation
type DiffType int

const (
	DiffEqual DiffType = iota
	DiffInsert
	DiffDelete
)

// DiffLine represents a single line in the diff
type DiffLine struct {
	Type    DiffType
	Content string
}

// EntryDiff is the line diff between two versions of an entry
type EntryDiff struct {
	Lines        []DiffLine
	LinesAdded   int
	LinesRemoved int
}

// Diff computes a line diff of two entry texts. Entries are short, so every
// line is kept instead of grouping into hunks.
func Diff(oldText, newText string) *EntryDiff {
	dmp := diffmatchpatch.New()

	chars1, chars2, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	result := &EntryDiff{}
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		lines := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")

		var typ DiffType
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			typ = DiffInsert
			result.LinesAdded += len(lines)
		case diffmatchpatch.DiffDelete:
			typ = DiffDelete
			result.LinesRemoved += len(lines)
		default:
			typ = DiffEqual
		}

		for _, line := range lines {
			result.Lines = append(result.Lines, DiffLine{Type: typ, Content: line})
		}
	}
	return result
}

// HasChanges returns true if there are any changes
func (d *EntryDiff) HasChanges() bool {
	return d.LinesAdded > 0 || d.LinesRemoved > 0
}

// Unified formats the diff with +/- prefixes
func (d *EntryDiff) Unified() string {
	var sb strings.Builder
	for _, line := range d.Lines {
		switch line.Type {
		case DiffEqual:
			sb.WriteString(" " + line.Content + "\n")
		case DiffInsert:
			sb.WriteString("+" + line.Content + "\n")
		case DiffDelete:
			sb.WriteString("-" + line.Content + "\n")
		}
	}
	return sb.String()
}

// Summary returns a brief summary of changes
func (d *EntryDiff) Summary() string {
	if !d.HasChanges() {
		return "No changes"
	}

	var parts []string
	if d.LinesAdded > 0 {
		parts = append(parts, "+"+strconv.Itoa(d.LinesAdded))
	}
	if d.LinesRemoved > 0 {
		parts = append(parts, "-"+strconv.Itoa(d.LinesRemoved))
	}
	return strings.Join(parts, " ")
}
