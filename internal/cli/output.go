package cli

import (
	"fmt"
	"io"
	"strings"

	"appimage-installer/internal/desktop"

	"github.com/fatih/color"
)

var (
	// Color functions
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Faint  = color.New(color.Faint).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// Printer writes decorated status lines
type Printer struct {
	w io.Writer
}

// NewPrinter returns a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Section(title string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, Bold(Cyan("=== "+title+" ===")))
	fmt.Fprintln(p.w)
}

func (p *Printer) Info(message string) {
	fmt.Fprintln(p.w, Blue("ℹ ")+message)
}

func (p *Printer) Success(message string) {
	fmt.Fprintln(p.w, Green("✓ ")+message)
}

func (p *Printer) Warning(message string) {
	fmt.Fprintln(p.w, Yellow("⚠ ")+message)
}

func (p *Printer) Error(message string) {
	fmt.Fprintln(p.w, Red("✗ ")+message)
}

// Table prints rows under headers with box-drawing separators
func (p *Printer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len([]rune(header))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	line := func(cells []string) {
		var sb strings.Builder
		sb.WriteString("│ ")
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(cell + strings.Repeat(" ", widths[i]-len([]rune(cell))) + " │ ")
		}
		fmt.Fprintln(p.w, strings.TrimRight(sb.String(), " "))
	}

	line(headers)
	var sep strings.Builder
	sep.WriteString("├─")
	for i, width := range widths {
		sep.WriteString(strings.Repeat("─", width))
		if i < len(widths)-1 {
			sep.WriteString("─┼─")
		}
	}
	sep.WriteString("─┤")
	fmt.Fprintln(p.w, sep.String())
	for _, row := range rows {
		line(row)
	}
}

// Diff prints an entry diff with added lines green and removed lines red
func (p *Printer) Diff(d *desktop.EntryDiff) {
	for _, line := range d.Lines {
		switch line.Type {
		case desktop.DiffInsert:
			fmt.Fprintln(p.w, Green("+"+line.Content))
		case desktop.DiffDelete:
			fmt.Fprintln(p.w, Red("-"+line.Content))
		default:
			fmt.Fprintln(p.w, Faint(" "+line.Content))
		}
	}
}
