package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"appimage-installer/internal/icons"
	"appimage-installer/internal/logging"
	"appimage-installer/internal/models"

	"github.com/manifoldco/promptui"
)

// defaultIconLabel is the last choice of the icon picker
const defaultIconLabel = "Use the default icon"

// Prompter asks questions on the terminal with promptui
type Prompter struct {
	out *Printer

	// confirm and choose are swapped out in tests
	confirm func(label string) (bool, error)
	choose  func(label string, items []string) (int, error)
}

// NewPrompter creates a prompter printing progress to w
func NewPrompter(w io.Writer) *Prompter {
	return &Prompter{
		out:     NewPrinter(w),
		confirm: ConfirmAction,
		choose:  SelectItem,
	}
}

// ConfirmOverwrite implements installer.Prompter
func (p *Prompter) ConfirmOverwrite(name string) bool {
	return p.ask(fmt.Sprintf("%s is already installed. Overwrite it?", name))
}

// ConfirmRemove implements installer.Prompter
func (p *Prompter) ConfirmRemove(name string) bool {
	return p.ask(fmt.Sprintf("Remove %s?", name))
}

func (p *Prompter) ask(label string) bool {
	ok, err := p.confirm(label)
	if err != nil {
		logging.Logger.Debug("confirmation aborted", "label", label, "error", err)
		return false
	}
	return ok
}

// Warn implements installer.Prompter
func (p *Prompter) Warn(msg string) {
	p.out.Warning(msg)
}

// ChooseIcon implements installer.Prompter. Candidates are listed as they
// arrive; the picker opens once every provider has finished.
func (p *Prompter) ChooseIcon(ctx context.Context, name string, session *icons.Session) (string, error) {
	p.out.Info(fmt.Sprintf("Searching icons for %s...", Bold(name)))

	// the picker keeps the numbering printed while streaming
	var candidates []models.IconCandidate
wait:
	for {
		select {
		case ev, ok := <-session.Events():
			if !ok || ev.Kind == icons.EventDone {
				break wait
			}
			candidates = append(candidates, ev.Candidate)
			fmt.Fprintf(p.out.w, "  %s %s\n", Cyan(fmt.Sprintf("[%d]", len(candidates))), ev.Candidate.Label())
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if len(candidates) == 0 {
		p.out.Warning("No icons found online, using the default icon")
		return "", nil
	}

	items := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		items = append(items, c.Label())
	}
	items = append(items, defaultIconLabel)

	idx, err := p.choose("Icon for "+name, items)
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", nil
		}
		return "", err
	}
	if idx < 0 || idx >= len(candidates) {
		return "", nil
	}
	return candidates[idx].Path, nil
}

// ConfirmAction asks a y/N question
func ConfirmAction(message string) (bool, error) {
	prompt := promptui.Prompt{
		Label: message + " (y/N)",
		Validate: func(input string) error {
			if _, ok := parseYesNo(input); ok {
				return nil
			}
			return fmt.Errorf("please enter y/yes or n/no")
		},
	}

	result, err := prompt.Run()
	if err != nil {
		return false, err
	}
	yes, _ := parseYesNo(result)
	return yes, nil
}

// parseYesNo reads a y/N answer; empty means no
func parseYesNo(input string) (yes bool, valid bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, true
	case "", "n", "no":
		return false, true
	default:
		return false, false
	}
}

// SelectItem shows a single-choice list and returns the chosen index
func SelectItem(label string, items []string) (int, error) {
	sel := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}
	idx, _, err := sel.Run()
	return idx, err
}
