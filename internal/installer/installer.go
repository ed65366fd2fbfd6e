// Package installer installs, edits and removes bundles, keeping the managed
// copy, icon, desktop entries and registry consistent.
package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"appimage-installer/internal/apperr"
	"appimage-installer/internal/desktop"
	"appimage-installer/internal/history"
	"appimage-installer/internal/icons"
	"appimage-installer/internal/logging"
	"appimage-installer/internal/models"
	"appimage-installer/internal/registry"

	"github.com/jonboulle/clockwork"
)

// Prompter asks the user for decisions during a lifecycle operation
type Prompter interface {
	ConfirmOverwrite(name string) bool
	ConfirmRemove(name string) bool
	ChooseIcon(ctx context.Context, name string, session *icons.Session) (string, error)
	Warn(msg string)
}

// Op names a lifecycle operation
type Op string

const (
	OpInstall Op = "install"
	OpEdit    Op = "edit"
	OpRemove  Op = "remove"
)

// Status is the outcome of an operation
type Status int

const (
	StatusSucceeded Status = iota
	StatusCancelled        // user declined a confirmation
	StatusRejected         // invalid input, nothing changed
	StatusFailed           // a step failed; completed steps are kept
)

// String returns the display name of the status
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusCancelled:
		return "cancelled"
	case StatusRejected:
		return "rejected"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result reports one operation. Warnings are recoverable problems that did
// not stop it.
type Result struct {
	Op       Op
	Name     string
	Status   Status
	Warnings []error
	Err      error
}

// OK reports whether the operation succeeded
func (r Result) OK() bool {
	return r.Status == StatusSucceeded
}

// Message returns a one-line summary for status bars
func (r Result) Message() string {
	switch r.Status {
	case StatusSucceeded:
		msg := fmt.Sprintf("%s %s: done", r.Op, r.Name)
		if len(r.Warnings) > 0 {
			msg += fmt.Sprintf(" (%d warning(s))", len(r.Warnings))
		}
		return msg
	case StatusCancelled:
		return fmt.Sprintf("%s %s: cancelled", r.Op, r.Name)
	default:
		return fmt.Sprintf("%s %s: %s: %v", r.Op, r.Name, r.Status, r.Err)
	}
}

func (r *Result) warn(err error) {
	if err != nil {
		r.Warnings = append(r.Warnings, err)
	}
}

// Options configures an Installer
type Options struct {
	BundleDir string
	IconDir   string
	Store     *registry.Store
	Writer    *desktop.Writer
	Resolver  *icons.Resolver
	Prompter  Prompter
	Clock     clockwork.Clock
	// History is optional
	History *history.Recorder
}

// Installer runs lifecycle operations against one registry
type Installer struct {
	bundleDir string
	iconDir   string
	store     *registry.Store
	reg       *registry.Registry
	writer    *desktop.Writer
	resolver  *icons.Resolver
	prompter  Prompter
	clock     clockwork.Clock
	history   *history.Recorder
}

// New creates an installer and loads the registry from opts.Store
func New(opts Options) *Installer {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Resolver == nil {
		opts.Resolver = &icons.Resolver{IconDir: opts.IconDir}
	}
	if opts.Prompter == nil {
		opts.Prompter = AutoPrompter{}
	}

	return &Installer{
		bundleDir: opts.BundleDir,
		iconDir:   opts.IconDir,
		store:     opts.Store,
		reg:       opts.Store.Load(),
		writer:    opts.Writer,
		resolver:  opts.Resolver,
		prompter:  opts.Prompter,
		clock:     opts.Clock,
		history:   opts.History,
	}
}

// SetPrompter replaces the prompter, e.g. once the TUI is running
func (i *Installer) SetPrompter(p Prompter) {
	i.prompter = p
}

// Registry returns the live registry
func (i *Installer) Registry() *registry.Registry {
	return i.reg
}

// List returns every installed app ordered by name
func (i *Installer) List() []models.AppRecord {
	return i.reg.Records()
}

// Get returns the record of name
func (i *Installer) Get(name string) (models.AppRecord, bool) {
	return i.reg.Get(name)
}

// Entry returns the current desktop entry text of name, or the entry that
// would be generated for it when none exists on disk.
func (i *Installer) Entry(name string) (string, bool) {
	if content, ok := i.writer.Read(name); ok {
		return content, true
	}
	rec, ok := i.reg.Get(name)
	if !ok {
		return "", false
	}
	return i.render(name, rec), true
}

// History returns up to n recent registry changes, or nil when history is off
func (i *Installer) History(n int) ([]history.Entry, error) {
	if i.history == nil {
		return nil, nil
	}
	return i.history.Log(n)
}

func (i *Installer) render(name string, rec models.AppRecord) string {
	return desktop.Render(desktop.Entry{
		Name:    name,
		Exec:    rec.Path,
		Icon:    rec.Icon,
		Comment: rec.Comment,
	})
}

func (i *Installer) iconPath(name string) string {
	return i.resolver.IconPath(name)
}

// ownsIcon reports whether path is an icon this installer manages
func (i *Installer) ownsIcon(path string) bool {
	return path != "" && isWithin(i.iconDir, path)
}

// persist saves the registry and records history. Failures are warnings.
func (i *Installer) persist(message string) []error {
	var warnings []error
	if err := i.store.Save(i.reg); err != nil {
		warnings = append(warnings, err)
		return warnings
	}

	if i.history != nil {
		snapshot, err := json.MarshalIndent(i.reg, "", "    ")
		if err == nil {
			err = i.history.Record(message, snapshot)
		}
		if err != nil {
			logging.Logger.Warn("failed to record history", "message", message, "error", err)
			warnings = append(warnings, apperr.Persistence("record history", err))
		}
	}
	return warnings
}

// removeFile deletes path. A missing file is logged and ignored.
func removeFile(path, what string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err == nil {
		logging.Logger.Debug("removed "+what, "path", path)
		return nil
	}
	if os.IsNotExist(err) {
		logging.Logger.Info(what+" already gone", "error", apperr.NotFound(path, err))
		return nil
	}
	return fmt.Errorf("remove %s: %w", what, err)
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

// AutoPrompter answers every question without asking: confirmations are
// accepted when Yes is set and the first icon candidate is taken.
type AutoPrompter struct {
	Yes bool
}

// ConfirmOverwrite implements Prompter
func (a AutoPrompter) ConfirmOverwrite(string) bool { return a.Yes }

// ConfirmRemove implements Prompter
func (a AutoPrompter) ConfirmRemove(string) bool { return a.Yes }

// ChooseIcon implements Prompter
func (a AutoPrompter) ChooseIcon(ctx context.Context, name string, session *icons.Session) (string, error) {
	return icons.FirstCandidate(ctx, name, session)
}

// Warn implements Prompter
func (a AutoPrompter) Warn(msg string) {
	logging.Logger.Warn(msg)
}
