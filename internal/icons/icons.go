// Package icons finds an icon for an installed bundle: it extracts one from
// the bundle itself, searches external providers, or falls back to a bundled
// default.
package icons

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"appimage-installer/internal/apperr"
	"appimage-installer/internal/logging"
)

// State is a step of icon resolution
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateSearching
	StateAggregating
	StateDone
)

// String returns the display name of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StateSearching:
		return "searching"
	case StateAggregating:
		return "aggregating"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Source tells where a resolved icon came from
type Source string

const (
	SourceExtracted Source = "extracted"
	SourceSearch    Source = "search"
	SourceDefault   Source = "default"
	SourceFile      Source = "file"
)

// Chooser lets the user pick one candidate of a running session. It returns
// the path of the chosen candidate, or "" when nothing was chosen.
type Chooser interface {
	ChooseIcon(ctx context.Context, name string, session *Session) (string, error)
}

// ChooserFunc adapts a function to Chooser
type ChooserFunc func(ctx context.Context, name string, session *Session) (string, error)

// ChooseIcon implements Chooser
func (f ChooserFunc) ChooseIcon(ctx context.Context, name string, session *Session) (string, error) {
	return f(ctx, name, session)
}

// FirstCandidate picks the first candidate to arrive, for non-interactive use.
var FirstCandidate = ChooserFunc(func(ctx context.Context, _ string, session *Session) (string, error) {
	for {
		select {
		case ev, ok := <-session.Events():
			if !ok || ev.Kind == EventDone {
				return "", nil
			}
			return ev.Candidate.Path, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
})

// Resolution is the outcome of Resolve
type Resolution struct {
	Path   string
	Source Source
	URL    string
}

// Resolver stores icons as <IconDir>/<name>.png
type Resolver struct {
	IconDir   string
	Extractor Extractor
	// Searcher is optional; without it resolution goes straight to the default
	Searcher *Searcher
	// Observer, if set, is told about every state change
	Observer func(State)
}

// IconPath returns where the icon of name is stored
func (r *Resolver) IconPath(name string) string {
	return filepath.Join(r.IconDir, name+".png")
}

func (r *Resolver) notify(s State) {
	if r.Observer != nil {
		r.Observer(s)
	}
}

// Resolve finds an icon for the bundle installed as name. It always leaves an
// icon at IconPath(name); the returned error is only ever a fatal search
// error, reported alongside the fallback result.
func (r *Resolver) Resolve(ctx context.Context, name, bundle string, chooser Chooser) (Resolution, error) {
	dst := r.IconPath(name)
	log := logging.Logger.With("app", name)

	r.notify(StateExtracting)
	if r.Extractor != nil {
		err := r.Extractor.Extract(ctx, bundle, dst)
		if err == nil {
			r.notify(StateDone)
			return Resolution{Path: dst, Source: SourceExtracted}, nil
		}
		log.Info("icon extraction failed, searching providers", "error", err)
	}

	var fatal error
	if r.Searcher != nil && chooser != nil {
		res, err := r.search(ctx, name, dst, chooser)
		if err == nil && res.Path != "" {
			r.notify(StateDone)
			return res, nil
		}
		if apperr.Is(err, apperr.KindFatal) {
			log.Error("icon search could not start", "error", err)
			fatal = err
		}
	}

	r.notify(StateDone)
	if err := WriteDefault(dst); err != nil {
		log.Error("failed to write default icon", "error", err)
		return Resolution{}, apperr.Fatal("cannot store icon", err)
	}
	return Resolution{Path: dst, Source: SourceDefault}, fatal
}

func (r *Resolver) search(ctx context.Context, name, dst string, chooser Chooser) (Resolution, error) {
	r.notify(StateSearching)
	session, err := r.Searcher.Search(ctx, name)
	if err != nil {
		return Resolution{}, err
	}
	defer session.Close()

	r.notify(StateAggregating)
	picked, err := chooser.ChooseIcon(ctx, name, session)
	if err != nil {
		logging.Logger.Warn("icon selection failed", "app", name, "error", err)
		return Resolution{}, nil
	}
	if picked == "" {
		return Resolution{}, nil
	}

	candidate, ok := session.Lookup(picked)
	if !ok {
		return Resolution{}, fmt.Errorf("unknown candidate %s", picked)
	}
	if err := writeIcon(dst, candidate.Data); err != nil {
		return Resolution{}, err
	}
	logging.Logger.Info("icon selected", "app", name, "source", candidate.Source, "url", candidate.URL)
	return Resolution{Path: dst, Source: SourceSearch, URL: candidate.URL}, nil
}

// Import stores the image at src as the icon of name
func (r *Resolver) Import(src, name string) (string, error) {
	if _, err := os.Stat(src); err != nil {
		return "", apperr.NotFound("icon file "+src+" does not exist", err)
	}
	dst := r.IconPath(name)
	if err := Normalize(src, dst); err != nil {
		return "", apperr.Validationf("cannot use %s as icon: %v", filepath.Base(src), err)
	}
	return dst, nil
}
