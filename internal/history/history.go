// Package history keeps an optional audit trail of registry changes in a
// local git repository.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/jonboulle/clockwork"
)

// snapshotFile is the registry copy tracked inside the history repository
const snapshotFile = "installed_apps.json"

const (
	authorName  = "appimage-installer"
	authorEmail = "appimage-installer@localhost"
)

// Recorder commits registry snapshots to a repository at Path
type Recorder struct {
	Path  string
	clock clockwork.Clock
	repo  *git.Repository
}

// Entry is one recorded change
type Entry struct {
	Hash    string
	Message string
	When    time.Time
}

// Open opens the history repository at path, initializing it when needed.
func Open(path string, clock clockwork.Clock) (*Recorder, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	repo, err := git.PlainOpen(path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
		repo, err = git.PlainInit(path, false)
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	return &Recorder{Path: path, clock: clock, repo: repo}, nil
}

// Record stores snapshot and commits it with message. Nothing is committed
// when the snapshot did not change.
func (r *Recorder) Record(message string, snapshot []byte) error {
	if err := os.WriteFile(filepath.Join(r.Path, snapshotFile), snapshot, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if _, err := worktree.Add(snapshotFile); err != nil {
		return fmt.Errorf("stage snapshot: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return err
	}
	if status.IsClean() {
		return nil
	}

	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  r.clock.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Log returns up to count recent entries, newest first. An empty history has
// no entries.
func (r *Recorder) Log(count int) ([]Entry, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, nil
	}

	commitIter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, err
	}
	defer commitIter.Close()

	var entries []Entry
	err = commitIter.ForEach(func(c *object.Commit) error {
		if len(entries) >= count {
			return storer.ErrStop
		}
		entries = append(entries, Entry{
			Hash:    c.Hash.String()[:7],
			Message: strings.Split(c.Message, "\n")[0],
			When:    c.Author.When,
		})
		return nil
	})
	return entries, err
}
