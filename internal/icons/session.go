package icons

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"appimage-installer/internal/apperr"
	"appimage-installer/internal/logging"
	"appimage-installer/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxPayload bounds the size of one fetched image
const DefaultMaxPayload = 5 << 20

// EventKind tells candidate events from the completion event
type EventKind int

const (
	EventCandidate EventKind = iota
	EventDone
)

// Event is one item of a session's stream. The last event is always
// EventDone, carrying the number of candidates delivered.
type Event struct {
	Kind      EventKind
	Candidate models.IconCandidate
	Count     int
}

// Searcher starts icon search sessions against a fixed set of providers
type Searcher struct {
	Providers    []Provider
	Client       *http.Client
	FetchTimeout time.Duration
	MaxPayload   int64
	// TempDir is the parent of session directories; empty means os.TempDir
	TempDir string
}

// NewSearcher creates a searcher with the default client and limits
func NewSearcher(providers []Provider, fetchTimeout time.Duration) *Searcher {
	return &Searcher{
		Providers:    providers,
		Client:       &http.Client{},
		FetchTimeout: fetchTimeout,
		MaxPayload:   DefaultMaxPayload,
	}
}

// Session is one running search. Candidates arrive on Events in completion
// order; Close must be called when the caller is done with it.
type Session struct {
	Query string

	dir    string
	events chan Event
	cancel context.CancelFunc

	mu         sync.Mutex
	candidates []models.IconCandidate
	closeOnce  sync.Once
}

// Search starts a session for query. The only error is a session that cannot
// start; provider failures never surface here.
func (s *Searcher) Search(ctx context.Context, query string) (*Session, error) {
	if s.Client == nil {
		return nil, apperr.Fatal("cannot start icon search", errors.New("no HTTP client"))
	}

	dir, err := os.MkdirTemp(s.TempDir, "appimage-icons-*")
	if err != nil {
		return nil, apperr.Fatal("cannot start icon search", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	session := &Session{
		Query:  query,
		dir:    dir,
		events: make(chan Event),
		cancel: cancel,
	}

	go session.run(ctx, s, query)
	return session, nil
}

// Events returns the candidate stream. It is closed after the EventDone event.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Dir returns the directory holding the candidate files
func (s *Session) Dir() string {
	return s.dir
}

// Candidates returns the candidates delivered so far
func (s *Session) Candidates() []models.IconCandidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.IconCandidate(nil), s.candidates...)
}

// Lookup returns the candidate stored at path
func (s *Session) Lookup(path string) (models.IconCandidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.candidates {
		if c.Path == path {
			return c, true
		}
	}
	return models.IconCandidate{}, false
}

// Close stops in-flight work, waits for it to finish and deletes every
// candidate file. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		for range s.events {
		}
		err = os.RemoveAll(s.dir)
	})
	return err
}

func (s *Session) run(ctx context.Context, searcher *Searcher, query string) {
	defer close(s.events)

	// Provider failures are logged in runProvider and never cancel the
	// other providers; the group only ties them to the session context.
	var g errgroup.Group
	for _, p := range searcher.Providers {
		g.Go(func() error {
			s.runProvider(ctx, searcher, p, query)
			return nil
		})
	}
	_ = g.Wait()

	select {
	case s.events <- Event{Kind: EventDone, Count: len(s.Candidates())}:
	case <-ctx.Done():
	}
}

func (s *Session) runProvider(ctx context.Context, searcher *Searcher, p Provider, query string) {
	log := logging.Logger.With("provider", p.Name(), "query", query)

	urls, err := searcher.search(ctx, p, query)
	switch {
	case errors.Is(err, ErrSkipped):
		log.Debug("icon provider skipped", "reason", err)
		return
	case err != nil:
		log.Warn("icon provider failed", "error", apperr.Provider(p.Name(), err))
		return
	}
	log.Debug("icon provider returned candidates", "count", len(urls))

	var wg sync.WaitGroup
	for _, u := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			candidate, err := searcher.fetch(ctx, p.Name(), u, s.dir)
			if err != nil {
				log.Warn("icon candidate dropped", "url", u, "error", apperr.Provider(p.Name(), err))
				return
			}
			s.deliver(ctx, candidate)
		}()
	}
	wg.Wait()
}

func (s *Session) deliver(ctx context.Context, c models.IconCandidate) {
	s.mu.Lock()
	s.candidates = append(s.candidates, c)
	s.mu.Unlock()

	select {
	case s.events <- Event{Kind: EventCandidate, Candidate: c}:
	case <-ctx.Done():
	}
}

// search runs one provider query, bounded by FetchTimeout like every fetch
func (s *Searcher) search(ctx context.Context, p Provider, query string) ([]string, error) {
	if s.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.FetchTimeout)
		defer cancel()
	}
	return p.Search(ctx, query)
}

// fetch downloads one candidate, normalizes it and stores it in dir
func (s *Searcher) fetch(ctx context.Context, source, url, dir string) (models.IconCandidate, error) {
	if s.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.FetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.IconCandidate{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return models.IconCandidate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.IconCandidate{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	limit := s.MaxPayload
	if limit <= 0 {
		limit = DefaultMaxPayload
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return models.IconCandidate{}, err
	}
	if int64(len(data)) > limit {
		return models.IconCandidate{}, fmt.Errorf("image larger than %d bytes", limit)
	}

	normalized, vector, err := NormalizeBytes(data)
	if err != nil {
		return models.IconCandidate{}, err
	}

	path := filepath.Join(dir, uuid.NewString()+".png")
	if err := os.WriteFile(path, normalized, 0644); err != nil {
		return models.IconCandidate{}, err
	}

	return models.IconCandidate{
		Source: source,
		URL:    url,
		Path:   path,
		Data:   normalized,
		Vector: vector,
	}, nil
}
