package icons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"appimage-installer/internal/config"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Provider is an external source of candidate icon URLs
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) ([]string, error)
}

// ErrSkipped marks a provider that declined to run. Skips are silent.
var ErrSkipped = errors.New("provider skipped")

var (
	// ErrQuotaExhausted is returned when a remote quota check says no
	ErrQuotaExhausted = fmt.Errorf("%w: remote quota exhausted", ErrSkipped)
	// ErrRateLimited is returned when the local limiter has no tokens left
	ErrRateLimited = fmt.Errorf("%w: local rate limit", ErrSkipped)
)

const userAgent = "appimage-installer/1.0 (icon search)"

// maxResponseSize bounds provider API responses
const maxResponseSize = 2 << 20

// breakerTimeout is how long an open breaker rejects calls
const breakerTimeout = time.Minute

// breakerTrips is the number of consecutive failures that open a breaker
const breakerTrips = 5

// Guarded wraps a provider with a local rate limiter and a circuit breaker.
type Guarded struct {
	Provider
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// Guard wraps p. perMinute <= 0 disables the rate limit.
func Guard(p Provider, perMinute int) *Guarded {
	limit := rate.Inf
	burst := 1
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
		burst = perMinute
	}

	return &Guarded{
		Provider: p,
		limiter:  rate.NewLimiter(limit, burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    p.Name(),
			Timeout: breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerTrips
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrSkipped) || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// Search runs the wrapped provider unless a guard rejects the call
func (g *Guarded) Search(ctx context.Context, query string) ([]string, error) {
	if !g.limiter.Allow() {
		return nil, ErrRateLimited
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.Provider.Search(ctx, query)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrSkipped, err)
	}
	if err != nil {
		return nil, err
	}
	urls, _ := out.([]string)
	return urls, nil
}

// State returns the breaker state
func (g *Guarded) State() gobreaker.State {
	return g.breaker.State()
}

// NewProviders builds the guarded providers enabled in cfg
func NewProviders(cfg *config.Config, client *http.Client) []Provider {
	var providers []Provider
	for _, name := range cfg.Providers {
		var p Provider
		switch name {
		case "flathub":
			p = &Flathub{BaseURL: cfg.FlathubURL, Client: client, Limit: cfg.MaxCandidates}
		case "github":
			p = &GitHub{BaseURL: cfg.GitHubURL, Client: client, Limit: cfg.MaxCandidates}
		case "wikimedia":
			p = &Wikimedia{BaseURL: cfg.WikimediaURL, Client: client, Limit: cfg.MaxCandidates}
		default:
			continue
		}
		providers = append(providers, Guard(p, cfg.ProviderRatePerMinute))
	}
	return providers
}

// doJSON sends req and decodes a 2xx JSON body into v
func doJSON(client *http.Client, req *http.Request, v any) error {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func limitURLs(urls []string, limit int) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]bool)
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
