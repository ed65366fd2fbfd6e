package icons

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"appimage-installer/internal/config"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProvider struct {
	name  string
	urls  []string
	err   error
	calls atomic.Int32
}

func (p *staticProvider) Name() string { return p.name }

func (p *staticProvider) Search(ctx context.Context, query string) ([]string, error) {
	p.calls.Add(1)
	return p.urls, p.err
}

func TestFlathub_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/search", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Krita", body["query"])

		w.Write([]byte(`{"hits":[{"name":"Krita","icon":"https://img/krita.png"},{"name":"Other","icon":"https://img/other.png"},{"icon":""}]}`))
	}))
	defer srv.Close()

	p := &Flathub{BaseURL: srv.URL, Client: srv.Client(), Limit: 3}
	urls, err := p.Search(context.Background(), "Krita")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/krita.png", "https://img/other.png"}, urls)
}

func TestFlathub_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := (&Flathub{BaseURL: srv.URL, Client: srv.Client()}).Search(context.Background(), "x")
	assert.Error(t, err)
}

func TestGitHub_QuotaExhaustedSkipsSearch(t *testing.T) {
	var searched atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resources":{"search":{"limit":10,"remaining":0}}}`))
	})
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		searched.Store(true)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := (&GitHub{BaseURL: srv.URL, Client: srv.Client()}).Search(context.Background(), "foo")
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.ErrorIs(t, err, ErrSkipped)
	assert.False(t, searched.Load(), "search endpoint must not be called without quota")
}

func TestGitHub_Search(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resources":{"search":{"remaining":9}}}`))
	})
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "obsidian", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		w.Write([]byte(`{"items":[{"owner":{"avatar_url":"https://a/1"}},{"owner":{"avatar_url":"https://a/2"}}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	urls, err := (&GitHub{BaseURL: srv.URL, Client: srv.Client(), Limit: 2}).Search(context.Background(), "obsidian")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a/1", "https://a/2"}, urls)
}

func TestWikimedia_SearchOrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/api.php", r.URL.Path)
		assert.Equal(t, "Inkscape logo", r.URL.Query().Get("gsrsearch"))
		assert.Equal(t, "6", r.URL.Query().Get("gsrnamespace"))
		w.Write([]byte(`{"query":{"pages":{
			"20":{"index":2,"imageinfo":[{"url":"https://c/second.svg","mime":"image/svg+xml"}]},
			"10":{"index":1,"imageinfo":[{"url":"https://c/first.png","mime":"image/png"}]},
			"30":{"index":3}
		}}}`))
	}))
	defer srv.Close()

	urls, err := (&Wikimedia{BaseURL: srv.URL, Client: srv.Client()}).Search(context.Background(), "Inkscape")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://c/first.png", "https://c/second.svg"}, urls)
}

func TestWikimedia_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := (&Wikimedia{BaseURL: srv.URL, Client: srv.Client()}).Search(context.Background(), "x")
	assert.Error(t, err)
}

func TestGuard_RateLimit(t *testing.T) {
	p := &staticProvider{name: "static", urls: []string{"u"}}
	g := Guard(p, 1)

	_, err := g.Search(context.Background(), "q")
	require.NoError(t, err)

	_, err = g.Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestGuard_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	p := &staticProvider{name: "flaky", err: errors.New("boom")}
	g := Guard(p, 0)

	for i := 0; i < breakerTrips; i++ {
		_, err := g.Search(context.Background(), "q")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSkipped)
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())

	_, err := g.Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrSkipped)
	assert.Equal(t, int32(breakerTrips), p.calls.Load())
}

func TestGuard_SkipsDoNotTripBreaker(t *testing.T) {
	p := &staticProvider{name: "quota", err: ErrQuotaExhausted}
	g := Guard(p, 0)

	for i := 0; i < breakerTrips+2; i++ {
		g.Search(context.Background(), "q")
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestNewProviders_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Providers = []string{"wikimedia", "flathub"}

	providers := NewProviders(cfg, http.DefaultClient)
	require.Len(t, providers, 2)
	assert.Equal(t, "wikimedia", providers[0].Name())
	assert.Equal(t, "flathub", providers[1].Name())
	assert.IsType(t, &Guarded{}, providers[0])
}
