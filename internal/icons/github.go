package icons

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// GitHub uses repository owner avatars as icons. The search API has its own
// quota, which is checked before every query.
type GitHub struct {
	BaseURL string
	Client  *http.Client
	Limit   int
}

type githubRateLimit struct {
	Resources struct {
		Search struct {
			Remaining int `json:"remaining"`
		} `json:"search"`
	} `json:"resources"`
}

type githubSearch struct {
	Items []struct {
		Owner struct {
			AvatarURL string `json:"avatar_url"`
		} `json:"owner"`
	} `json:"items"`
}

// Name implements Provider
func (g *GitHub) Name() string { return "github" }

// Search implements Provider. It returns ErrQuotaExhausted when the search
// quota is used up.
func (g *GitHub) Search(ctx context.Context, query string) ([]string, error) {
	base := strings.TrimRight(g.BaseURL, "/")

	remaining, err := g.remaining(ctx, base)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return nil, ErrQuotaExhausted
	}

	perPage := g.Limit
	if perPage <= 0 {
		perPage = 5
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/search/repositories?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	var resp githubSearch
	if err := doJSON(g.Client, req, &resp); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		urls = append(urls, item.Owner.AvatarURL)
	}
	return limitURLs(urls, g.Limit), nil
}

func (g *GitHub) remaining(ctx context.Context, base string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/rate_limit", nil)
	if err != nil {
		return 0, err
	}

	var rl githubRateLimit
	if err := doJSON(g.Client, req, &rl); err != nil {
		return 0, err
	}
	return rl.Resources.Search.Remaining, nil
}
