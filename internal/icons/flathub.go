package icons

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Flathub searches the Flathub app catalogue
type Flathub struct {
	BaseURL string
	Client  *http.Client
	Limit   int
}

type flathubResponse struct {
	Hits []struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	} `json:"hits"`
}

// Name implements Provider
func (f *Flathub) Name() string { return "flathub" }

// Search implements Provider
func (f *Flathub) Search(ctx context.Context, query string) ([]string, error) {
	body, _ := json.Marshal(map[string]string{"query": query})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(f.BaseURL, "/")+"/api/v2/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp flathubResponse
	if err := doJSON(f.Client, req, &resp); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		urls = append(urls, hit.Icon)
	}
	return limitURLs(urls, f.Limit), nil
}
