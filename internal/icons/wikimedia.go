package icons

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Wikimedia searches logo files on Wikimedia Commons. Results are often SVG.
type Wikimedia struct {
	BaseURL string
	Client  *http.Client
	Limit   int
}

type wikimediaResponse struct {
	Query struct {
		Pages map[string]struct {
			Index     int `json:"index"`
			ImageInfo []struct {
				URL  string `json:"url"`
				Mime string `json:"mime"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// Name implements Provider
func (w *Wikimedia) Name() string { return "wikimedia" }

// Search implements Provider
func (w *Wikimedia) Search(ctx context.Context, query string) ([]string, error) {
	limit := w.Limit
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("generator", "search")
	params.Set("gsrsearch", query+" logo")
	params.Set("gsrnamespace", "6")
	params.Set("gsrlimit", strconv.Itoa(limit))
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url|mime")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(w.BaseURL, "/")+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp wikimediaResponse
	if err := doJSON(w.Client, req, &resp); err != nil {
		return nil, err
	}

	type hit struct {
		index int
		url   string
	}
	hits := make([]hit, 0, len(resp.Query.Pages))
	for _, page := range resp.Query.Pages {
		if len(page.ImageInfo) == 0 {
			continue
		}
		hits = append(hits, hit{index: page.Index, url: page.ImageInfo[0].URL})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].index < hits[j].index })

	urls := make([]string, len(hits))
	for i, h := range hits {
		urls[i] = h.url
	}
	return limitURLs(urls, w.Limit), nil
}
