package omdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/quintans/faults"

	"github.com/streamkit/popcorn/internal/app"
	"github.com/streamkit/popcorn/internal/lib/https"
	"github.com/streamkit/popcorn/internal/lib/retry"
)

const baseURL = "https://www.omdbapi.com"

// Client resolves a bare title to its IMDb id, genres and first air year. It
// is the cross-reference backend for catalogs that only know titles.
type Client struct {
	client https.Client
	apiKey string
}

func New(apiKey string) *Client {
	return &Client{
		client: https.Client{BaseURL: baseURL},
		apiKey: apiKey,
	}
}

type titleResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	ImdbID   string `json:"imdbID"`
	Genre    string `json:"Genre"`
	Year     string `json:"Year"`
}

// Lookup implements app.CrossRef. The upstream signals a miss with a 200 and
// Response=="False".
func (c *Client) Lookup(ctx context.Context, title string) (app.CrossRefMeta, error) {
	params := url.Values{}
	params.Set("t", title)
	params.Set("apikey", c.apiKey)

	var resp titleResponse
	err := retry.Do(func() error {
		return c.client.Get(ctx, "/?"+params.Encode(), &resp, nil)
	}, retry.WithDelayFunc(https.DelayFunc))
	if err != nil {
		return app.CrossRefMeta{}, fmt.Errorf("looking up %q: %w", title, err)
	}
	if resp.Response != "True" {
		return app.CrossRefMeta{}, faults.Errorf("no match for %q: %s", title, resp.Error)
	}

	return app.CrossRefMeta{
		ImdbID: resp.ImdbID,
		Genres: splitGenres(resp.Genre),
		Year:   firstYear(resp.Year),
	}, nil
}

func splitGenres(genre string) []string {
	if genre == "" || genre == "N/A" {
		return nil
	}
	parts := strings.Split(genre, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// firstYear keeps only the start of ranges like "2013-2015".
func firstYear(year string) string {
	year, _, _ = strings.Cut(year, "-")
	year, _, _ = strings.Cut(year, "–")
	return strings.TrimSpace(year)
}
