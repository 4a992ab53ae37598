package popcornapi

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/streamkit/popcorn/internal/app"
	"github.com/streamkit/popcorn/internal/lib/https"
	"github.com/streamkit/popcorn/internal/lib/retry"
	"github.com/streamkit/popcorn/internal/model"
)

const (
	baseURL = "https://tv-v2.api-fetch.website"
	slug    = "popcorn-tv"
)

type Filter struct {
	val  string
	name string
}

func (f Filter) String() string {
	return f.val
}

func (f Filter) DisplayName() string {
	return f.name
}

var (
	Trending   = Filter{"trending", "Trending"}
	Popularity = Filter{"popularity", "Popular"}
	Rating     = Filter{"rating", "Top Rated"}
	Updated    = Filter{"updated", "Recently Updated"}
	Year       = Filter{"year", "Year"}
	Alphabet   = Filter{"name", "A-Z"}
)

var Filters = []Filter{Trending, Popularity, Rating, Updated, Year, Alphabet}

// Client wraps the TV catalog API. Listing rows carry only the poster and
// rating; full detail comes from ShowDetail.
type Client struct {
	client https.Client
	bus    app.EventBus
}

func New(bus app.EventBus) *Client {
	return &Client{
		client: https.Client{
			BaseURL: baseURL,
			Header: http.Header{
				"User-Agent": {fmt.Sprintf("%s v%s", app.Name, app.Version)},
				"Accept":     {"application/json"},
			},
			Limiter: rate.NewLimiter(rate.Limit(2), 2),
		},
		bus: bus,
	}
}

func (c *Client) Slug() string {
	return slug
}

type showRow struct {
	ImdbID string `json:"imdb_id"`
	Title  string `json:"title"`
	Year   string `json:"year"`
	Images struct {
		Poster string `json:"poster"`
	} `json:"images"`
	Rating struct {
		Percentage float32 `json:"percentage"`
	} `json:"rating"`
}

// Load fetches one catalog page. Genres with spaces are dashed on the wire
// ("Sci-Fi" stays as is, "Game Show" becomes "game-show").
func (c *Client) Load(ctx context.Context, page int, filter Filter, genre string, keywords string) ([]model.Show, error) {
	params := url.Values{}
	params.Set("sort", filter.val)
	params.Set("order", "-1")
	if genre != "" && !strings.EqualFold(genre, "All") {
		params.Set("genre", strings.ToLower(strings.ReplaceAll(genre, " ", "-")))
	}
	if keywords != "" {
		params.Set("keywords", keywords)
	}

	var rows []showRow
	err := retry.Do(func() error {
		return c.client.Get(ctx, "/shows/"+strconv.Itoa(page)+"?"+params.Encode(), &rows, nil)
	}, retry.WithDelayFunc(https.DelayFunc))
	if err != nil {
		c.bus.Publish(app.NetworkError{Provider: slug, Err: err})
		return nil, fmt.Errorf("loading shows page %d: %w", page, err)
	}

	shows := make([]model.Show, 0, len(rows))
	for _, row := range rows {
		if row.ImdbID == "" || row.Title == "" {
			slog.Warn("skipping malformed show row", "title", row.Title)
			continue
		}
		shows = append(shows, model.Show{
			ImdbID:    row.ImdbID,
			Title:     row.Title,
			Year:      row.Year,
			PosterURL: thumbPoster(row.Images.Poster),
			Rating:    row.Rating.Percentage / 20, // upstream is 0-100
		})
	}
	return shows, nil
}

// SearchCatalog implements app.CatalogSearcher.
func (c *Client) SearchCatalog(ctx context.Context, query string, page int) ([]app.CatalogItem, error) {
	shows, err := c.Load(ctx, page, Trending, "", query)
	if err != nil {
		return nil, err
	}

	items := make([]app.CatalogItem, len(shows))
	for i := range shows {
		items[i] = app.CatalogItem{Show: &shows[i]}
	}
	return items, nil
}

type showDetail struct {
	showRow
	Genres   []string     `json:"genres"`
	Status   string       `json:"status"`
	Synopsis string       `json:"synopsis"`
	Episodes []episodeRow `json:"episodes"`
}

type episodeRow struct {
	Season     int    `json:"season"`
	Episode    int    `json:"episode"`
	Title      string `json:"title"`
	Overview   string `json:"overview"`
	FirstAired int64  `json:"first_aired"`
	TvdbID     int    `json:"tvdb_id"`
	Torrents   map[string]struct {
		URL   string `json:"url"`
		Seeds int    `json:"seeds"`
		Peers int    `json:"peers"`
	} `json:"torrents"`
}

// Detail carries everything the listing omits: the full episode list, sorted
// by season then episode, and the distinct seasons in ascending order.
type Detail struct {
	Genres   []string
	Status   string
	Synopsis string
	Seasons  []int
	Episodes []model.Episode
}

// ShowDetail fetches one show with its episode list. Torrents come keyed by
// quality; the "0" key is a placeholder upstream and is dropped.
func (c *Client) ShowDetail(ctx context.Context, imdbID string) (Detail, error) {
	var row showDetail
	err := retry.Do(func() error {
		return c.client.Get(ctx, "/show/"+imdbID, &row, nil)
	}, retry.WithDelayFunc(https.DelayFunc))
	if err != nil {
		c.bus.Publish(app.NetworkError{Provider: slug, Err: err})
		return Detail{}, fmt.Errorf("loading show %s: %w", imdbID, err)
	}

	episodes := make([]model.Episode, 0, len(row.Episodes))
	seasons := map[int]struct{}{}
	for _, ep := range row.Episodes {
		episodes = append(episodes, model.Episode{
			Season:   ep.Season,
			Episode:  ep.Episode,
			Title:    ep.Title,
			Overview: ep.Overview,
			Aired:    unixTime(ep.FirstAired),
			TvdbID:   strconv.Itoa(ep.TvdbID),
			Torrents: episodeTorrents(ep),
		})
		seasons[ep.Season] = struct{}{}
	}
	slices.SortFunc(episodes, func(a, b model.Episode) int {
		if c := cmp.Compare(a.Season, b.Season); c != 0 {
			return c
		}
		return cmp.Compare(a.Episode, b.Episode)
	})

	return Detail{
		Genres:   row.Genres,
		Status:   row.Status,
		Synopsis: row.Synopsis,
		Seasons:  slices.Sorted(maps.Keys(seasons)),
		Episodes: episodes,
	}, nil
}

func episodeTorrents(ep episodeRow) []model.Torrent {
	torrents := make([]model.Torrent, 0, len(ep.Torrents))
	for quality, t := range ep.Torrents {
		if quality == "0" || t.URL == "" {
			continue
		}
		torrents = append(torrents, model.NewTorrent(t.URL, t.Seeds, t.Peers, quality, "", ""))
	}
	// highest quality first
	slices.SortFunc(torrents, func(a, b model.Torrent) int {
		return cmp.Compare(b.Quality, a.Quality)
	})
	return torrents
}

func unixTime(secs int64) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// thumbPoster swaps the full-size poster path for the thumbnail variant.
func thumbPoster(poster string) string {
	return strings.Replace(poster, "original", "thumb", 1)
}
