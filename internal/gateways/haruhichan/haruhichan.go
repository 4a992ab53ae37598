package haruhichan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/streamkit/popcorn/internal/app"
	"github.com/streamkit/popcorn/internal/lib/https"
	"github.com/streamkit/popcorn/internal/lib/magnet"
	"github.com/streamkit/popcorn/internal/lib/retry"
	"github.com/streamkit/popcorn/internal/lib/slices"
	"github.com/streamkit/popcorn/internal/model"
)

const (
	baseURL  = "https://ptp.haruhichan.com"
	slug     = "haruhichan"
	pageSize = 30
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
	Popularity = Filter{"popularity", "Popular"}
	Year       = Filter{"year", "Year"}
	Date       = Filter{"date", "Release Date"}
	Rating     = Filter{"rating", "Top Rated"}
	Name       = Filter{"name", "A-Z"}
)

var Filters = []Filter{Popularity, Year, Date, Rating, Name}

// Client wraps the anime catalog. The upstream knows nothing about IMDb, so
// every listing row is cross-referenced by title before it is returned;
// rows that fail to resolve are dropped, preserving the listing order.
type Client struct {
	client   https.Client
	bus      app.EventBus
	crossRef app.CrossRef
}

func New(bus app.EventBus, crossRef app.CrossRef) *Client {
	return &Client{
		client: https.Client{
			BaseURL: baseURL,
			Header: http.Header{
				"User-Agent": {fmt.Sprintf("%s v%s", app.Name, app.Version)},
			},
			Limiter: rate.NewLimiter(rate.Limit(2), 2),
		},
		bus:      bus,
		crossRef: crossRef,
	}
}

func (c *Client) Slug() string {
	return slug
}

// Load fetches one catalog page. Pages are 1-based here and 0-based upstream.
func (c *Client) Load(ctx context.Context, page int, filter Filter, animeType string, search string) ([]model.Show, error) {
	params := url.Values{}
	params.Set("sort", filter.val)
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("order", "asc")
	params.Set("page", strconv.Itoa(page-1))
	if animeType != "" && !strings.EqualFold(animeType, "All") {
		params.Set("type", animeType)
	}
	if search != "" {
		params.Set("search", search)
	}

	var raw json.RawMessage
	err := retry.Do(func() error {
		var e error
		raw, e = c.getRaw(ctx, "/list.php?"+params.Encode())
		return e
	}, retry.WithDelayFunc(https.DelayFunc))
	if err != nil {
		c.bus.Publish(app.NetworkError{Provider: slug, Err: err})
		return nil, fmt.Errorf("loading anime page %d: %w", page, err)
	}

	var shows []model.Show
	for _, row := range gjson.ParseBytes(raw).Array() {
		title := cleanTitle(row.Get("name").String())
		id := int(row.Get("id").Int())
		if title == "" || id == 0 {
			continue
		}

		// the catalog has no external ids; resolve them one row at a
		// time so the listing order survives
		meta, err := c.crossRef.Lookup(ctx, title)
		if err != nil {
			slog.Debug("dropping unresolvable anime", "title", title, "error", err)
			continue
		}

		shows = append(shows, model.Show{
			ImdbID:    meta.ImdbID,
			Title:     title,
			Year:      meta.Year,
			PosterURL: row.Get("malimg").String(),
			Genres:    meta.Genres,
			AnimeID:   id,
		})
	}
	return shows, nil
}

// SearchCatalog implements app.CatalogSearcher.
func (c *Client) SearchCatalog(ctx context.Context, query string, page int) ([]app.CatalogItem, error) {
	shows, err := c.Load(ctx, page, Popularity, "", query)
	if err != nil {
		return nil, err
	}

	return slices.Map(shows, func(s model.Show) app.CatalogItem {
		return app.CatalogItem{Show: &s}
	}), nil
}

// Detail carries the per-episode magnets for one anime. The upstream lists a
// flat file list; the episode number and quality are parsed from each name.
type Detail struct {
	Synopsis string
	Genres   []string
	Episodes []model.Episode
}

func (c *Client) AnimeDetail(ctx context.Context, animeID int) (Detail, error) {
	var raw json.RawMessage
	err := retry.Do(func() error {
		var e error
		raw, e = c.getRaw(ctx, "/anime.php?id="+strconv.Itoa(animeID))
		return e
	}, retry.WithDelayFunc(https.DelayFunc))
	if err != nil {
		c.bus.Publish(app.NetworkError{Provider: slug, Err: err})
		return Detail{}, fmt.Errorf("loading anime %d: %w", animeID, err)
	}

	doc := gjson.ParseBytes(raw)
	var episodes []model.Episode
	for _, ep := range doc.Get("episodes").Array() {
		link := ep.Get("magnet").String()
		if link == "" {
			continue
		}
		var hash string
		if m, err := magnet.Parse(link); err == nil {
			hash = m.Hash
		}
		number, quality := parseEpisodeName(ep.Get("name").String())
		episodes = append(episodes, model.Episode{
			Season:   1,
			Episode:  number,
			Title:    fmt.Sprintf("Episode %d", number),
			Torrents: []model.Torrent{model.NewTorrent(link, 0, 0, quality, "", hash)},
		})
	}

	var genres []string
	for _, g := range doc.Get("genres").Array() {
		genres = append(genres, g.String())
	}

	return Detail{
		Synopsis: doc.Get("synopsis").String(),
		Genres:   genres,
		Episodes: episodes,
	}, nil
}

func (c *Client) getRaw(ctx context.Context, uri string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.client.Get(ctx, uri, &raw, nil)
	return raw, err
}

// cleanTitle strips the "(TV)" disambiguation suffix the catalog appends.
func cleanTitle(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "(TV)", ""))
}

// parseEpisodeName extracts the episode number and the quality token that
// precedes the first dash, from names like "[Group] Title - 03 [720p]".
func parseEpisodeName(name string) (number int, quality string) {
	quality = "480p"
	if i := strings.LastIndex(name, "["); i >= 0 {
		if j := strings.Index(name[i:], "]"); j > 0 {
			token := name[i+1 : i+j]
			if strings.HasSuffix(token, "p") {
				quality = token
			}
		}
	}
	fields := strings.Fields(name)
	for i := len(fields) - 1; i >= 0; i-- {
		if n, err := strconv.Atoi(strings.TrimLeft(fields[i], "0")); err == nil && n > 0 {
			return n, quality
		}
	}
	return 1, quality
}
