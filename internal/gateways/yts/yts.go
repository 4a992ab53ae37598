package yts

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/streamkit/popcorn/internal/app"
	"github.com/streamkit/popcorn/internal/lib/https"
	"github.com/streamkit/popcorn/internal/lib/retry"
	"github.com/streamkit/popcorn/internal/lib/slices"
	"github.com/streamkit/popcorn/internal/model"
)

const (
	baseURL = "https://movies.api-fetch.website/movies/api/v2"
	slug    = "yts"
)

// Filter is the closed set of sort orders the movie catalog accepts.
type Filter struct {
	val  string
	name string
}

func (f Filter) String() string {
	return f.val
}

// DisplayName is the human label for the filter.
func (f Filter) DisplayName() string {
	return f.name
}

var (
	Trending   = Filter{"trending_score", "Trending"}
	Popularity = Filter{"seeds", "Popular"}
	Rating     = Filter{"rating", "Top Rated"}
	Date       = Filter{"date_added", "Release Date"}
	Year       = Filter{"year", "Year"}
	Alphabet   = Filter{"title", "A-Z"}
)

var Filters = []Filter{Trending, Popularity, Rating, Date, Year, Alphabet}

type Genre string

const (
	All         Genre = "All"
	Action      Genre = "Action"
	Adventure   Genre = "Adventure"
	Animation   Genre = "Animation"
	Biography   Genre = "Biography"
	Comedy      Genre = "Comedy"
	Crime       Genre = "Crime"
	Documentary Genre = "Documentary"
	Drama       Genre = "Drama"
	Family      Genre = "Family"
	Fantasy     Genre = "Fantasy"
	FilmNoir    Genre = "Film-Noir"
	History     Genre = "History"
	Horror      Genre = "Horror"
	Music       Genre = "Music"
	Musical     Genre = "Musical"
	Mystery     Genre = "Mystery"
	Romance     Genre = "Romance"
	SciFi       Genre = "Sci-Fi"
	Short       Genre = "Short"
	Sport       Genre = "Sport"
	Thriller    Genre = "Thriller"
	War         Genre = "War"
	Western     Genre = "Western"
)

var Genres = []Genre{
	All, Action, Adventure, Animation, Biography, Comedy, Crime, Documentary,
	Drama, Family, Fantasy, FilmNoir, History, Horror, Music, Musical, Mystery,
	Romance, SciFi, Short, Sport, Thriller, War, Western,
}

// Client wraps the movie catalog API and normalizes its responses.
type Client struct {
	client https.Client
	bus    app.EventBus
	limit  int
}

func New(bus app.EventBus, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = 30
	}
	return &Client{
		client: https.Client{
			BaseURL: baseURL,
			Header: http.Header{
				"User-Agent": {fmt.Sprintf("%s v%s", app.Name, app.Version)},
				"Accept":     {"application/json"},
			},
			Limiter: rate.NewLimiter(rate.Limit(2), 2),
		},
		bus:   bus,
		limit: pageSize,
	}
}

func (c *Client) Slug() string {
	return slug
}

type listResponse struct {
	Data struct {
		Movies []movieRow `json:"movies"`
	} `json:"data"`
}

type movieRow struct {
	Title           string       `json:"title"`
	Year            int          `json:"year"`
	Rating          float32      `json:"rating"`
	Runtime         int          `json:"runtime"`
	Genres          []string     `json:"genres"`
	DescriptionFull string       `json:"description_full"`
	YtTrailerCode   string       `json:"yt_trailer_code"`
	ImdbCode        string       `json:"imdb_code"`
	LargeCoverImage string       `json:"large_cover_image"`
	Torrents        []torrentRow `json:"torrents"`
}

type torrentRow struct {
	URL       string `json:"url"`
	Hash      string `json:"hash"`
	Quality   string `json:"quality"`
	Size      string `json:"size"`
	SizeBytes uint64 `json:"size_bytes"`
	Seeds     int    `json:"seeds"`
	Peers     int    `json:"peers"`
}

// Load fetches one catalog page. On transport or HTTP failure it publishes a
// single NetworkError and returns no items; rows missing required fields are
// skipped without failing the page.
func (c *Client) Load(ctx context.Context, page int, filter Filter, genre Genre, searchTerm string) ([]model.Movie, error) {
	params := url.Values{}
	params.Set("sort_by", filter.val)
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("page", strconv.Itoa(page))
	params.Set("genre", string(genre))
	params.Set("with_rt_ratings", "true")
	params.Set("lang", "en")
	if searchTerm != "" {
		params.Set("query_term", searchTerm)
	}
	if filter == Alphabet {
		params.Set("order_by", "asc")
	}

	var resp listResponse
	err := retry.Do(func() error {
		return c.client.Get(ctx, "/list_movies?"+params.Encode(), &resp, nil)
	}, retry.WithDelayFunc(https.DelayFunc))
	if err != nil {
		c.bus.Publish(app.NetworkError{Provider: slug, Err: err})
		return nil, fmt.Errorf("loading movies page %d: %w", page, err)
	}

	movies := make([]model.Movie, 0, len(resp.Data.Movies))
	for _, row := range resp.Data.Movies {
		movie, ok := normalize(row)
		if !ok {
			slog.Warn("skipping malformed movie row", "title", row.Title, "imdb", row.ImdbCode)
			continue
		}
		movies = append(movies, movie)
	}

	return movies, nil
}

// SearchCatalog implements app.CatalogSearcher.
func (c *Client) SearchCatalog(ctx context.Context, query string, page int) ([]app.CatalogItem, error) {
	movies, err := c.Load(ctx, page, Trending, All, query)
	if err != nil {
		return nil, err
	}

	return slices.Map(movies, func(m model.Movie) app.CatalogItem {
		return app.CatalogItem{Movie: &m}
	}), nil
}

func normalize(row movieRow) (model.Movie, bool) {
	if row.Title == "" || row.ImdbCode == "" {
		return model.Movie{}, false
	}

	torrents := make([]model.Torrent, 0, len(row.Torrents))
	for _, t := range row.Torrents {
		if t.URL == "" {
			continue
		}
		size := t.Size
		if size == "" && t.SizeBytes > 0 {
			size = humanize.Bytes(t.SizeBytes)
		}
		torrents = append(torrents, model.NewTorrent(t.URL, t.Seeds, t.Peers, t.Quality, size, t.Hash))
	}

	return model.Movie{
		Title:       row.Title,
		Year:        row.Year,
		PosterURL:   row.LargeCoverImage,
		ImdbID:      row.ImdbCode,
		Rating:      row.Rating / 2, // upstream is 0-10
		Torrents:    torrents,
		Genres:      row.Genres,
		Summary:     row.DescriptionFull,
		Runtime:     row.Runtime,
		TrailerCode: row.YtTrailerCode,
	}, true
}
