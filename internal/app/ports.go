package app

import (
	"context"

	"github.com/streamkit/popcorn/internal/model"
)

const (
	Version = "0.1"
	Name    = "popcorn"
)

type EventBus interface {
	Publish(m Message)
}

type Message interface {
	Kind() string
}

// Secrets is a secure key-value store backed by the OS keychain. Retrieve
// returns nil bytes and nil error when nothing is stored under the identifier.
type Secrets interface {
	Store(identifier string, secret []byte) error
	Retrieve(identifier string) ([]byte, error)
	Delete(identifier string) error
}

// CatalogSearcher is the slice of a provider the cross-provider search façade
// needs: free-text search over one upstream catalog.
type CatalogSearcher interface {
	Slug() string
	SearchCatalog(ctx context.Context, query string, page int) ([]CatalogItem, error)
}

// CatalogItem is a search hit from any catalog provider. Exactly one of Movie
// and Show is set.
type CatalogItem struct {
	Movie *model.Movie
	Show  *model.Show
}

// Scrobbler reports playback state to a remote watch-history service and
// reads it back. Every method needs a valid credential and must be called off
// the UI context.
type Scrobbler interface {
	Scrobble(ctx context.Context, id string, progress float32, mediaType model.MediaType, status model.ScrobbleStatus) error
	WatchedIDs(ctx context.Context, mediaType model.MediaType) ([]string, error)
	PlaybackProgress(ctx context.Context, mediaType model.MediaType) (map[string]float32, error)
	RemoveFromHistory(ctx context.Context, mediaType model.MediaType, id string) error
}

// MetadataClient resolves richer artwork and synopsis data than the catalog
// providers carry, keyed by IMDb id.
type MetadataClient interface {
	MovieMeta(ctx context.Context, imdbID string) (MovieMeta, error)
	ShowMeta(ctx context.Context, imdbID string) (ShowMeta, error)
	EpisodeMeta(ctx context.Context, showImdbID string, season, episode int) (EpisodeMeta, error)
}

type MovieMeta struct {
	BackgroundURL string
	Rating        float32
}

type ShowMeta struct {
	Synopsis      string
	Status        string
	BackgroundURL string
	Rating        float32
}

type EpisodeMeta struct {
	ImdbID   string
	ImageURL string
	Overview string
}

// CrossRef resolves a bare title to the external ids and genres the anime
// listing lacks.
type CrossRef interface {
	Lookup(ctx context.Context, title string) (CrossRefMeta, error)
}

type CrossRefMeta struct {
	ImdbID string
	Genres []string
	Year   string
}

type SubtitlesClient interface {
	Login(ctx context.Context) (token string, err error)
	Search(ctx context.Context, query SubtitleQuery) ([]model.Subtitle, error)
}

// SubtitleQuery filters a subtitle search either by external id (preferred,
// higher precision) or by free text plus season/episode.
type SubtitleQuery struct {
	Token   string
	ImdbID  string
	Query   string
	Season  int
	Episode int
	Limit   int
}
