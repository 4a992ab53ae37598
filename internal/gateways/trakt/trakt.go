package trakt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/streamkit/popcorn/internal/app"
	"github.com/streamkit/popcorn/internal/lib/https"
	"github.com/streamkit/popcorn/internal/lib/retry"
	"github.com/streamkit/popcorn/internal/model"
	"github.com/streamkit/popcorn/internal/oauth"
)

const (
	baseURL = "https://api.trakt.tv"
	slug    = "trakt"
)

var (
	clientID     = "trakt-client-id"
	clientSecret = "trakt-client-secret"
)

func init() {
	if v := os.Getenv("TRAKT_CLIENT_ID"); v != "" {
		clientID = v
	}
	if v := os.Getenv("TRAKT_CLIENT_SECRET"); v != "" {
		clientSecret = v
	}
}

// OAuthConfig is the token-endpoint configuration for this service, to be fed
// to the credential manager at wiring time.
func OAuthConfig() oauth.Config {
	return oauth.Config{
		TokenURL:     baseURL + "/oauth/token",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Identifier:   slug,
	}
}

// Client talks to the watch-history service. Metadata lookups are public;
// everything touching the user's history requires a credential, refreshed
// transparently before each call.
type Client struct {
	client      https.Client
	bus         app.EventBus
	credentials *oauth.Manager
}

func New(bus app.EventBus, credentials *oauth.Manager) *Client {
	return &Client{
		client: https.Client{
			BaseURL: baseURL,
			Header: http.Header{
				"Content-Type":      {"application/json"},
				"trakt-api-key":     {clientID},
				"trakt-api-version": {"2"},
			},
			Limiter: rate.NewLimiter(rate.Limit(3), 3),
		},
		bus:         bus,
		credentials: credentials,
	}
}

// Credentials exposes the credential manager for sign-in and sign-out flows.
func (c *Client) Credentials() *oauth.Manager {
	return c.credentials
}

func (c *Client) get(ctx context.Context, uri string, authed bool, response any) error {
	return c.call(ctx, http.MethodGet, uri, authed, nil, response)
}

func (c *Client) call(ctx context.Context, method, uri string, authed bool, request, response any) error {
	var header http.Header
	if authed {
		cred, err := c.credentials.EnsureValid(ctx)
		if err != nil {
			return fmt.Errorf("ensuring credential: %w", err)
		}
		header = http.Header{"Authorization": {"Bearer " + cred.AccessToken}}
	}

	err := retry.Do(func() error {
		return c.client.Request(ctx, method, uri, request, response, header)
	}, retry.WithDelayFunc(https.DelayFunc))
	if err != nil {
		if authed && errors.Is(err, https.ErrAuth) {
			c.bus.Publish(app.AuthError{Service: slug})
		}
		return err
	}
	return nil
}

// MovieMeta implements app.MetadataClient.
func (c *Client) MovieMeta(ctx context.Context, imdbID string) (app.MovieMeta, error) {
	var raw json.RawMessage
	err := c.get(ctx, "/movies/"+imdbID+"?extended=full,images", false, &raw)
	if err != nil {
		return app.MovieMeta{}, fmt.Errorf("loading movie meta for %s: %w", imdbID, err)
	}

	doc := gjson.ParseBytes(raw)
	return app.MovieMeta{
		BackgroundURL: imageURL(doc.Get("images.fanart.0")),
		Rating:        float32(doc.Get("rating").Float()) / 2,
	}, nil
}

// ShowMeta implements app.MetadataClient.
func (c *Client) ShowMeta(ctx context.Context, imdbID string) (app.ShowMeta, error) {
	var raw json.RawMessage
	err := c.get(ctx, "/shows/"+imdbID+"?extended=full,images", false, &raw)
	if err != nil {
		return app.ShowMeta{}, fmt.Errorf("loading show meta for %s: %w", imdbID, err)
	}

	doc := gjson.ParseBytes(raw)
	return app.ShowMeta{
		Synopsis:      doc.Get("overview").String(),
		Status:        doc.Get("status").String(),
		BackgroundURL: imageURL(doc.Get("images.fanart.0")),
		Rating:        float32(doc.Get("rating").Float()) / 2,
	}, nil
}

// EpisodeMeta implements app.MetadataClient.
func (c *Client) EpisodeMeta(ctx context.Context, showImdbID string, season, episode int) (app.EpisodeMeta, error) {
	uri := fmt.Sprintf("/shows/%s/seasons/%d/episodes/%d?extended=full,images", showImdbID, season, episode)
	var raw json.RawMessage
	err := c.get(ctx, uri, false, &raw)
	if err != nil {
		return app.EpisodeMeta{}, fmt.Errorf("loading episode meta for %s S%02dE%02d: %w", showImdbID, season, episode, err)
	}

	doc := gjson.ParseBytes(raw)
	return app.EpisodeMeta{
		ImdbID:   doc.Get("ids.imdb").String(),
		ImageURL: imageURL(doc.Get("images.screenshot.0")),
		Overview: doc.Get("overview").String(),
	}, nil
}

// Scrobble implements app.Scrobbler. Progress is 0-1 locally and 0-100 on the
// wire.
func (c *Client) Scrobble(ctx context.Context, id string, progress float32, mediaType model.MediaType, status model.ScrobbleStatus) error {
	body := map[string]any{
		"progress":    progress * 100,
		"app_version": app.Version,
	}
	switch mediaType {
	case model.Episodes:
		tvdb, err := strconv.Atoi(id)
		if err != nil {
			return fmt.Errorf("episode scrobble needs a numeric tvdb id, got %q: %w", id, err)
		}
		body["episode"] = map[string]any{"ids": map[string]any{"tvdb": tvdb}}
	default:
		body["movie"] = map[string]any{"ids": map[string]any{"imdb": id}}
	}

	err := c.call(ctx, http.MethodPost, "/scrobble/"+status.String(), true, body, nil)
	if err != nil {
		return fmt.Errorf("scrobbling %s %s: %w", mediaType, id, err)
	}
	return nil
}

// WatchedIDs implements app.Scrobbler. For episodes the id is the tvdb id of
// each watched episode, resolved show by show; the call blocks until the whole
// history is walked.
func (c *Client) WatchedIDs(ctx context.Context, mediaType model.MediaType) ([]string, error) {
	var raw json.RawMessage
	err := c.get(ctx, "/sync/watched/"+syncType(mediaType), true, &raw)
	if err != nil {
		return nil, fmt.Errorf("loading watched %s: %w", mediaType, err)
	}

	var ids []string
	doc := gjson.ParseBytes(raw)
	if mediaType == model.Episodes {
		doc.ForEach(func(_, entry gjson.Result) bool {
			entry.Get("seasons").ForEach(func(_, season gjson.Result) bool {
				season.Get("episodes").ForEach(func(_, episode gjson.Result) bool {
					if tvdb := episode.Get("ids.tvdb"); tvdb.Exists() {
						ids = append(ids, tvdb.String())
					}
					return true
				})
				return true
			})
			return true
		})
		return ids, nil
	}

	field := "movie.ids.imdb"
	if mediaType == model.Shows || mediaType == model.Animes {
		field = "show.ids.imdb"
	}
	doc.ForEach(func(_, entry gjson.Result) bool {
		if id := entry.Get(field); id.Exists() {
			ids = append(ids, id.String())
		}
		return true
	})
	return ids, nil
}

// PlaybackProgress implements app.Scrobbler. Progress is 0-100 on the wire and
// 0-1 locally.
func (c *Client) PlaybackProgress(ctx context.Context, mediaType model.MediaType) (map[string]float32, error) {
	kind := "episodes"
	if mediaType == model.Movies {
		kind = "movies"
	}
	var raw json.RawMessage
	err := c.get(ctx, "/sync/playback/"+kind, true, &raw)
	if err != nil {
		return nil, fmt.Errorf("loading playback progress for %s: %w", mediaType, err)
	}

	field := "movie.ids.imdb"
	if mediaType == model.Episodes {
		field = "episode.ids.tvdb"
	}

	progress := map[string]float32{}
	gjson.ParseBytes(raw).ForEach(func(_, entry gjson.Result) bool {
		id := entry.Get(field)
		if id.Exists() {
			progress[id.String()] = float32(entry.Get("progress").Float()) / 100
		}
		return true
	})
	return progress, nil
}

// RemoveFromHistory implements app.Scrobbler.
func (c *Client) RemoveFromHistory(ctx context.Context, mediaType model.MediaType, id string) error {
	var body map[string]any
	switch mediaType {
	case model.Episodes:
		tvdb, err := strconv.Atoi(id)
		if err != nil {
			return fmt.Errorf("episode removal needs a numeric tvdb id, got %q: %w", id, err)
		}
		body = map[string]any{"episodes": []any{map[string]any{"ids": map[string]any{"tvdb": tvdb}}}}
	default:
		body = map[string]any{"movies": []any{map[string]any{"ids": map[string]any{"imdb": id}}}}
	}

	err := c.call(ctx, http.MethodPost, "/sync/history/remove", true, body, nil)
	if err != nil {
		return fmt.Errorf("removing %s %s from history: %w", mediaType, id, err)
	}
	return nil
}

func syncType(mediaType model.MediaType) string {
	switch mediaType {
	case model.Movies:
		return "movies"
	default:
		return "shows"
	}
}

func imageURL(img gjson.Result) string {
	url := img.String()
	if url == "" {
		return ""
	}
	return "https://" + url
}
