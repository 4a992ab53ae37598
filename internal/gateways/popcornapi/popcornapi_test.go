package popcornapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/popcorn/internal/app"
)

type busSpy struct {
	messages []app.Message
}

func (b *busSpy) Publish(m app.Message) {
	b.messages = append(b.messages, m)
}

const listPayload = `[
	{
		"imdb_id": "tt0903747",
		"title": "Breaking Bad",
		"year": "2008",
		"images": {"poster": "https://img/original/bb.jpg"},
		"rating": {"percentage": 95}
	},
	{
		"imdb_id": "",
		"title": "Broken Row"
	}
]`

const detailPayload = `{
	"imdb_id": "tt0903747",
	"title": "Breaking Bad",
	"year": "2008",
	"images": {"poster": "https://img/original/bb.jpg"},
	"rating": {"percentage": 95},
	"genres": ["Crime", "Drama"],
	"status": "ended",
	"synopsis": "A chemistry teacher turns to crime.",
	"episodes": [
		{
			"season": 2, "episode": 1, "title": "Seven Thirty-Seven",
			"first_aired": 1236643200, "tvdb_id": 438995,
			"torrents": {
				"0": {"url": "https://t/placeholder", "seeds": 1, "peers": 1},
				"480p": {"url": "https://t/480", "seeds": 10, "peers": 2},
				"720p": {"url": "https://t/720", "seeds": 50, "peers": 5}
			}
		},
		{
			"season": 1, "episode": 2, "title": "Cat's in the Bag...",
			"first_aired": 1201503600, "tvdb_id": 349233,
			"torrents": {"720p": {"url": "https://t/s1e2", "seeds": 5, "peers": 1}}
		},
		{
			"season": 1, "episode": 1, "title": "Pilot",
			"first_aired": 1200898800, "tvdb_id": 349232,
			"torrents": {"720p": {"url": "https://t/s1e1", "seeds": 5, "peers": 1}}
		}
	]
}`

func TestLoad(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(listPayload))
	}))
	defer srv.Close()

	bus := &busSpy{}
	c := New(bus)
	c.client.BaseURL = srv.URL

	shows, err := c.Load(context.Background(), 3, Rating, "Game Show", "bad")
	require.NoError(t, err)

	assert.Equal(t, "/shows/3", gotPath)
	assert.Equal(t, "rating", gotQuery["sort"])
	assert.Equal(t, "game-show", gotQuery["genre"])
	assert.Equal(t, "bad", gotQuery["keywords"])

	// the row without an imdb id is dropped
	require.Len(t, shows, 1)
	s := shows[0]
	assert.Equal(t, "tt0903747", s.ImdbID)
	assert.Equal(t, "2008", s.Year)
	assert.Equal(t, "https://img/thumb/bb.jpg", s.PosterURL)
	assert.InDelta(t, 4.75, s.Rating, 0.001)

	assert.Empty(t, bus.messages)
}

func TestShowDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/show/tt0903747", r.URL.Path)
		w.Write([]byte(detailPayload))
	}))
	defer srv.Close()

	c := New(&busSpy{})
	c.client.BaseURL = srv.URL

	detail, err := c.ShowDetail(context.Background(), "tt0903747")
	require.NoError(t, err)

	assert.Equal(t, []string{"Crime", "Drama"}, detail.Genres)
	assert.Equal(t, "ended", detail.Status)
	assert.Equal(t, []int{1, 2}, detail.Seasons)

	// season then episode, ascending
	require.Len(t, detail.Episodes, 3)
	assert.Equal(t, "Pilot", detail.Episodes[0].Title)
	assert.Equal(t, "Cat's in the Bag...", detail.Episodes[1].Title)
	assert.Equal(t, "Seven Thirty-Seven", detail.Episodes[2].Title)
	assert.Equal(t, "349232", detail.Episodes[0].TvdbID)
	assert.False(t, detail.Episodes[0].Aired.IsZero())

	// the "0" placeholder is dropped and qualities come highest first
	torrents := detail.Episodes[2].Torrents
	require.Len(t, torrents, 2)
	assert.Equal(t, "720p", torrents[0].Quality)
	assert.Equal(t, "480p", torrents[1].Quality)
}

func TestShowDetailFailurePublishesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	bus := &busSpy{}
	c := New(bus)
	c.client.BaseURL = srv.URL

	_, err := c.ShowDetail(context.Background(), "tt0000000")
	require.Error(t, err)
	require.Len(t, bus.messages, 1)
	assert.Equal(t, "network-error", bus.messages[0].Kind())
}
