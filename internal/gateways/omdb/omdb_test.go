package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Cowboy Bebop", r.URL.Query().Get("t"))
		assert.Equal(t, "key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{
			"Response": "True",
			"imdbID": "tt0213338",
			"Genre": "Animation, Action, Sci-Fi",
			"Year": "1998-1999"
		}`))
	}))
	defer srv.Close()

	c := New("key")
	c.client.BaseURL = srv.URL

	meta, err := c.Lookup(context.Background(), "Cowboy Bebop")
	require.NoError(t, err)
	assert.Equal(t, "tt0213338", meta.ImdbID)
	assert.Equal(t, []string{"Animation", "Action", "Sci-Fi"}, meta.Genres)
	assert.Equal(t, "1998", meta.Year)
}

func TestLookupMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "False", "Error": "Movie not found!"}`))
	}))
	defer srv.Close()

	c := New("key")
	c.client.BaseURL = srv.URL

	_, err := c.Lookup(context.Background(), "Nope")
	require.Error(t, err)
	assert.ErrorContains(t, err, "Movie not found!")
}

func TestFirstYear(t *testing.T) {
	assert.Equal(t, "2013", firstYear("2013-2015"))
	assert.Equal(t, "2013", firstYear("2013–2015"))
	assert.Equal(t, "2020", firstYear("2020"))
}

func TestSplitGenres(t *testing.T) {
	assert.Equal(t, []string{"Crime", "Drama"}, splitGenres("Crime, Drama"))
	assert.Nil(t, splitGenres("N/A"))
	assert.Nil(t, splitGenres(""))
}
