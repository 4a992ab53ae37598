package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastMetadataFromMovie(t *testing.T) {
	movie := Movie{Title: "Inception", PosterURL: "https://img/poster.jpg"}
	sub := &Subtitle{Language: "English"}

	meta := CastMetadataFromMovie(movie, sub, 2*time.Hour, 10*time.Minute, "http://host/stream", "/assets")
	assert.Equal(t, "Inception", meta.Title)
	assert.Equal(t, "video/mp4", meta.ContentType)
	assert.Equal(t, "https://img/poster.jpg", meta.ImageURL)
	assert.Equal(t, sub, meta.Subtitle)
}

func TestCastMetadataFromEpisode(t *testing.T) {
	show := &Show{Title: "Breaking Bad", PosterURL: "https://img/show.jpg"}
	episode := Episode{Title: "Pilot", PosterURL: "https://img/ep.jpg", Show: show}

	meta, err := CastMetadataFromEpisode(episode, nil, time.Hour, 0, "http://host/stream", "/assets")
	require.NoError(t, err)
	assert.Equal(t, "Pilot", meta.Title)
	assert.Equal(t, "video/x-matroska", meta.ContentType)
	// the show poster is used, not the episode screenshot
	assert.Equal(t, "https://img/show.jpg", meta.ImageURL)
}

func TestCastMetadataFromEpisodeWithoutShow(t *testing.T) {
	_, err := CastMetadataFromEpisode(Episode{Title: "Orphan"}, nil, 0, 0, "", "")
	require.ErrorIs(t, err, ErrNoShow)
}
