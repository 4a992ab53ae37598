package model

import (
	"errors"
	"time"

	"github.com/quintans/faults"
)

var ErrNoShow = errors.New("episode has no parent show")

// CastMetadata is what gets handed to an external cast/mirroring session at
// playback start. The core only builds it; driving the session is someone
// else's job.
type CastMetadata struct {
	Title         string
	ImageURL      string
	ContentType   string
	Duration      time.Duration
	Subtitle      *Subtitle
	StartPosition time.Duration
	URL           string
	AssetsDir     string
}

func CastMetadataFromMovie(movie Movie, subtitle *Subtitle, duration, startPosition time.Duration, url, assetsDir string) CastMetadata {
	return CastMetadata{
		Title:         movie.Title,
		ImageURL:      movie.PosterURL,
		ContentType:   "video/mp4",
		Duration:      duration,
		Subtitle:      subtitle,
		StartPosition: startPosition,
		URL:           url,
		AssetsDir:     assetsDir,
	}
}

// CastMetadataFromEpisode uses the parent show's poster for the session image.
func CastMetadataFromEpisode(episode Episode, subtitle *Subtitle, duration, startPosition time.Duration, url, assetsDir string) (CastMetadata, error) {
	if episode.Show == nil {
		return CastMetadata{}, faults.Errorf("%w: %s", ErrNoShow, episode.Title)
	}

	return CastMetadata{
		Title:         episode.Title,
		ImageURL:      episode.Show.PosterURL,
		ContentType:   "video/x-matroska",
		Duration:      duration,
		Subtitle:      subtitle,
		StartPosition: startPosition,
		URL:           url,
		AssetsDir:     assetsDir,
	}, nil
}
