package services

import (
	"context"
	"log/slog"

	"github.com/streamkit/popcorn/internal/app"
	"github.com/streamkit/popcorn/internal/model"
)

// Details enriches catalog items with remote metadata and subtitles. Each
// call delivers two events on the returned channel: the item with artwork and
// synopsis filled in as soon as the metadata answers, then the same item with
// its subtitle list. A failed enrichment step degrades to the fields already
// known instead of failing the chain.
type Details struct {
	metadata  app.MetadataClient
	subtitles app.SubtitlesClient
}

func NewDetails(metadata app.MetadataClient, subtitles app.SubtitlesClient) *Details {
	return &Details{
		metadata:  metadata,
		subtitles: subtitles,
	}
}

// Show fills in the synopsis, status, backdrop and rating a listing row
// lacks. Fields already present are kept when the lookup fails.
func (d *Details) Show(ctx context.Context, show model.Show) model.Show {
	meta, err := d.metadata.ShowMeta(ctx, show.ImdbID)
	if err != nil {
		slog.Warn("show metadata lookup failed", "imdb", show.ImdbID, "error", err)
		return show
	}

	if show.Synopsis == "" {
		show.Synopsis = meta.Synopsis
	}
	if show.Status == "" {
		show.Status = meta.Status
	}
	if meta.BackgroundURL != "" {
		show.PosterURL = meta.BackgroundURL
	}
	if show.Rating == 0 {
		show.Rating = meta.Rating
	}
	return show
}

type MovieEvent struct {
	Movie model.Movie
}

func (d *Details) Movie(ctx context.Context, movie model.Movie, withSubtitles bool) <-chan MovieEvent {
	out := make(chan MovieEvent, 2)
	go func() {
		defer close(out)

		meta, err := d.metadata.MovieMeta(ctx, movie.ImdbID)
		if err != nil {
			slog.Warn("movie metadata lookup failed", "imdb", movie.ImdbID, "error", err)
		} else if meta.BackgroundURL != "" {
			movie.PosterURL = meta.BackgroundURL
		}
		out <- MovieEvent{Movie: movie}

		if !withSubtitles {
			return
		}
		movie.Subtitles = d.searchSubtitles(ctx, app.SubtitleQuery{ImdbID: movie.ImdbID})
		out <- MovieEvent{Movie: movie}
	}()
	return out
}

type EpisodeEvent struct {
	Episode model.Episode
}

func (d *Details) Episode(ctx context.Context, episode model.Episode, withSubtitles bool) <-chan EpisodeEvent {
	out := make(chan EpisodeEvent, 2)
	go func() {
		defer close(out)

		var episodeImdb string
		if episode.Show != nil {
			meta, err := d.metadata.EpisodeMeta(ctx, episode.Show.ImdbID, episode.Season, episode.Episode)
			if err != nil {
				slog.Warn("episode metadata lookup failed",
					"show", episode.Show.ImdbID, "season", episode.Season, "episode", episode.Episode, "error", err)
			} else {
				episodeImdb = meta.ImdbID
				if meta.ImageURL != "" {
					episode.PosterURL = meta.ImageURL
				}
				if episode.Overview == "" {
					episode.Overview = meta.Overview
				}
			}
		}
		out <- EpisodeEvent{Episode: episode}

		if !withSubtitles {
			return
		}
		query := app.SubtitleQuery{ImdbID: episodeImdb}
		if episodeImdb == "" && episode.Show != nil {
			query = app.SubtitleQuery{
				Query:   episode.Show.Title,
				Season:  episode.Season,
				Episode: episode.Episode,
			}
		}
		episode.Subtitles = d.searchSubtitles(ctx, query)
		out <- EpisodeEvent{Episode: episode}
	}()
	return out
}

func (d *Details) searchSubtitles(ctx context.Context, query app.SubtitleQuery) []model.Subtitle {
	token, err := d.subtitles.Login(ctx)
	if err != nil {
		slog.Warn("subtitle login failed", "error", err)
		return nil
	}
	query.Token = token
	subtitles, err := d.subtitles.Search(ctx, query)
	if err != nil {
		slog.Warn("subtitle search failed", "error", err)
		return nil
	}
	return subtitles
}
