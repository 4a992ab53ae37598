package services

import (
	"context"
	"log/slog"
	"slices"

	"github.com/quintans/faults"

	"github.com/streamkit/popcorn/internal/app"
	"github.com/streamkit/popcorn/internal/lib/safe"
	"github.com/streamkit/popcorn/internal/model"
)

// Watchlist tracks what the user has seen for one media type. The local copy
// answers immediately and is the source of truth for the UI; the remote
// history is best effort and reconciled wholesale when it answers.
type Watchlist struct {
	mediaType model.MediaType
	repo      Repository
	scrobbler app.Scrobbler
	ids       *safe.Safe[[]string]
	progress  *safe.Safe[map[string]float32]
}

func NewWatchlist(mediaType model.MediaType, repo Repository, scrobbler app.Scrobbler) (*Watchlist, error) {
	ids, err := repo.WatchedIDs(mediaType)
	if err != nil {
		return nil, faults.Errorf("loading watched %s: %w", mediaType, err)
	}
	progress, err := repo.Progress(mediaType)
	if err != nil {
		return nil, faults.Errorf("loading progress for %s: %w", mediaType, err)
	}

	return &Watchlist{
		mediaType: mediaType,
		repo:      repo,
		scrobbler: scrobbler,
		ids:       safe.New(ids),
		progress:  safe.New(progress),
	}, nil
}

func (w *Watchlist) IsWatched(id string) bool {
	return slices.Contains(w.ids.Get(), id)
}

// ToggleWatched flips the watched state locally and persists it, then mirrors
// the change remotely. A remote failure is logged and the local state kept;
// the next wholesale sync reconciles.
func (w *Watchlist) ToggleWatched(ctx context.Context, id string) error {
	adding := !w.IsWatched(id)
	w.ids.Update(func(ids []string) []string {
		if adding {
			return append(ids, id)
		}
		return slices.DeleteFunc(ids, func(v string) bool { return v == id })
	})
	if err := w.repo.SaveWatchedIDs(w.mediaType, w.ids.Get()); err != nil {
		return faults.Errorf("saving watched %s: %w", w.mediaType, err)
	}

	var err error
	if adding {
		err = w.scrobbler.Scrobble(ctx, id, 1, w.mediaType, model.Finished)
	} else {
		err = w.scrobbler.RemoveFromHistory(ctx, w.mediaType, id)
	}
	if err != nil {
		slog.Warn("remote watched update failed, keeping local state",
			"media", w.mediaType, "id", id, "error", err)
	}
	return nil
}

// Watched streams up to two snapshots on the returned channel: the local copy
// right away, then the remote history, which replaces the local copy in full.
// The channel is closed when both are delivered or the remote fails.
func (w *Watchlist) Watched(ctx context.Context) <-chan []string {
	out := make(chan []string, 2)
	out <- slices.Clone(w.ids.Get())

	go func() {
		defer close(out)

		remote, err := w.scrobbler.WatchedIDs(ctx, w.mediaType)
		if err != nil {
			slog.Warn("remote watched sync failed", "media", w.mediaType, "error", err)
			return
		}

		w.ids.Set(remote)
		if err := w.repo.SaveWatchedIDs(w.mediaType, remote); err != nil {
			slog.Warn("persisting synced watched ids failed", "media", w.mediaType, "error", err)
		}
		out <- slices.Clone(remote)
	}()

	return out
}

// CurrentProgress reports the resume position for an item, 0 when unknown.
func (w *Watchlist) CurrentProgress(id string) float32 {
	return w.progress.Get()[id]
}

// SaveProgress records a resume position locally and reports it remotely as a
// paused scrobble.
func (w *Watchlist) SaveProgress(ctx context.Context, id string, progress float32) error {
	w.progress.Update(func(m map[string]float32) map[string]float32 {
		if m == nil {
			m = map[string]float32{}
		}
		m[id] = progress
		return m
	})
	if err := w.repo.SaveProgress(w.mediaType, w.progress.Get()); err != nil {
		return faults.Errorf("saving progress for %s: %w", w.mediaType, err)
	}

	if err := w.scrobbler.Scrobble(ctx, id, progress, w.mediaType, model.Paused); err != nil {
		slog.Warn("remote progress update failed", "media", w.mediaType, "id", id, "error", err)
	}
	return nil
}

// SyncProgress replaces the local resume positions with the remote ones.
func (w *Watchlist) SyncProgress(ctx context.Context) error {
	remote, err := w.scrobbler.PlaybackProgress(ctx, w.mediaType)
	if err != nil {
		return faults.Errorf("syncing progress for %s: %w", w.mediaType, err)
	}

	w.progress.Set(remote)
	if err := w.repo.SaveProgress(w.mediaType, remote); err != nil {
		return faults.Errorf("persisting synced progress for %s: %w", w.mediaType, err)
	}
	return nil
}
