package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/popcorn/internal/model"
)

type repoStub struct {
	mu       sync.Mutex
	watched  map[model.MediaType][]string
	progress map[model.MediaType]map[string]float32
	saves    int
}

func newRepoStub() *repoStub {
	return &repoStub{
		watched:  map[model.MediaType][]string{},
		progress: map[model.MediaType]map[string]float32{},
	}
}

func (r *repoStub) LoadSettings() (*model.Settings, error) {
	return model.NewSettings(), nil
}

func (r *repoStub) SaveSettings(*model.Settings) error {
	return nil
}

func (r *repoStub) WatchedIDs(mediaType model.MediaType) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.watched[mediaType], nil
}

func (r *repoStub) SaveWatchedIDs(mediaType model.MediaType, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watched[mediaType] = ids
	r.saves++
	return nil
}

func (r *repoStub) Progress(mediaType model.MediaType) (map[string]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress[mediaType], nil
}

func (r *repoStub) SaveProgress(mediaType model.MediaType, progress map[string]float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress[mediaType] = progress
	return nil
}

type scrobblerStub struct {
	mu        sync.Mutex
	watched   []string
	progress  map[string]float32
	scrobbles []string
	removals  []string
	fail      bool
}

func (s *scrobblerStub) Scrobble(_ context.Context, id string, progress float32, _ model.MediaType, status model.ScrobbleStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("remote down")
	}
	s.scrobbles = append(s.scrobbles, id+":"+status.String())
	return nil
}

func (s *scrobblerStub) WatchedIDs(context.Context, model.MediaType) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("remote down")
	}
	return s.watched, nil
}

func (s *scrobblerStub) PlaybackProgress(context.Context, model.MediaType) (map[string]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("remote down")
	}
	return s.progress, nil
}

func (s *scrobblerStub) RemoveFromHistory(_ context.Context, _ model.MediaType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("remote down")
	}
	s.removals = append(s.removals, id)
	return nil
}

func TestToggleWatchedTwiceRestoresState(t *testing.T) {
	repo := newRepoStub()
	scrobbler := &scrobblerStub{}
	wl, err := NewWatchlist(model.Movies, repo, scrobbler)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, wl.ToggleWatched(ctx, "tt1375666"))
	assert.True(t, wl.IsWatched("tt1375666"))

	require.NoError(t, wl.ToggleWatched(ctx, "tt1375666"))
	assert.False(t, wl.IsWatched("tt1375666"))

	// one finished scrobble on add, one removal on remove
	assert.Equal(t, []string{"tt1375666:stop"}, scrobbler.scrobbles)
	assert.Equal(t, []string{"tt1375666"}, scrobbler.removals)
	assert.Equal(t, 2, repo.saves)
}

func TestToggleWatchedKeepsLocalOnRemoteFailure(t *testing.T) {
	repo := newRepoStub()
	wl, err := NewWatchlist(model.Movies, repo, &scrobblerStub{fail: true})
	require.NoError(t, err)

	require.NoError(t, wl.ToggleWatched(context.Background(), "tt1375666"))
	assert.True(t, wl.IsWatched("tt1375666"))

	stored, err := repo.WatchedIDs(model.Movies)
	require.NoError(t, err)
	assert.Equal(t, []string{"tt1375666"}, stored)
}

func TestWatchedStreamsLocalThenRemote(t *testing.T) {
	repo := newRepoStub()
	repo.watched[model.Movies] = []string{"local-only"}
	scrobbler := &scrobblerStub{watched: []string{"remote-1", "remote-2"}}
	wl, err := NewWatchlist(model.Movies, repo, scrobbler)
	require.NoError(t, err)

	var snapshots [][]string
	for ids := range wl.Watched(context.Background()) {
		snapshots = append(snapshots, ids)
	}

	// local copy first, then the remote history replacing it in full
	require.Len(t, snapshots, 2)
	assert.Equal(t, []string{"local-only"}, snapshots[0])
	assert.Equal(t, []string{"remote-1", "remote-2"}, snapshots[1])

	assert.False(t, wl.IsWatched("local-only"))
	assert.True(t, wl.IsWatched("remote-1"))
}

func TestWatchedRemoteFailureKeepsLocal(t *testing.T) {
	repo := newRepoStub()
	repo.watched[model.Movies] = []string{"local-only"}
	wl, err := NewWatchlist(model.Movies, repo, &scrobblerStub{fail: true})
	require.NoError(t, err)

	var snapshots [][]string
	for ids := range wl.Watched(context.Background()) {
		snapshots = append(snapshots, ids)
	}

	require.Len(t, snapshots, 1)
	assert.Equal(t, []string{"local-only"}, snapshots[0])
	assert.True(t, wl.IsWatched("local-only"))
}

func TestProgressRoundTrip(t *testing.T) {
	repo := newRepoStub()
	scrobbler := &scrobblerStub{}
	wl, err := NewWatchlist(model.Movies, repo, scrobbler)
	require.NoError(t, err)

	ctx := context.Background()
	assert.Zero(t, wl.CurrentProgress("tt1375666"))

	require.NoError(t, wl.SaveProgress(ctx, "tt1375666", 0.42))
	assert.InDelta(t, 0.42, wl.CurrentProgress("tt1375666"), 0.001)
	assert.Equal(t, []string{"tt1375666:pause"}, scrobbler.scrobbles)
}

func TestSyncProgressReplacesLocal(t *testing.T) {
	repo := newRepoStub()
	repo.progress[model.Movies] = map[string]float32{"stale": 0.9}
	scrobbler := &scrobblerStub{progress: map[string]float32{"tt1375666": 0.75}}
	wl, err := NewWatchlist(model.Movies, repo, scrobbler)
	require.NoError(t, err)

	require.NoError(t, wl.SyncProgress(context.Background()))
	assert.Zero(t, wl.CurrentProgress("stale"))
	assert.InDelta(t, 0.75, wl.CurrentProgress("tt1375666"), 0.001)
}

// guards against the stream hanging instead of closing
func TestWatchedChannelCloses(t *testing.T) {
	wl, err := NewWatchlist(model.Movies, newRepoStub(), &scrobblerStub{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for range wl.Watched(context.Background()) {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watched stream did not close")
	}
}
