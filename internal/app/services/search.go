package services

import (
	"context"
	"sync"
	"time"

	"github.com/quintans/faults"

	"github.com/streamkit/popcorn/internal/app"
	"github.com/streamkit/popcorn/internal/lib/timers"
)

const debounceDelay = 250 * time.Millisecond

// Search fans a free-text query out over every catalog provider. Keystroke
// driven callers go through Debounced, which coalesces bursts so only the
// last query in a quarter-second window hits the wire.
type Search struct {
	providers []app.CatalogSearcher

	mu       sync.Mutex
	debounce *timers.Debounce
}

func NewSearch(providers ...app.CatalogSearcher) *Search {
	return &Search{providers: providers}
}

// SearchResult is the outcome for one provider. Exactly one result per
// provider is delivered, failed ones with Err set.
type SearchResult struct {
	Provider string
	Items    []app.CatalogItem
	Err      error
}

// Search queries all providers concurrently and closes the channel once every
// provider has answered.
func (s *Search) Search(ctx context.Context, query string) <-chan SearchResult {
	ch := make(chan SearchResult, len(s.providers))
	var wg sync.WaitGroup
	for _, p := range s.providers {
		wg.Add(1)
		go func(p app.CatalogSearcher) {
			defer wg.Done()
			items, err := p.SearchCatalog(ctx, query, 1)
			if err != nil {
				ch <- SearchResult{Provider: p.Slug(), Err: faults.Errorf("searching %s: %w", p.Slug(), err)}
				return
			}
			ch <- SearchResult{Provider: p.Slug(), Items: items}
		}(p)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()
	return ch
}

// Debounced schedules the query, resetting the window if one is already
// pending, and invokes fn with the collected results when the window expires.
func (s *Search) Debounced(ctx context.Context, query string, fn func([]SearchResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = timers.NewDebounce(debounceDelay, func() {
		var results []SearchResult
		for r := range s.Search(ctx, query) {
			results = append(results, r)
		}
		fn(results)
	})
}
