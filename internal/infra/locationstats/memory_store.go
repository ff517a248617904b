package locationstats

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/yanqian/airquality-advisor/internal/domain/airquality"
)

type locationCount struct {
	display string
	count   int64
}

// MemoryStore counts assessed locations in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	locations map[string]*locationCount
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{locations: make(map[string]*locationCount)}
}

// Increment bumps the counter for canonical. The first non-empty display name is kept.
func (s *MemoryStore) Increment(_ context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.locations[canonical]
	if !ok {
		entry = &locationCount{}
		s.locations[canonical] = entry
	}
	entry.count++
	if entry.display == "" {
		entry.display = display
	}
	return nil
}

// Top returns up to limit locations, highest count first and ties by name.
func (s *MemoryStore) Top(_ context.Context, limit int) ([]airquality.TrendingLocation, error) {
	s.mu.RLock()
	items := make([]airquality.TrendingLocation, 0, len(s.locations))
	for canonical, entry := range s.locations {
		location := entry.display
		if location == "" {
			location = canonical
		}
		items = append(items, airquality.TrendingLocation{Location: location, Count: entry.count})
	}
	s.mu.RUnlock()

	slices.SortFunc(items, func(a, b airquality.TrendingLocation) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Location, b.Location)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var _ airquality.LocationStats = (*MemoryStore)(nil)
