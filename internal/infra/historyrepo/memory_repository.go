package historyrepo

import (
	"context"
	"sync"

	"github.com/yanqian/airquality-advisor/internal/domain/airquality"
)

// MemoryRepository keeps a bounded assessment history in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	capacity int
	records  []airquality.AssessmentRecord
}

// NewMemoryRepository constructs a repository keeping at most capacity records.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = 500
	}
	return &MemoryRepository{capacity: capacity}
}

// Append implements airquality.HistoryRepository.
func (r *MemoryRepository) Append(_ context.Context, record airquality.AssessmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	if overflow := len(r.records) - r.capacity; overflow > 0 {
		r.records = append([]airquality.AssessmentRecord(nil), r.records[overflow:]...)
	}
	return nil
}

// ListRecent returns the newest records first.
func (r *MemoryRepository) ListRecent(_ context.Context, limit int) ([]airquality.AssessmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.records) {
		limit = len(r.records)
	}
	out := make([]airquality.AssessmentRecord, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

var _ airquality.HistoryRepository = (*MemoryRepository)(nil)
