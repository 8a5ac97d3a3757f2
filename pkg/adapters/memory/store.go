package memory

import (
	"context"
	"sync"

	"github.com/aretw0/xcallback/pkg/domain"
)

// Journal implements ports.Journal in memory.
// Safe for concurrent use.
type Journal struct {
	data map[string]domain.PendingRecord
	mu   sync.RWMutex
}

// NewJournal creates a new in-memory journal.
func NewJournal() *Journal {
	return &Journal{
		data: make(map[string]domain.PendingRecord),
	}
}

// Save records the pending request.
func (j *Journal) Save(ctx context.Context, rec domain.PendingRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.data[rec.ID] = rec
	return nil
}

// Load retrieves a record by id.
func (j *Journal) Load(ctx context.Context, id string) (domain.PendingRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rec, ok := j.data[id]
	if !ok {
		return domain.PendingRecord{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

// Delete removes the record.
func (j *Journal) Delete(ctx context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.data, id)
	return nil
}

// List returns recorded ids.
func (j *Journal) List(ctx context.Context) ([]string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	ids := make([]string, 0, len(j.data))
	for id := range j.data {
		ids = append(ids, id)
	}
	return ids, nil
}
