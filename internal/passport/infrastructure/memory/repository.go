package memory

import (
	"context"
	"errors"
	"sync"

	passport "battery-passport/internal/passport/domain"
)

// BatteryRepository is an in-memory record store for tests and demos. It
// mirrors the Postgres semantics: inserts never overwrite, batches are
// all-or-nothing, Get returns (nil, nil) on a miss.
type BatteryRepository struct {
	mu    sync.RWMutex
	data  map[string]passport.BatteryRecord
	order []string
}

// NewBatteryRepository constructs a repository.
func NewBatteryRepository() *BatteryRepository {
	return &BatteryRepository{data: make(map[string]passport.BatteryRecord)}
}

// Insert stores a record, failing on id collision.
func (r *BatteryRepository) Insert(ctx context.Context, record *passport.BatteryRecord) error {
	_ = ctx
	if record == nil {
		return errors.New("battery repo: nil record")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[record.ID]; exists {
		return passport.ErrDuplicateID
	}
	r.data[record.ID] = *record
	r.order = append(r.order, record.ID)
	return nil
}

// InsertBatch stores all records or none of them.
func (r *BatteryRepository) InsertBatch(ctx context.Context, records []passport.BatteryRecord) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range records {
		if _, exists := r.data[records[i].ID]; exists {
			return passport.ErrDuplicateID
		}
	}
	for i := range records {
		r.data[records[i].ID] = records[i]
		r.order = append(r.order, records[i].ID)
	}
	return nil
}

// Get fetches by exact id.
func (r *BatteryRepository) Get(ctx context.Context, id string) (*passport.BatteryRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// List returns all records in insertion order.
func (r *BatteryRepository) List(ctx context.Context) ([]passport.BatteryRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]passport.BatteryRecord, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.data[id])
	}
	return result, nil
}

// Count reports stored records, for assertion convenience.
func (r *BatteryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
