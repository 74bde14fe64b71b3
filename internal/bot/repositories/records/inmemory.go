package records

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dprokopov/autofilterbot/internal/bot/models"
	"github.com/dprokopov/autofilterbot/internal/common"
)

// InMemoryRepository keeps records in a map guarded by a mutex, preserving
// insertion order for deterministic search results.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*models.FileRecord
	order []string
}

// NewInMemoryRepository constructs an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[string]*models.FileRecord)}
}

// Upsert inserts or updates a record by ID. Updates keep the original
// CreatedAt so iteration order never changes for an existing record.
func (r *InMemoryRepository) Upsert(ctx context.Context, rec *models.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[rec.ID]; ok {
		existing.TransmitHandle = rec.TransmitHandle
		existing.Name = rec.Name
		existing.Kind = rec.Kind
		existing.Caption = rec.Caption
		return nil
	}

	stored := *rec
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.items[rec.ID] = &stored
	r.order = append(r.order, rec.ID)
	return nil
}

// FindByID returns a copy of the record, or common.ErrorNotFound.
func (r *InMemoryRepository) FindByID(ctx context.Context, id string) (*models.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *item
	return &cp, nil
}

// Search scans records in insertion order and returns up to limit copies
// whose name contains substring, case-insensitively.
func (r *InMemoryRepository) Search(ctx context.Context, substring string, limit int) ([]*models.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(substring)

	var result []*models.FileRecord
	for _, id := range r.order {
		if limit >= 0 && len(result) >= limit {
			break
		}
		item := r.items[id]
		if strings.Contains(strings.ToLower(item.Name), needle) {
			cp := *item
			result = append(result, &cp)
		}
	}
	return result, nil
}

// Count returns the total number of records.
func (r *InMemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}
