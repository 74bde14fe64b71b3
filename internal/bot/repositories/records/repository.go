package records

import (
	"context"

	"github.com/dprokopov/autofilterbot/internal/bot/models"
)

// Repository is the durable store of indexed file metadata.
type Repository interface {
	// Upsert inserts or updates a record by ID. Re-indexing the same file
	// updates its mutable fields in place without creating a duplicate.
	Upsert(ctx context.Context, rec *models.FileRecord) error

	// FindByID returns the record with the given identity, or
	// common.ErrorNotFound when absent.
	FindByID(ctx context.Context, id string) (*models.FileRecord, error)

	// Search returns records whose name contains the substring,
	// case-insensitively, in a deterministic order, at most limit entries.
	Search(ctx context.Context, substring string, limit int) ([]*models.FileRecord, error)

	// Count returns the total number of indexed records.
	Count(ctx context.Context) (int64, error)
}
