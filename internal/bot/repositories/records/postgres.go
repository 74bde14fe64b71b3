// Package records provides storage backends for indexed file records:
// a PostgreSQL repository used in production and an in-memory one used
// in tests and local runs.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dprokopov/autofilterbot/internal/bot/models"
	"github.com/dprokopov/autofilterbot/internal/common"
	"github.com/dprokopov/autofilterbot/internal/dbx"
)

// PostgresRepository implements record storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or updates a record by id. On conflict only the mutable
// fields (transmit_handle, name, kind, caption) are replaced; created_at
// keeps the first-insertion value so iteration order stays stable.
func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.FileRecord) error {
	query := `
		INSERT INTO files (id, transmit_handle, name, kind, caption)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			transmit_handle = EXCLUDED.transmit_handle,
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			caption = EXCLUDED.caption;
	`
	res, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.TransmitHandle, rec.Name, string(rec.Kind), rec.Caption)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// FindByID returns the record with the given id, or common.ErrorNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.FileRecord, error) {
	query := `
		SELECT id, transmit_handle, name, kind, caption, created_at
		FROM files WHERE id = $1
	`
	var item models.FileRecord
	var kind string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.TransmitHandle, &item.Name, &kind, &item.Caption, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	item.Kind = models.Kind(kind)
	return &item, nil
}

// likeEscaper neutralizes LIKE metacharacters in user input so the query
// is always a plain substring match.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns up to limit records whose name contains substring,
// case-insensitively, ordered by insertion (created_at, id).
func (r *PostgresRepository) Search(ctx context.Context, substring string, limit int) ([]*models.FileRecord, error) {
	query := `
		SELECT id, transmit_handle, name, kind, caption, created_at
		FROM files
		WHERE name ILIKE $1
		ORDER BY created_at, id
		LIMIT $2
	`
	pattern := "%" + likeEscaper.Replace(substring) + "%"
	rows, err := r.db.QueryContext(ctx, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search files: %w", err)
	}
	defer rows.Close()

	var result []*models.FileRecord
	for rows.Next() {
		var item models.FileRecord
		var kind string
		if err := rows.Scan(
			&item.ID, &item.TransmitHandle, &item.Name, &kind, &item.Caption, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.Kind = models.Kind(kind)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the total number of indexed records.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
