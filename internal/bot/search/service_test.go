package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dprokopov/autofilterbot/internal/bot/models"
	"github.com/dprokopov/autofilterbot/internal/bot/repositories/records"
	"github.com/dprokopov/autofilterbot/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, names ...string) *records.InMemoryRepository {
	t.Helper()
	repo := records.NewInMemoryRepository()
	for i, name := range names {
		err := repo.Upsert(context.Background(), &models.FileRecord{
			ID:   fmt.Sprintf("f%d", i),
			Name: name,
			Kind: models.KindVideo,
		})
		require.NoError(t, err)
	}
	return repo
}

func TestSearch_EmptyQueryDoesNotTouchStore(t *testing.T) {
	svc := NewService(&countingRepo{}, 20)

	_, err := svc.Search(context.Background(), "   ")
	require.ErrorIs(t, err, common.ErrorEmptyQuery)
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	repo := seeded(t, "Dune.Part.Two.mkv")
	svc := NewService(repo, 20)

	got, err := svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dune.Part.Two.mkv", got[0].Name)
}

func TestSearch_TrimsQuery(t *testing.T) {
	repo := seeded(t, "Matrix.mp4")
	svc := NewService(repo, 20)

	got, err := svc.Search(context.Background(), "  matrix  ")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSearch_ZeroResultsIsNotAnError(t *testing.T) {
	repo := seeded(t, "Matrix.mp4")
	svc := NewService(repo, 20)

	got, err := svc.Search(context.Background(), "alien")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_BoundedByPageCap(t *testing.T) {
	names := make([]string, 50)
	for i := range names {
		names[i] = fmt.Sprintf("Matrix.%02d.mp4", i)
	}
	repo := seeded(t, names...)
	svc := NewService(repo, 20)

	got, err := svc.Search(context.Background(), "matrix")
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestSearch_StoreErrorIsWrapped(t *testing.T) {
	svc := NewService(&failingRepo{}, 20)

	_, err := svc.Search(context.Background(), "matrix")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

// countingRepo fails the test if any store method is reached.
type countingRepo struct {
	records.Repository
}

func (c *countingRepo) Search(ctx context.Context, substring string, limit int) ([]*models.FileRecord, error) {
	return nil, errors.New("store must not be touched for an empty query")
}

type failingRepo struct {
	records.Repository
}

func (f *failingRepo) Search(ctx context.Context, substring string, limit int) ([]*models.FileRecord, error) {
	return nil, errors.New("store unavailable")
}
