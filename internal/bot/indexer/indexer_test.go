package indexer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dprokopov/autofilterbot/internal/bot/models"
	"github.com/dprokopov/autofilterbot/internal/bot/repositories/records"
	"github.com/dprokopov/autofilterbot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourceChannel int64 = -100987654321

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIndex_StoresFileFromSourceChannel(t *testing.T) {
	repo := records.NewInMemoryRepository()
	svc := NewService(repo, sourceChannel, discardLogger())
	ctx := context.Background()

	err := svc.Index(ctx, models.FilePosted{
		ChatID:         sourceChannel,
		UniqueID:       "u1",
		TransmitHandle: "abc",
		Name:           "Matrix.mp4",
		RawKind:        "video",
	})
	require.NoError(t, err)

	rec, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "abc", rec.TransmitHandle)
	assert.Equal(t, "Matrix.mp4", rec.Name)
	assert.Equal(t, models.KindVideo, rec.Kind)
}

func TestIndex_IgnoresUntrustedChannel(t *testing.T) {
	repo := records.NewInMemoryRepository()
	svc := NewService(repo, sourceChannel, discardLogger())
	ctx := context.Background()

	err := svc.Index(ctx, models.FilePosted{
		ChatID:         12345, // some private chat, not the source channel
		UniqueID:       "u1",
		TransmitHandle: "abc",
		Name:           "Matrix.mp4",
		RawKind:        "video",
	})
	require.NoError(t, err, "foreign posts are dropped, not an error")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "store contents must not change")
}

func TestIndex_ReindexingIsIdempotent(t *testing.T) {
	repo := records.NewInMemoryRepository()
	svc := NewService(repo, sourceChannel, discardLogger())
	ctx := context.Background()

	first := models.FilePosted{
		ChatID: sourceChannel, UniqueID: "u1", TransmitHandle: "abc",
		Name: "Matrix.mp4", RawKind: "video",
	}
	require.NoError(t, svc.Index(ctx, first))

	// Same file, reissued handle.
	second := first
	second.TransmitHandle = "abc-reissued"
	require.NoError(t, svc.Index(ctx, second))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rec, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "abc-reissued", rec.TransmitHandle)
}

func TestNormalize_EmptyNameGetsPlaceholder(t *testing.T) {
	rec := Normalize(models.FilePosted{
		ChatID: sourceChannel, UniqueID: "u1", TransmitHandle: "abc", RawKind: "video",
	})
	assert.Equal(t, "Video", rec.Name)

	rec = Normalize(models.FilePosted{
		ChatID: sourceChannel, UniqueID: "u2", TransmitHandle: "def", Name: "  ", RawKind: "document",
	})
	assert.Equal(t, "Document", rec.Name)
}

func TestNormalize_UnknownKindPreserved(t *testing.T) {
	rec := Normalize(models.FilePosted{
		ChatID: sourceChannel, UniqueID: "u1", TransmitHandle: "abc", RawKind: "sticker",
	})
	assert.Equal(t, models.KindUnknown, rec.Kind)
}

func TestNormalize_SynthesizedIDIsStable(t *testing.T) {
	ev := models.FilePosted{
		ChatID: sourceChannel, TransmitHandle: "abc", Name: "Matrix.mp4", RawKind: "video",
	}
	a := Normalize(ev)
	b := Normalize(ev)

	require.NotEmpty(t, a.ID)
	assert.Equal(t, a.ID, b.ID, "same handle must collapse to one record")
	assert.NotEqual(t, a.ID, "abc", "id is generated, not the raw handle")
}

type failingRepo struct {
	records.Repository
}

func (f *failingRepo) Upsert(ctx context.Context, rec *models.FileRecord) error {
	return errors.New("store unavailable")
}

func TestIndex_UpsertFailureIsReported(t *testing.T) {
	svc := NewService(&failingRepo{}, sourceChannel, discardLogger())

	err := svc.Index(context.Background(), models.FilePosted{
		ChatID: sourceChannel, UniqueID: "u1", TransmitHandle: "abc", RawKind: "video",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexing failed")
}
