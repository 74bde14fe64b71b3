package records

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dprokopov/autofilterbot/internal/bot/models"
	"github.com/dprokopov/autofilterbot/internal/common"
)

func TestInMemory_UpsertIsIdempotent(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first := &models.FileRecord{ID: "f1", TransmitHandle: "h1", Name: "Dune.mkv", Kind: models.KindVideo}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Re-index with a reissued handle and new name.
	second := &models.FileRecord{ID: "f1", TransmitHandle: "h2", Name: "Dune.Part.Two.mkv", Kind: models.KindVideo}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 record after re-index, got %d", n)
	}

	rec, err := repo.FindByID(ctx, "f1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.TransmitHandle != "h2" || rec.Name != "Dune.Part.Two.mkv" {
		t.Fatalf("record not updated in place: %+v", rec)
	}
}

func TestInMemory_SearchIsCaseInsensitive(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	err := repo.Upsert(ctx, &models.FileRecord{ID: "f1", Name: "Dune.Part.Two.mkv", Kind: models.KindVideo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.Search(ctx, "dune", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "f1" {
		t.Fatalf("expected one hit for %q, got %+v", "dune", got)
	}
}

func TestInMemory_SearchRespectsLimitAndOrder(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		rec := &models.FileRecord{
			ID:   fmt.Sprintf("f%02d", i),
			Name: fmt.Sprintf("Matrix.%02d.mp4", i),
			Kind: models.KindVideo,
		}
		if err := repo.Upsert(ctx, rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := repo.Search(ctx, "matrix", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("want page cap 20, got %d", len(got))
	}
	for i, rec := range got {
		want := fmt.Sprintf("f%02d", i)
		if rec.ID != want {
			t.Fatalf("result %d out of insertion order: want %s, got %s", i, want, rec.ID)
		}
	}
}

func TestInMemory_DuplicateNamesStayDistinct(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	a := &models.FileRecord{ID: "f1", TransmitHandle: "h1", Name: "Matrix.mp4", Kind: models.KindVideo}
	b := &models.FileRecord{ID: "f2", TransmitHandle: "h2", Name: "Matrix.mp4", Kind: models.KindVideo}
	for _, rec := range []*models.FileRecord{a, b} {
		if err := repo.Upsert(ctx, rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := repo.Search(ctx, "matrix", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 hits, got %d", len(got))
	}

	rec, err := repo.FindByID(ctx, "f2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.TransmitHandle != "h2" {
		t.Fatalf("selection by id resolved the wrong record: %+v", rec)
	}
}

func TestInMemory_FindByID_NotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.FindByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
