// Package search resolves free-text queries against the record store.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/dprokopov/autofilterbot/internal/bot/models"
	"github.com/dprokopov/autofilterbot/internal/bot/repositories/records"
	"github.com/dprokopov/autofilterbot/internal/common"
)

type Service struct {
	repo    records.Repository
	pageCap int
}

func NewService(repo records.Repository, pageCap int) *Service {
	return &Service{repo: repo, pageCap: pageCap}
}

// Search matches the trimmed query as a case-insensitive substring against
// indexed names and returns at most one page of results. A blank query is
// common.ErrorEmptyQuery; zero results is a normal empty slice. Each result
// carries its record id so a later selection resolves the exact record even
// when names collide.
func (s *Service) Search(ctx context.Context, query string) ([]*models.FileRecord, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, common.ErrorEmptyQuery
	}

	result, err := s.repo.Search(ctx, q, s.pageCap)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return result, nil
}
