// Package indexer turns file-posted events from the trusted source channel
// into durable records in the record store.
package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/dprokopov/autofilterbot/internal/bot/models"
	"github.com/dprokopov/autofilterbot/internal/bot/repositories/records"
	"github.com/dprokopov/autofilterbot/internal/logging"
	"github.com/google/uuid"
)

type Service struct {
	repo         records.Repository
	sourceChatID int64
	logger       logging.Logger
}

func NewService(repo records.Repository, sourceChatID int64, logger logging.Logger) *Service {
	return &Service{
		repo:         repo,
		sourceChatID: sourceChatID,
		logger:       logger.With("module", "indexer"),
	}
}

// Index processes one file-posted event. Events from chats other than the
// configured source channel are dropped silently: normal chat traffic flows
// through the same surface and is not an error. A failed upsert is a
// permanent miss for that event; the platform does not resend it.
func (s *Service) Index(ctx context.Context, ev models.FilePosted) error {
	if ev.ChatID != s.sourceChatID {
		s.logger.Debug(ctx, "ignoring file post from untrusted chat", "chat_id", ev.ChatID)
		return nil
	}

	rec := Normalize(ev)
	if err := s.repo.Upsert(ctx, rec); err != nil {
		s.logger.Error(ctx, "failed to index file", "id", rec.ID, "error", err)
		return fmt.Errorf("indexing failed: %w", err)
	}

	s.logger.Info(ctx, "indexed file", "id", rec.ID, "name", rec.Name, "kind", rec.Kind)
	return nil
}

// Normalize maps a raw event to a record. The stable platform identity is
// preferred as the record id; without one, a UUID is derived from the
// transmit handle so re-posts of the same handle still collapse to one record.
// Empty names become a kind placeholder to keep the record searchable.
func Normalize(ev models.FilePosted) *models.FileRecord {
	kind := models.ParseKind(ev.RawKind)

	name := strings.TrimSpace(ev.Name)
	if name == "" {
		name = kind.Placeholder()
	}

	id := ev.UniqueID
	if id == "" {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(ev.TransmitHandle)).String()
	}

	return &models.FileRecord{
		ID:             id,
		TransmitHandle: ev.TransmitHandle,
		Name:           name,
		Kind:           kind,
		Caption:        ev.Caption,
	}
}
