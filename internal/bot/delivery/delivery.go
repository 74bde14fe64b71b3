// Package delivery re-transmits stored files to requesting users, with
// bounded retry under transport rate limiting and self-throttled batches.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dprokopov/autofilterbot/internal/bot/models"
	"github.com/dprokopov/autofilterbot/internal/common"
	"github.com/dprokopov/autofilterbot/internal/logging"
)

// Sender re-transmits a previously indexed file over the messaging
// transport, one call per kind.
type Sender interface {
	SendDocument(ctx context.Context, chatID int64, handle, caption string) error
	SendVideo(ctx context.Context, chatID int64, handle, caption string) error
	SendPhoto(ctx context.Context, chatID int64, handle, caption string) error
}

// RateLimitError is the transport's flood-control signal. RetryAfter is the
// wait the transport demands before the call may be repeated.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// timeAfter is a seam for tests; production code sleeps for real.
var timeAfter = time.After

type Service struct {
	sender      Sender
	logger      logging.Logger
	maxAttempts int
	maxBackoff  time.Duration
	spacing     time.Duration
}

// NewService builds a delivery service. maxAttempts bounds the rate-limit
// retry loop, maxBackoff caps a single wait, and spacing is the pause
// between items of one batch.
func NewService(sender Sender, logger logging.Logger, maxAttempts int, maxBackoff, spacing time.Duration) *Service {
	return &Service{
		sender:      sender,
		logger:      logger.With("module", "delivery"),
		maxAttempts: maxAttempts,
		maxBackoff:  maxBackoff,
		spacing:     spacing,
	}
}

// Deliver re-sends one record to chatID, dispatching on its kind. A
// rate-limit signal suspends only this call for the demanded wait (capped
// at maxBackoff) and retries, up to maxAttempts total attempts; exhaustion
// surfaces common.ErrorRateLimited instead of hanging. Any other transport
// error aborts immediately.
func (s *Service) Deliver(ctx context.Context, rec *models.FileRecord, chatID int64) error {
	for attempt := 1; ; attempt++ {
		err := s.sendByKind(ctx, rec, chatID)
		if err == nil {
			return nil
		}

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			return err
		}

		if attempt >= s.maxAttempts {
			s.logger.Warn(ctx, "delivery retry budget exhausted",
				"id", rec.ID, "chat_id", chatID, "attempts", attempt)
			return fmt.Errorf("%w: gave up after %d attempts", common.ErrorRateLimited, attempt)
		}

		wait := rl.RetryAfter
		if wait > s.maxBackoff {
			wait = s.maxBackoff
		}
		s.logger.Warn(ctx, "rate limited, backing off",
			"id", rec.ID, "chat_id", chatID, "wait", wait, "attempt", attempt)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeAfter(wait):
		}
	}
}

// DeliverBatch re-sends the records strictly sequentially with a fixed
// inter-item pause, so one user's batch never trips the transport's own
// limiter. A failure on item N does not abort items N+1..end; the returned
// slice holds one result per input record.
func (s *Service) DeliverBatch(ctx context.Context, recs []*models.FileRecord, chatID int64) []error {
	result := make([]error, len(recs))
	for i, rec := range recs {
		if i > 0 {
			select {
			case <-ctx.Done():
				for j := i; j < len(recs); j++ {
					result[j] = ctx.Err()
				}
				return result
			case <-timeAfter(s.spacing):
			}
		}
		result[i] = s.Deliver(ctx, rec, chatID)
	}
	return result
}

func (s *Service) sendByKind(ctx context.Context, rec *models.FileRecord, chatID int64) error {
	switch rec.Kind {
	case models.KindDocument:
		return s.sender.SendDocument(ctx, chatID, rec.TransmitHandle, rec.Caption)
	case models.KindVideo:
		return s.sender.SendVideo(ctx, chatID, rec.TransmitHandle, rec.Caption)
	case models.KindPhoto:
		return s.sender.SendPhoto(ctx, chatID, rec.TransmitHandle, rec.Caption)
	default:
		return fmt.Errorf("%w: %s", common.ErrorUnsupportedKind, rec.Kind)
	}
}
