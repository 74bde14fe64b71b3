// Package router classifies inbound messaging events and dispatches them to
// the indexer, query engine, and delivery service. It holds no business
// logic beyond classification and converting service errors into short
// user-facing replies.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dprokopov/autofilterbot/internal/bot/delivery"
	"github.com/dprokopov/autofilterbot/internal/bot/indexer"
	"github.com/dprokopov/autofilterbot/internal/bot/models"
	"github.com/dprokopov/autofilterbot/internal/bot/repositories/records"
	"github.com/dprokopov/autofilterbot/internal/bot/search"
	"github.com/dprokopov/autofilterbot/internal/common"
	"github.com/dprokopov/autofilterbot/internal/logging"
)

// Option is one selectable search result: Label is shown to the user,
// Value carries the record identity back on selection.
type Option struct {
	Label string
	Value string
}

// Replier sends plain text and option-list replies back to a chat.
type Replier interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendOptions(ctx context.Context, chatID int64, text string, options []Option) error
}

// Mode selects how search hits reach the user: as selectable buttons
// resolved by a later callback, or delivered immediately as a batch.
type Mode string

const (
	ModeCallback Mode = "callback"
	ModeBatch    Mode = "batch"
)

// User-facing replies. Errors never leak internals past these.
const (
	msgStart = "Hello! I am a movie auto-filter bot.\n" +
		"Send me a movie name and I'll fetch it for you."
	msgHelp           = "Send me a movie name and I'll search my database!"
	msgEmptyQuery     = "Send me a file name to search for."
	msgNoResults      = "No results found."
	msgStoreFailure   = "Something went wrong, please try again later."
	msgNotFound       = "This file is no longer available."
	msgUnsupported    = "This file type can't be delivered."
	msgRateLimited    = "I'm a bit busy right now, please try again in a minute."
	msgDeliveryFailed = "Failed to deliver the file, please try again."
)

type Router struct {
	replier  Replier
	repo     records.Repository
	indexer  *indexer.Service
	search   *search.Service
	delivery *delivery.Service
	mode     Mode
	logger   logging.Logger
}

func New(replier Replier, repo records.Repository, idx *indexer.Service,
	srch *search.Service, del *delivery.Service, mode Mode, logger logging.Logger) *Router {
	return &Router{
		replier:  replier,
		repo:     repo,
		indexer:  idx,
		search:   srch,
		delivery: del,
		mode:     mode,
		logger:   logger.With("module", "router"),
	}
}

// HandleFilePosted forwards a channel file post to the indexer. Nobody is
// waiting for a reply in the source channel, so errors are only propagated
// for logging.
func (r *Router) HandleFilePosted(ctx context.Context, ev models.FilePosted) error {
	return r.indexer.Index(ctx, ev)
}

// HandleText classifies an inbound text message: a leading slash makes it a
// command; anything else from a private, non-bot sender is a search query.
func (r *Router) HandleText(ctx context.Context, msg models.TextMessage) error {
	if strings.HasPrefix(msg.Text, "/") {
		return r.handleCommand(ctx, msg)
	}
	if !msg.IsPrivate || msg.SenderIsBot {
		return nil
	}
	return r.handleQuery(ctx, msg.ChatID, msg.Text)
}

// HandleCallback resolves a selection back to its record and delivers it.
func (r *Router) HandleCallback(ctx context.Context, sel models.CallbackSelection) error {
	rec, err := r.repo.FindByID(ctx, sel.Payload)
	if errors.Is(err, common.ErrorNotFound) {
		return r.reply(ctx, sel.ChatID, msgNotFound)
	}
	if err != nil {
		r.logger.Error(ctx, "record lookup failed", "id", sel.Payload, "error", err)
		return r.reply(ctx, sel.ChatID, msgStoreFailure)
	}

	if err := r.delivery.Deliver(ctx, rec, sel.ChatID); err != nil {
		return r.reportDeliveryError(ctx, sel.ChatID, rec, err)
	}
	return nil
}

func (r *Router) handleCommand(ctx context.Context, msg models.TextMessage) error {
	// "/stats@SomeBot arg" -> "stats"
	name := strings.Fields(msg.Text)[0]
	name = strings.TrimPrefix(name, "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}

	switch strings.ToLower(name) {
	case "start":
		return r.reply(ctx, msg.ChatID, msgStart)
	case "help":
		return r.reply(ctx, msg.ChatID, msgHelp)
	case "stats":
		n, err := r.repo.Count(ctx)
		if err != nil {
			r.logger.Error(ctx, "stats count failed", "error", err)
			return r.reply(ctx, msg.ChatID, msgStoreFailure)
		}
		return r.reply(ctx, msg.ChatID, fmt.Sprintf("Total files indexed: %d", n))
	default:
		return r.reply(ctx, msg.ChatID, msgHelp)
	}
}

func (r *Router) handleQuery(ctx context.Context, chatID int64, text string) error {
	recs, err := r.search.Search(ctx, text)
	if errors.Is(err, common.ErrorEmptyQuery) {
		return r.reply(ctx, chatID, msgEmptyQuery)
	}
	if err != nil {
		r.logger.Error(ctx, "search failed", "chat_id", chatID, "error", err)
		return r.reply(ctx, chatID, msgStoreFailure)
	}
	if len(recs) == 0 {
		return r.reply(ctx, chatID, msgNoResults)
	}

	if r.mode == ModeBatch {
		for i, err := range r.delivery.DeliverBatch(ctx, recs, chatID) {
			if err != nil {
				if rerr := r.reportDeliveryError(ctx, chatID, recs[i], err); rerr != nil {
					return rerr
				}
			}
		}
		return nil
	}

	options := make([]Option, 0, len(recs))
	for _, rec := range recs {
		options = append(options, Option{Label: rec.Name, Value: rec.ID})
	}
	header := fmt.Sprintf("Results for %q:", strings.TrimSpace(text))
	return r.replier.SendOptions(ctx, chatID, header, options)
}

func (r *Router) reportDeliveryError(ctx context.Context, chatID int64, rec *models.FileRecord, err error) error {
	r.logger.Error(ctx, "delivery failed", "id", rec.ID, "chat_id", chatID, "error", err)
	switch {
	case errors.Is(err, common.ErrorUnsupportedKind):
		return r.reply(ctx, chatID, msgUnsupported)
	case errors.Is(err, common.ErrorRateLimited):
		return r.reply(ctx, chatID, msgRateLimited)
	default:
		return r.reply(ctx, chatID, msgDeliveryFailed)
	}
}

func (r *Router) reply(ctx context.Context, chatID int64, text string) error {
	if err := r.replier.SendText(ctx, chatID, text); err != nil {
		r.logger.Error(ctx, "reply failed", "chat_id", chatID, "error", err)
		return err
	}
	return nil
}
