// Package telegram adapts the Telegram Bot API (via telebot) to the event
// and sender interfaces the rest of the bot is written against. All business
// code depends only on those interfaces; this package is the single place
// that knows about the platform client.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dprokopov/autofilterbot/internal/bot/config"
	"github.com/dprokopov/autofilterbot/internal/bot/delivery"
	"github.com/dprokopov/autofilterbot/internal/bot/models"
	"github.com/dprokopov/autofilterbot/internal/bot/router"
	"github.com/dprokopov/autofilterbot/internal/logging"
	tele "gopkg.in/telebot.v3"
)

type Transport struct {
	bot          *tele.Bot
	logger       logging.Logger
	logChannelID int64
	botUsername  string

	// ctx is the process-lifetime context; telebot handlers receive no
	// context of their own, so they borrow this one.
	ctx context.Context
}

// New connects to the Bot API. The poller timeout is the long-poll window,
// not a request deadline.
func New(cfg *config.Config, logger logging.Logger) (*Transport, error) {
	t := &Transport{
		logger:       logger.With("module", "telegram"),
		logChannelID: cfg.LogChannelID,
		botUsername:  cfg.BotUsername,
		ctx:          context.Background(),
	}

	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			t.logger.Error(t.ctx, "handler error", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bot init error: %w", err)
	}

	t.bot = b
	return t, nil
}

// Run registers the event handlers, posts a startup notice to the audit
// channel, and blocks polling until ctx is cancelled.
func (t *Transport) Run(ctx context.Context, r *router.Router) error {
	t.ctx = ctx

	// Channel posts (text and media) arrive on a dedicated endpoint.
	t.bot.Handle(tele.OnChannelPost, func(c tele.Context) error {
		ev, ok := filePostedEvent(c.Message())
		if !ok {
			return nil
		}
		return r.HandleFilePosted(t.ctx, ev)
	})

	// Media sent directly to the bot goes through the same indexing path;
	// the indexer drops anything not originating in the source channel.
	onMedia := func(c tele.Context) error {
		ev, ok := filePostedEvent(c.Message())
		if !ok {
			return nil
		}
		return r.HandleFilePosted(t.ctx, ev)
	}
	t.bot.Handle(tele.OnDocument, onMedia)
	t.bot.Handle(tele.OnVideo, onMedia)
	t.bot.Handle(tele.OnPhoto, onMedia)

	// Unregistered commands fall through to OnText, so the router sees
	// every text message and classifies it itself.
	t.bot.Handle(tele.OnText, func(c tele.Context) error {
		m := c.Message()
		return r.HandleText(t.ctx, models.TextMessage{
			ChatID:      m.Chat.ID,
			IsPrivate:   m.Chat.Type == tele.ChatPrivate,
			SenderIsBot: m.Sender != nil && m.Sender.IsBot,
			Text:        m.Text,
		})
	})

	t.bot.Handle(tele.OnCallback, func(c tele.Context) error {
		cb := c.Callback()
		// Buttons built by unique-less InlineButton carry raw data; strip
		// the marker telebot prepends for unique-routed callbacks anyway.
		payload := strings.TrimPrefix(cb.Data, "\f")
		err := r.HandleCallback(t.ctx, models.CallbackSelection{
			ChatID:  cb.Message.Chat.ID,
			Payload: payload,
		})
		if rerr := c.Respond(); rerr != nil && err == nil {
			err = rerr
		}
		return err
	})

	go func() {
		<-ctx.Done()
		t.logger.Info(ctx, "stopping telegram polling")
		t.bot.Stop()
	}()

	t.audit(ctx, fmt.Sprintf("@%s started", t.botUsername))
	t.logger.Info(ctx, "starting telegram polling", "bot", t.botUsername)
	t.bot.Start()
	t.audit(context.Background(), fmt.Sprintf("@%s stopped", t.botUsername))
	return nil
}

// SendText implements router.Replier.
func (t *Transport) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := t.bot.Send(tele.ChatID(chatID), text)
	return wrapSendError(err)
}

// SendOptions implements router.Replier: one inline button per option, the
// record identity in the callback data.
func (t *Transport) SendOptions(ctx context.Context, chatID int64, text string, options []router.Option) error {
	rows := make([][]tele.InlineButton, 0, len(options))
	for _, o := range options {
		rows = append(rows, []tele.InlineButton{{Text: o.Label, Data: o.Value}})
	}
	markup := &tele.ReplyMarkup{InlineKeyboard: rows}
	_, err := t.bot.Send(tele.ChatID(chatID), text, markup)
	return wrapSendError(err)
}

// SendDocument implements delivery.Sender.
func (t *Transport) SendDocument(ctx context.Context, chatID int64, handle, caption string) error {
	doc := &tele.Document{File: tele.File{FileID: handle}, Caption: caption}
	_, err := t.bot.Send(tele.ChatID(chatID), doc)
	return wrapSendError(err)
}

// SendVideo implements delivery.Sender.
func (t *Transport) SendVideo(ctx context.Context, chatID int64, handle, caption string) error {
	vid := &tele.Video{File: tele.File{FileID: handle}, Caption: caption}
	_, err := t.bot.Send(tele.ChatID(chatID), vid)
	return wrapSendError(err)
}

// SendPhoto implements delivery.Sender.
func (t *Transport) SendPhoto(ctx context.Context, chatID int64, handle, caption string) error {
	ph := &tele.Photo{File: tele.File{FileID: handle}, Caption: caption}
	_, err := t.bot.Send(tele.ChatID(chatID), ph)
	return wrapSendError(err)
}

// audit posts a notice to the log channel; failures are logged, never fatal.
func (t *Transport) audit(ctx context.Context, text string) {
	if t.logChannelID == 0 {
		return
	}
	if err := t.SendText(ctx, t.logChannelID, text); err != nil {
		t.logger.Warn(ctx, "audit notice failed", "error", err)
	}
}

// filePostedEvent extracts the raw file event from a message, if it carries
// an indexable media attachment.
func filePostedEvent(m *tele.Message) (models.FilePosted, bool) {
	if m == nil {
		return models.FilePosted{}, false
	}
	switch {
	case m.Document != nil:
		return models.FilePosted{
			ChatID:         m.Chat.ID,
			UniqueID:       m.Document.UniqueID,
			TransmitHandle: m.Document.FileID,
			Name:           m.Document.FileName,
			RawKind:        string(models.KindDocument),
			Caption:        m.Caption,
		}, true
	case m.Video != nil:
		return models.FilePosted{
			ChatID:         m.Chat.ID,
			UniqueID:       m.Video.UniqueID,
			TransmitHandle: m.Video.FileID,
			Name:           m.Video.FileName,
			RawKind:        string(models.KindVideo),
			Caption:        m.Caption,
		}, true
	case m.Photo != nil:
		return models.FilePosted{
			ChatID:         m.Chat.ID,
			UniqueID:       m.Photo.UniqueID,
			TransmitHandle: m.Photo.FileID,
			RawKind:        string(models.KindPhoto),
			Caption:        m.Caption,
		}, true
	default:
		return models.FilePosted{}, false
	}
}

// wrapSendError converts the platform's flood-control signal into the
// transport-agnostic rate-limit error the delivery service retries on.
func wrapSendError(err error) error {
	if err == nil {
		return nil
	}
	var fe tele.FloodError
	if errors.As(err, &fe) {
		return &delivery.RateLimitError{RetryAfter: time.Duration(fe.RetryAfter) * time.Second}
	}
	return err
}
