package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

// Pipeline mirrors web.Pipeline: one question in, one answer out.
type Pipeline interface {
	Answer(ctx context.Context, q core.Question) string
}

// Bot is an optional Telegram front-end for the same pipeline the
// HTTP API serves. Every message is answered single-turn; there is no
// per-chat conversation state.
type Bot struct {
	bot      *tele.Bot
	pipeline Pipeline
	sender   *sender
}

func NewBot(ctx context.Context, cfg *config.TelegramConfig, pipeline Pipeline) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		pipeline: pipeline,
		sender:   newSender(b),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	_ = c.Notify(tele.Typing)

	answer := b.pipeline.Answer(ctx, core.Question{
		Text:     c.Text(),
		Role:     "telegram_user",
		UserID:   strconv.FormatInt(c.Sender().ID, 10),
		UserName: displayName(c.Sender()),
	})

	if err := b.sender.sendMarkdown(ctx, c.Chat(), answer); err != nil {
		logger.Error().Err(err).Msg("failed to send telegram reply")
	}
	return nil
}

func displayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
