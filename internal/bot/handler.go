package bot

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"jotjot/internal/domain"
	"jotjot/internal/share"
)

const (
	welcomeMessage = "Welcome to JotJot! Send me a formatted message and I'll turn it into a shareable page. Use /get <id> to read a shared note."
	usageGet       = "Usage: /get <id>"
)

// Shares creates and retrieves shared notes.
type Shares interface {
	Create(ctx context.Context, content string) (share.Result, error)
	Get(ctx context.Context, id string) (string, error)
}

// Handler holds dependencies for the Telegram bot handlers.
type Handler struct {
	bot    *tgbot.Bot
	shares Shares
	log    logrus.FieldLogger
}

// NewHandler creates a new bot handler instance.
func NewHandler(token string, shares Shares, logger logrus.FieldLogger) (*Handler, error) {
	log := logger.WithField("component", "bot_handler")

	h := &Handler{
		shares: shares,
		log:    log,
	}

	b, err := tgbot.New(token, tgbot.WithDefaultHandler(h.noteHandler))
	if err != nil {
		log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h.bot = b

	h.registerHandlers()

	log.Info("Telegram bot handler initialized")
	return h, nil
}

// registerHandlers sets up the command handlers. Other text goes to the
// default handler.
func (h *Handler) registerHandlers() {
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, h.startHandler)
	h.bot.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		_, ok := commandArgs(update.Message.Text, "/get")
		return ok
	}, h.getHandler)
	h.log.Info("Registered /start and /get command handlers")
}

// Start begins polling for updates from Telegram.
// This function blocks until the context is cancelled.
func (h *Handler) Start(ctx context.Context) {
	h.log.Info("Starting Telegram bot polling...")
	h.bot.Start(ctx)
	h.log.Info("Telegram bot polling stopped.")
}

func (h *Handler) reply(ctx context.Context, b *tgbot.Bot, msg *models.Message, text string, log logrus.FieldLogger) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   text,
	})
	if err != nil {
		log.WithError(err).Error("Failed to send reply")
	}
}

func (h *Handler) messageLog(msg *models.Message, command string) logrus.FieldLogger {
	fields := logrus.Fields{"chat_id": msg.Chat.ID, "command": command}
	if msg.From != nil {
		fields["user_id"] = msg.From.ID
	}
	return h.log.WithFields(fields)
}

// commandArgs reports whether text invokes command, optionally addressed as
// command@botname, and returns the trimmed text after it.
func commandArgs(text, command string) (string, bool) {
	token, rest, _ := strings.Cut(text, " ")
	token, _, _ = strings.Cut(token, "@")
	if token != command {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// startHandler handles the /start command.
func (h *Handler) startHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.messageLog(update.Message, "/start")
	log.Info("Received /start command")
	h.reply(ctx, b, update.Message, welcomeMessage, log)
}

// getHandler handles /get <id> and replies with the note as plain text.
func (h *Handler) getHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	msg := update.Message
	log := h.messageLog(msg, "/get")

	id, _ := commandArgs(msg.Text, "/get")
	if id == "" {
		h.reply(ctx, b, msg, usageGet, log)
		return
	}

	content, err := h.shares.Get(ctx, id)
	if err != nil {
		log.WithError(err).WithField("id", id).Warn("Failed to fetch share")
		h.reply(ctx, b, msg, domain.Message(err, share.MsgFetchFailed), log)
		return
	}
	h.reply(ctx, b, msg, PlainText(content), log)
}

// noteHandler shares any other text message as a note.
func (h *Handler) noteHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	log := h.messageLog(msg, "note")

	res, err := h.shares.Create(ctx, MessageHTML(msg.Text, msg.Entities))
	if err != nil {
		log.WithError(err).Warn("Failed to share message")
		h.reply(ctx, b, msg, domain.Message(err, share.MsgCreateFailed), log)
		return
	}

	log.WithField("id", res.ID).Info("Message shared")
	h.reply(ctx, b, msg, "Your note is ready: "+res.ShareURL, log)
}
