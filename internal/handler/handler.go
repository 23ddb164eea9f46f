package handler

import (
	"context"
	"errors"
	"strings"

	"zhukbot/internal/domain"
	"zhukbot/internal/menu"
	"zhukbot/internal/middleware"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Engine turns inbound events into outbound responses
type Engine interface {
	Handle(ctx context.Context, ev domain.Event) ([]domain.Response, error)
}

// Sender delivers messages; *tele.Bot satisfies it
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Handler manages all bot interactions
type Handler struct {
	bot    *tele.Bot
	sender Sender
	engine Engine
	logger *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(bot *tele.Bot, engine Engine, logger *zap.Logger) *Handler {
	return &Handler{
		bot:    bot,
		sender: bot,
		engine: engine,
		logger: logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	h.bot.Use(
		middleware.Recover(h.logger),
		middleware.RequestLogger(h.logger),
		middleware.PrivateOnly(h.logger),
	)

	// Commands
	h.bot.Handle("/start", h.handleUpdate)
	h.bot.Handle("/help", h.handleUpdate)

	// Text messages and shared contacts
	h.bot.Handle(tele.OnText, h.handleUpdate)
	h.bot.Handle(tele.OnContact, h.handleUpdate)

	// Callback queries (inline buttons)
	h.bot.Handle(tele.OnCallback, h.handleUpdate)
}

// handleUpdate runs one update through the conversation engine
func (h *Handler) handleUpdate(c tele.Context) error {
	if c.Callback() != nil {
		defer h.acknowledge(c)
	}

	ev, ok := eventFromContext(c)
	if !ok {
		return nil
	}

	responses, err := h.engine.Handle(context.Background(), ev)
	if err != nil {
		fields := []zap.Field{
			zap.Error(err),
			zap.Int64("user_id", ev.From().UserID),
			zap.String("event", ev.Name()),
			zap.String("request_id", middleware.RequestID(c)),
		}
		if errors.Is(err, menu.ErrUnknownNode) {
			fields = append(fields, zap.String("severity", "config"))
		}
		h.logger.Error("Failed to handle update", fields...)
		return nil
	}

	return h.deliver(responses)
}

// acknowledge stops the client's loading indicator on an inline button
func (h *Handler) acknowledge(c tele.Context) {
	if err := c.Respond(); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}
}

// eventFromContext classifies a telebot update
func eventFromContext(c tele.Context) (domain.Event, bool) {
	sender := c.Sender()
	if sender == nil {
		return nil, false
	}
	src := domain.Source{UserID: sender.ID, ChatID: sender.ID}
	if chat := c.Chat(); chat != nil {
		src.ChatID = chat.ID
	}

	if cb := c.Callback(); cb != nil {
		payload := cleanCallbackData(cb.Data)
		if cb.Unique != "" {
			payload = cb.Unique
		}
		if payload == "" {
			return nil, false
		}
		return domain.ButtonPressed{Source: src, Payload: payload}, true
	}

	msg := c.Message()
	if msg == nil {
		return nil, false
	}
	if msg.Contact != nil {
		return domain.ContactShared{Source: src, Phone: msg.Contact.PhoneNumber}, true
	}

	text := msg.Text
	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		switch command(text) {
		case "/start", "/help":
			return domain.CommandStart{Source: src}, true
		}
		// Ignore other commands
		return nil, false
	}
	return domain.TextMessage{Source: src, Text: text}, true
}

// command strips arguments and a @botname suffix
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd
}

// deliver sends responses in order and stops at the first failure
func (h *Handler) deliver(responses []domain.Response) error {
	for _, resp := range responses {
		what, opts := sendable(resp)
		if _, err := h.sender.Send(tele.ChatID(resp.ChatID), what, opts...); err != nil {
			h.logger.Error("Failed to send response",
				zap.Int64("chat_id", resp.ChatID),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}
