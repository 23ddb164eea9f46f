package middleware

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// PrivateOnly drops updates that do not come from a private chat
func PrivateOnly(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()

			// Inline callbacks on old messages may carry no chat; let them through
			if chat != nil && chat.Type != tele.ChatPrivate {
				logger.Debug("Ignoring non-private chat",
					zap.Int64("chat_id", chat.ID),
					zap.String("chat_type", string(chat.Type)),
				)
				return nil
			}

			return next(c)
		}
	}
}
