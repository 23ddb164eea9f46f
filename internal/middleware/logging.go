package middleware

import (
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const requestIDKey = "request_id"

// RequestID returns the id assigned by RequestLogger, or an empty string
func RequestID(c tele.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}

// RequestLogger tags every update with a request id and logs its handling time
func RequestLogger(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			id := uuid.NewString()
			c.Set(requestIDKey, id)

			start := time.Now()
			err := next(c)

			fields := []zap.Field{
				zap.String("request_id", id),
				zap.Duration("took", time.Since(start)),
			}
			if sender := c.Sender(); sender != nil {
				fields = append(fields, zap.Int64("user_id", sender.ID))
			}
			if err != nil {
				logger.Warn("Update failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("Update handled", fields...)
			}
			return err
		}
	}
}

// Recover keeps a panicking handler from taking the bot down
func Recover(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Panic recovered",
						zap.Any("panic", r),
						zap.String("stack", string(debug.Stack())),
					)
					err = nil
				}
			}()
			return next(c)
		}
	}
}
