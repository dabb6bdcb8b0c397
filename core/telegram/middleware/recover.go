package middleware

import (
	"log/slog"
	"runtime/debug"

	"lingobot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware converts handler panics into logged errors so a single
// bad update cannot take the bot down.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.TG.Error("panic recovered",
					slog.String("event", "tg.panic"),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}
