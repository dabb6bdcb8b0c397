package middleware

import (
	"lingobot/core/logger"
	tghelpers "lingobot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// SessionChecker is the minimal interface required from a session manager.
type SessionChecker interface {
	InProgress(userID int64) bool
}

// RequireSession returns a middleware that lets an update through only when
// the user has an active dialogue. Otherwise onMissing is invoked (or the
// update is dropped when onMissing is nil).
func RequireSession(mgr SessionChecker, onMissing tele.HandlerFunc) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID
			if mgr == nil || mgr.InProgress(userID) {
				return next(c)
			}
			ctx := tghelpers.BuildContext(c)
			logger.TG.LogAttrs(ctx, slog.LevelDebug, "session.missing",
				slog.Int64("user_id", userID),
				slog.String("rid", logger.RIDFrom(ctx)),
			)
			if onMissing != nil {
				return onMissing(c)
			}
			return nil
		}
	}
}
