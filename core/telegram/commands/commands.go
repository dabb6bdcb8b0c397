package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command pairs a handler with the metadata the registry and the Telegram
// command menu need. Hidden commands stay out of the menu; AdminOnly ones
// get an access check at route time. Aliases register extra trigger words
// that resolve to the same handler.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
