// Package callbacks decodes telebot's callback data encoding.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseData splits telebot's \f<unique>|<payload> callback encoding into the
// callback key and its payload (which may be empty).
func ParseData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	raw := strings.TrimPrefix(cb.Data, "\\f")
	parts := strings.SplitN(raw, "|", 2)
	key := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return key, payload
}

// Key returns the callback key, preferring cb.Unique when set. Generic
// OnCallback updates leave Unique empty, so the key is parsed from Data.
func Key(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	k, _ := ParseData(cb)
	return k
}

// Payload returns the payload parsed from the callback data.
func Payload(c tele.Context) string {
	_, payload := ParseData(c.Callback())
	return payload
}

// PayloadInt parses the callback payload as an int.
func PayloadInt(c tele.Context) (int, error) {
	return strconv.Atoi(Payload(c))
}
