package format

import (
	"fmt"
	"regexp"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

var (
	mdV1Specials   = regexp.MustCompile("[_*`\\[\\\\]")
	mdV2Specials   = regexp.MustCompile("[_*\\[\\]()~`>#+\\-=|{}.!\\\\]")
	mdCodeSpecials = regexp.MustCompile("[`\\\\]")
)

// EscapeMarkdown escapes user-supplied text so it renders literally inside a
// Markdown-formatted message. For MarkdownV2 the entity type matters: inside
// "code" and "pre" entities only backtick and backslash are special.
func EscapeMarkdown(text string, version int, entityType string) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Specials.ReplaceAllString(text, `\$0`), nil
	case MarkdownV2:
		if entityType == "code" || entityType == "pre" {
			return mdCodeSpecials.ReplaceAllString(text, `\$0`), nil
		}
		return mdV2Specials.ReplaceAllString(text, `\$0`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}
