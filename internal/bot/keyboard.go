package bot

import (
	"strconv"

	"lingobot/core/telegram/keyboard"
	"lingobot/internal/dialogue"

	tele "gopkg.in/telebot.v4"
)

const (
	cbNav  = "nav"
	cbSkip = "skip"
)

// navMarkup turns the engine's navigation descriptor into an inline keyboard.
func navMarkup(nav *dialogue.Nav) *tele.ReplyMarkup {
	if nav == nil {
		return nil
	}

	numbered := make([]keyboard.InlineBtn, 0, len(nav.Targets))
	for _, ordinal := range nav.Targets {
		numbered = append(numbered, keyboard.InlineBtn{
			Text:   strconv.Itoa(ordinal),
			Unique: cbNav,
			Data:   strconv.Itoa(ordinal),
		})
	}
	rows := keyboard.Chunk(numbered, 5)

	var controls []keyboard.InlineBtn
	if nav.Prev {
		controls = append(controls, keyboard.InlineBtn{
			Text:   "⬅️ Previous",
			Unique: cbNav,
			Data:   strconv.Itoa(nav.Current - 1),
		})
	}
	if nav.Skip {
		controls = append(controls, keyboard.InlineBtn{
			Text:   "⏭ Skip",
			Unique: cbSkip,
			Data:   "1",
		})
	}
	if nav.Next {
		controls = append(controls, keyboard.InlineBtn{
			Text:   "➡️ Next",
			Unique: cbNav,
			Data:   strconv.Itoa(nav.Current + 1),
		})
	}
	if len(controls) > 0 {
		rows = append(rows, controls)
	}
	if nav.Restart {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   "🔄 Restart course",
			Unique: cbNav,
			Data:   "1",
		}})
	}

	return keyboard.Rows(rows...)
}
