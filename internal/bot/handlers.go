// Package bot binds the dialogue engine to the Telegram transport: commands,
// text and voice routing, and navigation callbacks.
package bot

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"lingobot/core/logger"
	tg "lingobot/core/telegram"
	"lingobot/core/telegram/callbacks"
	"lingobot/core/telegram/commands"
	"lingobot/core/telegram/format"
	tghelpers "lingobot/core/telegram/helpers"
	"lingobot/core/telegram/middleware"
	"lingobot/internal/dialogue"
	"lingobot/internal/progress"
	"lingobot/internal/speech"

	tele "gopkg.in/telebot.v4"
)

// Archive is the read side of the progress store consumed by /stats.
// *progress.Repository satisfies it.
type Archive interface {
	CountByExercise(ctx context.Context) (map[int]int, error)
	RecentByUser(ctx context.Context, userID int64, limit int) ([]progress.Completion, error)
}

// Service exposes the dialogue engine to Telegram handlers. It implements
// router.FSM so plain text reaches the engine while a dialogue is active.
type Service struct {
	Ctrl *dialogue.Controller
	// Archive is nil when the progress database is disabled.
	Archive Archive
}

// sendRendered delivers one turn's payload as a new message: optional audio
// first, then the text with its navigation keyboard. A recognized transcript
// is echoed above the feedback, escaped because it is user-supplied text.
func sendRendered(c tele.Context, r dialogue.Rendered) error {
	return deliverRendered(c, r, false)
}

// editRendered delivers the payload by editing the message whose inline
// button triggered it, so navigation taps do not stack new messages.
func editRendered(c tele.Context, r dialogue.Rendered) error {
	return deliverRendered(c, r, true)
}

func deliverRendered(c tele.Context, r dialogue.Rendered, edit bool) error {
	if r.Heard != "" {
		heard := r.Heard
		if escaped, err := format.EscapeMarkdown(heard, format.MarkdownV1, ""); err == nil {
			heard = escaped
		}
		r.Text = fmt.Sprintf("🎤 _%s_\n\n%s", heard, r.Text)
	}
	if len(r.Audio) > 0 {
		voice := &tele.Voice{File: tele.FromReader(bytes.NewReader(r.Audio))}
		if err := c.Send(voice); err != nil {
			logger.TG.Warn("voice prompt send failed",
				slog.String("event", "send.voice"),
				slog.String("err", err.Error()),
			)
		}
		// The edited message would sit above the fresh audio; send instead.
		edit = false
	}
	var markup *tele.ReplyMarkup
	if r.Nav != nil && !r.Terminated {
		markup = navMarkup(r.Nav)
	}
	if edit {
		return tghelpers.EditOrSendMD(c, r.Text, markup)
	}
	return tghelpers.SendMD(c, r.Text, markup)
}

// Register wires all commands, callbacks and the text fallback into the
// registry.
func (s *Service) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     s.handleStart,
		Description: "Begin the course from exercise 1",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     s.handleCancel,
		Description: "End the current dialogue",
		Aliases:     []string{"stop"},
	})
	reg.RegisterCommand("/skip", commands.Command{
		Handler:     s.handleSkip,
		Description: "Skip the current pronunciation sentence",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     s.handleStats,
		Description: "Show completion statistics",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/healthcheck", commands.Command{
		Handler:     handleHealthcheck,
		Description: "Check that the bot is alive",
	})

	_ = reg.RegisterCallback(cbNav, s.handleNavigate)
	_ = reg.RegisterCallback(cbSkip, func(c tele.Context) error {
		return editRendered(c, s.Ctrl.Skip(c.Sender().ID))
	})

	reg.SetTextFallback(func(c tele.Context) error {
		return tghelpers.SendText(c, "No exercise in progress. Send /start to begin.")
	})
}

// InProgress reports whether the user has an active dialogue.
func (s *Service) InProgress(userID int64) bool {
	return s.Ctrl.Sessions().InProgress(userID)
}

// ManagerHandler feeds a plain-text update into the active dialogue.
func (s *Service) ManagerHandler(c tele.Context) error {
	return sendRendered(c, s.Ctrl.Submit(c.Sender().ID, c.Text()))
}

func handleHealthcheck(c tele.Context) error {
	return tghelpers.SendText(c, "Bot is running!")
}

func (s *Service) handleStart(c tele.Context) error {
	return sendRendered(c, s.Ctrl.Start(c.Sender().ID))
}

func (s *Service) handleCancel(c tele.Context) error {
	return sendRendered(c, s.Ctrl.Cancel(c.Sender().ID))
}

func (s *Service) handleSkip(c tele.Context) error {
	return sendRendered(c, s.Ctrl.Skip(c.Sender().ID))
}

// handleNavigate parses the target ordinal from the callback payload.
// Malformed payloads are ignored without touching the session.
func (s *Service) handleNavigate(c tele.Context) error {
	target, err := callbacks.PayloadInt(c)
	if err != nil {
		ctx := tghelpers.BuildContext(c)
		logger.TG.LogAttrs(ctx, slog.LevelDebug, "nav.malformed",
			slog.Int64("user_id", c.Sender().ID),
			slog.String("payload", logger.SanitizeLimit(callbacks.Payload(c), 64)),
		)
		return nil
	}
	return editRendered(c, s.Ctrl.Navigate(c.Sender().ID, target))
}

// HandleVoice downloads the voice message and hands it to the engine. Any
// failure on the way resolves to a retry prompt, never an aborted turn.
func (s *Service) HandleVoice(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Voice == nil {
		return nil
	}
	userID := c.Sender().ID

	rc, err := c.Bot().File(&msg.Voice.File)
	if err != nil {
		logger.TG.Warn("voice download failed",
			slog.String("event", "voice.download"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, "I could not fetch that voice message. Please try again.")
	}
	defer rc.Close()

	ctx := tghelpers.BuildContext(c)
	rendered := s.Ctrl.SubmitVoice(ctx, userID, speech.Audio{
		FileID:  msg.Voice.FileID,
		Content: rc,
	})
	return sendRendered(c, rendered)
}

// handleStats reports per-exercise completion counts from the archive plus
// the caller's own latest completions.
func (s *Service) handleStats(c tele.Context) error {
	if s.Archive == nil {
		return tghelpers.SendText(c, "The progress archive is disabled.")
	}
	ctx := tghelpers.BuildContext(c)
	counts, err := s.Archive.CountByExercise(ctx)
	if err != nil {
		logger.Progress.Error("stats query failed",
			slog.String("event", "stats"),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, "Could not load statistics.")
	}
	if len(counts) == 0 {
		return tghelpers.SendText(c, "No completions recorded yet.")
	}

	ordinals := make([]int, 0, len(counts))
	for ord := range counts {
		ordinals = append(ordinals, ord)
	}
	sort.Ints(ordinals)

	var b strings.Builder
	b.WriteString("Completions per exercise:\n")
	for _, ord := range ordinals {
		fmt.Fprintf(&b, "%d: %d\n", ord, counts[ord])
	}

	recent, err := s.Archive.RecentByUser(ctx, c.Sender().ID, 5)
	if err != nil {
		logger.Progress.Warn("recent completions query failed",
			slog.String("event", "stats.recent"),
			slog.String("err", err.Error()),
		)
	} else if len(recent) > 0 {
		b.WriteString("\nYour recent completions:\n")
		for _, comp := range recent {
			fmt.Fprintf(&b, "Exercise %d: %d/%d on %s\n",
				comp.Exercise, comp.Score, comp.Total, comp.FinishedAt.Format("2006-01-02"))
		}
	}
	return tghelpers.SendText(c, b.String())
}

// VoiceRoute builds the voice-message route with the shared middleware
// chain and a session gate that points new users at /start.
func (s *Service) VoiceRoute() tg.Route {
	onMissing := func(c tele.Context) error {
		return tghelpers.SendText(c, "No exercise in progress. Send /start to begin.")
	}
	h := s.HandleVoice
	h = middleware.RequireSession(s.Ctrl.Sessions(), onMissing)(h)
	h = middleware.LoggerMiddleware(h)
	h = middleware.RecoverMiddleware(h)
	return tg.Route{Endpoint: tele.OnVoice, Handler: h}
}
