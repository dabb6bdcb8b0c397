package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lingobot/internal/catalog"
	"lingobot/internal/session"
)

const (
	msgNoSession        = "No exercise in progress. Send /start to begin."
	msgCancelled        = "Dialogue ended. Send /start whenever you want to practise again."
	msgCourseDone       = "🎓 You have finished the course! Send /start to begin again."
	msgCorrect          = "✅ Correct!"
	msgIncorrect        = "❌ Not quite."
	msgPronExcellent    = "🌟 Excellent pronunciation!"
	msgPronAcceptable   = "👍 Good, let's continue."
	msgPronRetry        = "🔁 Let's try that sentence again, or use Skip."
	msgPronRetryAgain   = "🔁 Still tricky? Listen to the audio once more and try again, or use Skip."
	msgFreeResponseAck  = "Thanks for sharing!"
	msgMatchingHelp     = "Please answer with letter-number pairs, like: A-1, B-2, C-3."
	msgNoSpeech         = "I could not understand that voice message. Please try again or type your answer."
	msgVoiceUnavailable = "Voice recognition is unavailable right now. Please type your answer."
	msgInternalRetry    = "Something went wrong on my side. Please send that answer again."
)

// Nav describes the navigation affordance attached to a rendered turn.
type Nav struct {
	// Current is the exercise being shown.
	Current int
	// Targets lists every exercise ordinal reachable by direct navigation.
	Targets []int
	Prev    bool
	Next    bool
	Restart bool
	// Skip is offered only inside pronunciation practice.
	Skip bool
}

// Rendered is the deterministic content payload of one turn.
type Rendered struct {
	Text string
	Nav  *Nav
	// Heard carries the recognized transcript of a voice submission so the
	// transport can echo it back to the user.
	Heard string
	// Audio optionally carries a synthesized read-back of the prompt.
	Audio []byte
	// Terminated signals that the dialogue ended with this turn.
	Terminated bool
}

func (c *Controller) nav(s *session.State) *Nav {
	n := c.catalog.Len()
	targets := make([]int, n)
	for i := range targets {
		targets[i] = i + 1
	}
	nav := &Nav{
		Current: s.CurrentExercise,
		Targets: targets,
		Prev:    s.CurrentExercise > 1,
		Next:    s.CurrentExercise <= n,
		Restart: true,
	}
	if ex, ok := c.catalog.Get(s.CurrentExercise); ok {
		if seq, isSeq := ex.Body.(*catalog.Sequential); isSeq && seq.Pronunciation {
			nav.Skip = true
		}
	}
	return nav
}

// renderState produces the payload for the session's current position. It
// never mutates the session.
func (c *Controller) renderState(s *session.State, feedback string) Rendered {
	if s.CurrentExercise > c.catalog.Len() {
		return Rendered{Text: msgCourseDone, Terminated: true}
	}
	ex, ok := c.catalog.Get(s.CurrentExercise)
	if !ok {
		return Rendered{Text: msgNoSession}
	}
	p, hasProgress := s.PerExercise[s.CurrentExercise]
	if !hasProgress {
		p = &session.Progress{}
	}

	if p.ItemIndex >= ex.Body.ItemCount() {
		return c.renderSummaryText(s, ex, p)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Exercise %d/%d: %s*\n", ex.Ordinal, c.catalog.Len(), ex.Title)
	if ex.Instructions != "" {
		fmt.Fprintf(&b, "_%s_\n", ex.Instructions)
	}
	if feedback != "" {
		fmt.Fprintf(&b, "\n%s\n", feedback)
	}
	b.WriteString("\n")

	var audio []byte
	switch body := ex.Body.(type) {
	case *catalog.Sequential:
		prompt := body.Prompts[p.ItemIndex]
		if body.Pronunciation {
			fmt.Fprintf(&b, "Read aloud (%d/%d):\n%s", p.ItemIndex+1, len(body.Prompts), prompt.Text)
			audio = c.promptAudio(prompt.Text)
		} else {
			fmt.Fprintf(&b, "Question %d/%d:\n%s", p.ItemIndex+1, len(body.Prompts), prompt.Text)
		}

	case *catalog.Matching:
		for _, it := range body.Items {
			fmt.Fprintf(&b, "%s. %s\n", it.Label, it.Text)
		}
		b.WriteString("\n")
		for _, t := range body.Targets {
			fmt.Fprintf(&b, "%d. %s\n", t.Number, t.Text)
		}

	case *catalog.FreeResponse:
		b.WriteString(body.Prompt)

	case *catalog.Comprehension:
		if p.ItemIndex == 0 {
			fmt.Fprintf(&b, "%s\n\n", body.Passage)
		}
		fmt.Fprintf(&b, "Question %d/%d:\n%s", p.ItemIndex+1, len(body.Prompts), body.Prompts[p.ItemIndex].Text)
	}

	return Rendered{Text: b.String(), Nav: c.nav(s), Audio: audio}
}

// renderSummary emits the completion summary and archives the result.
func (c *Controller) renderSummary(userID int64, s *session.State, ex *catalog.Exercise, p *session.Progress) Rendered {
	if ex.Body.TotalPoints() > 0 {
		c.recordCompletion(userID, ex.Ordinal, p.Score, ex.Body.TotalPoints())
	}
	return c.renderSummaryText(s, ex, p)
}

// renderSummaryText builds the completion summary without side effects, so
// repeated submissions after completion re-render it without re-scoring.
func (c *Controller) renderSummaryText(s *session.State, ex *catalog.Exercise, p *session.Progress) Rendered {
	var b strings.Builder
	fmt.Fprintf(&b, "🏁 *%s* complete!\n", ex.Title)
	if total := ex.Body.TotalPoints(); total > 0 {
		fmt.Fprintf(&b, "Your score: %d/%d.\n", p.Score, total)
	}
	b.WriteString("\nPick the next exercise below, or send /cancel to stop.")
	return Rendered{Text: b.String(), Nav: c.nav(s)}
}

// promptAudio synthesizes the read-back for a pronunciation prompt.
// Unavailable synthesis degrades the prompt to text-only.
func (c *Controller) promptAudio(text string) []byte {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	data, err := c.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return nil
	}
	return data
}
