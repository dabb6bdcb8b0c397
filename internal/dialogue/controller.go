// Package dialogue drives the exercise conversation: it sequences prompts,
// scores submissions and owns every mutation of the session state. State is
// committed only after a turn evaluates successfully, so a faulty turn can
// never leave a half-updated session behind.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lingobot/core/logger"
	"lingobot/internal/catalog"
	"lingobot/internal/evaluate"
	"lingobot/internal/session"
	"lingobot/internal/speech"
)

// Recorder archives completed exercises. Implementations must tolerate
// being called concurrently.
type Recorder interface {
	RecordCompletion(ctx context.Context, userID int64, exercise, score, total int) error
}

// Options carries the optional collaborators of a Controller.
type Options struct {
	Transcriber speech.Transcriber
	Synthesizer speech.Synthesizer
	Recorder    Recorder
}

// Controller is the dialogue state machine. All public methods serialize
// turns per user; distinct users proceed independently.
type Controller struct {
	catalog     *catalog.Catalog
	sessions    *session.Store
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	recorder    Recorder
}

// New builds a Controller. Nil collaborators degrade gracefully: voice
// submissions report the recognizer unavailable, pronunciation prompts render
// text-only, completions are not archived.
func New(cat *catalog.Catalog, sessions *session.Store, opts Options) *Controller {
	tr := opts.Transcriber
	if tr == nil {
		tr = speech.DisabledTranscriber{}
	}
	syn := opts.Synthesizer
	if syn == nil {
		syn = speech.DisabledSynthesizer{}
	}
	return &Controller{
		catalog:     cat,
		sessions:    sessions,
		transcriber: tr,
		synthesizer: syn,
		recorder:    opts.Recorder,
	}
}

// Sessions exposes the underlying store for transport-level gating.
func (c *Controller) Sessions() *session.Store { return c.sessions }

// Start begins or restarts the dialogue at exercise 1.
func (c *Controller) Start(userID int64) Rendered {
	defer c.sessions.Lock(userID)()
	s := c.sessions.Reset(userID)
	logger.Engine.Info("dialogue started",
		slog.String("event", "start"),
		slog.Int64("user_id", userID),
	)
	return c.renderState(s, "")
}

// Cancel terminates the dialogue unconditionally.
func (c *Controller) Cancel(userID int64) Rendered {
	defer c.sessions.Lock(userID)()
	c.sessions.Delete(userID)
	return Rendered{Text: msgCancelled, Terminated: true}
}

// Submit drives one turn with a typed answer.
func (c *Controller) Submit(userID int64, text string) Rendered {
	defer c.sessions.Lock(userID)()
	return c.submitLocked(userID, text)
}

// Skip advances past the current pronunciation item without scoring. For any
// other exercise shape it re-renders the current prompt unchanged.
func (c *Controller) Skip(userID int64) Rendered {
	defer c.sessions.Lock(userID)()
	s, ok := c.sessions.Get(userID)
	if !ok {
		return Rendered{Text: msgNoSession}
	}
	s.VoiceRetry = false

	ex, ok := c.exercise(s)
	if !ok {
		return c.renderState(s, "")
	}
	seq, isSeq := ex.Body.(*catalog.Sequential)
	if !isSeq || !seq.Pronunciation {
		return c.renderState(s, "")
	}

	p := s.Current()
	if p.ItemIndex < ex.Body.ItemCount() {
		p.ItemIndex++
	}
	c.sessions.Put(userID, s)
	if p.ItemIndex >= ex.Body.ItemCount() {
		return c.renderSummary(userID, s, ex, p)
	}
	return c.renderState(s, "")
}

// Navigate jumps to an arbitrary exercise. Target 1 is an explicit full
// restart; a target beyond the course completes and terminates the dialogue.
func (c *Controller) Navigate(userID int64, target int) Rendered {
	defer c.sessions.Lock(userID)()
	s, ok := c.sessions.Get(userID)
	if !ok {
		return Rendered{Text: msgNoSession}
	}
	s.VoiceRetry = false

	if target == 1 {
		s = c.sessions.Reset(userID)
		return c.renderState(s, "")
	}
	if target > c.catalog.Len() {
		s.CurrentExercise = c.catalog.Len() + 1
		c.sessions.Put(userID, s)
		logger.Engine.Info("course completed",
			slog.String("event", "complete"),
			slog.Int64("user_id", userID),
			slog.Int("score", s.Score),
		)
		return Rendered{Text: msgCourseDone, Terminated: true}
	}
	if target < 1 {
		return c.renderState(s, "")
	}

	s.CurrentExercise = target
	s.Current() // creates counters only on first visit
	c.sessions.Put(userID, s)
	return c.renderState(s, "")
}

// SubmitVoice transcribes a voice message and treats the transcript as a
// typed submission. Recognition runs outside the per-user lock; if the
// session navigated elsewhere while it ran, the late result is dropped.
func (c *Controller) SubmitVoice(ctx context.Context, userID int64, audio speech.Audio) Rendered {
	unlock := c.sessions.Lock(userID)
	s, ok := c.sessions.Get(userID)
	if !ok {
		unlock()
		return Rendered{Text: msgNoSession}
	}
	capturedExercise := s.CurrentExercise
	capturedItem := s.Current().ItemIndex
	unlock()

	transcript, err := c.transcriber.Transcribe(ctx, audio)
	if err != nil {
		logger.Engine.Warn("voice not understood",
			slog.String("event", "voice.failed"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		if errors.Is(err, speech.ErrNoSpeech) {
			return Rendered{Text: msgNoSpeech}
		}
		return Rendered{Text: msgVoiceUnavailable}
	}

	defer c.sessions.Lock(userID)()
	s, ok = c.sessions.Get(userID)
	if !ok {
		return Rendered{Text: msgNoSession}
	}
	if s.CurrentExercise != capturedExercise || s.Current().ItemIndex != capturedItem {
		// The session moved on while recognition ran; drop the late result.
		logger.Engine.Debug("late transcript dropped",
			slog.String("event", "voice.stale"),
			slog.Int64("user_id", userID),
			slog.Int("exercise", capturedExercise),
		)
		return c.renderState(s, "")
	}
	r := c.submitLocked(userID, transcript)
	r.Heard = transcript
	return r
}

func (c *Controller) exercise(s *session.State) (*catalog.Exercise, bool) {
	return c.catalog.Get(s.CurrentExercise)
}

// submitLocked runs a single evaluation turn. The caller holds the user lock.
func (c *Controller) submitLocked(userID int64, text string) Rendered {
	s, ok := c.sessions.Get(userID)
	if !ok {
		return Rendered{Text: msgNoSession}
	}
	retried := s.VoiceRetry
	s.VoiceRetry = false

	if s.CurrentExercise > c.catalog.Len() {
		return Rendered{Text: msgCourseDone, Terminated: true}
	}
	ex, ok := c.exercise(s)
	if !ok {
		return Rendered{Text: msgNoSession}
	}

	p := s.Current()
	if p.ItemIndex >= ex.Body.ItemCount() {
		// Already finished; show the summary again without re-scoring.
		c.sessions.Put(userID, s)
		return c.renderSummaryText(s, ex, p)
	}

	outcome, err := c.evaluateTurn(ex, p.ItemIndex, text)
	if err != nil {
		if errors.Is(err, evaluate.ErrMalformedMatching) {
			return c.renderState(s, msgMatchingHelp)
		}
		logger.Engine.Error("turn evaluation failed",
			slog.String("event", "turn.fault"),
			slog.Int64("user_id", userID),
			slog.Int("exercise", s.CurrentExercise),
			slog.String("err", err.Error()),
		)
		return c.renderState(s, msgInternalRetry)
	}

	logger.Engine.Debug("turn evaluated",
		slog.String("event", "turn"),
		slog.Int64("user_id", userID),
		slog.Int("exercise", s.CurrentExercise),
		slog.Int("item", p.ItemIndex),
		slog.Int("similarity", outcome.similarity),
		slog.Int("points", outcome.points),
	)

	if !outcome.advance {
		feedback := outcome.feedback
		if outcome.voiceRetry {
			s.VoiceRetry = true
			if retried {
				// Second miss in a row on the same sentence; nudge harder.
				feedback = msgPronRetryAgain
			}
		}
		c.sessions.Put(userID, s)
		return c.renderState(s, feedback)
	}

	p.Score += outcome.points
	s.Score += outcome.points
	p.ItemIndex++
	c.sessions.Put(userID, s)

	if p.ItemIndex >= ex.Body.ItemCount() {
		return c.renderSummary(userID, s, ex, p)
	}
	return c.renderState(s, outcome.feedback)
}

// turnOutcome is the result of evaluating one submission.
type turnOutcome struct {
	advance    bool
	points     int
	similarity int
	feedback   string
	voiceRetry bool
}

// evaluateTurn dispatches on the exercise shape. A panic inside evaluation is
// converted into an error so the caller can leave the session untouched.
func (c *Controller) evaluateTurn(ex *catalog.Exercise, item int, text string) (out turnOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluate: panic: %v", r)
		}
	}()

	switch body := ex.Body.(type) {
	case *catalog.Sequential:
		if body.Pronunciation {
			return pronounceOutcome(text, body.Prompts[item]), nil
		}
		res := evaluate.Evaluate(text, body.Prompts[item].Accepted)
		return answerOutcome(res), nil

	case *catalog.Comprehension:
		res := evaluate.EvaluateContains(text, body.Prompts[item].Accepted)
		return answerOutcome(res), nil

	case *catalog.Matching:
		correct, merr := evaluate.ScoreMatching(text, body.Key)
		if merr != nil {
			return turnOutcome{}, merr
		}
		return turnOutcome{advance: true, points: correct}, nil

	case *catalog.FreeResponse:
		return turnOutcome{advance: true, feedback: msgFreeResponseAck}, nil

	default:
		return turnOutcome{}, fmt.Errorf("evaluate: unknown exercise shape %T", ex.Body)
	}
}

func answerOutcome(res evaluate.Result) turnOutcome {
	if res.Correct {
		return turnOutcome{advance: true, points: 1, similarity: res.Similarity, feedback: msgCorrect}
	}
	feedback := msgIncorrect
	if res.Hint != "" {
		feedback = fmt.Sprintf("%s Hint: %s", msgIncorrect, res.Hint)
	}
	return turnOutcome{similarity: res.Similarity, feedback: feedback}
}

func pronounceOutcome(text string, prompt catalog.Prompt) turnOutcome {
	band, ratio := evaluate.Pronounce(text, prompt.Text)
	switch band {
	case evaluate.BandExcellent:
		return turnOutcome{advance: true, points: 1, similarity: ratio, feedback: msgPronExcellent}
	case evaluate.BandAcceptable:
		return turnOutcome{advance: true, points: 1, similarity: ratio, feedback: msgPronAcceptable}
	default:
		return turnOutcome{similarity: ratio, feedback: msgPronRetry, voiceRetry: true}
	}
}

// recordCompletion archives a finished exercise off the turn's critical path.
func (c *Controller) recordCompletion(userID int64, exercise, score, total int) {
	if c.recorder == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.recorder.RecordCompletion(ctx, userID, exercise, score, total); err != nil {
			logger.Progress.Warn("completion not archived",
				slog.String("event", "archive.failed"),
				slog.Int64("user_id", userID),
				slog.Int("exercise", exercise),
				slog.String("err", err.Error()),
			)
		}
	}()
}
