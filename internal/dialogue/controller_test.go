package dialogue

import (
	"context"
	"strings"
	"testing"
	"time"

	"lingobot/internal/catalog"
	"lingobot/internal/session"
	"lingobot/internal/speech"
)

type stubTranscriber struct {
	text string
	err  error
	// hook runs inside Transcribe, outside the per-user lock.
	hook func()
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio speech.Audio) (string, error) {
	if s.hook != nil {
		s.hook()
	}
	return s.text, s.err
}

type recordedCompletion struct {
	userID   int64
	exercise int
	score    int
	total    int
}

type stubRecorder struct {
	ch chan recordedCompletion
}

func newStubRecorder() *stubRecorder {
	return &stubRecorder{ch: make(chan recordedCompletion, 16)}
}

func (r *stubRecorder) RecordCompletion(ctx context.Context, userID int64, exercise, score, total int) error {
	r.ch <- recordedCompletion{userID, exercise, score, total}
	return nil
}

func newTestController(t *testing.T, opts Options) (*Controller, *session.Store) {
	t.Helper()
	store := session.NewStore()
	return New(catalog.Builtin(), store, opts), store
}

func mustState(t *testing.T, store *session.Store, userID int64) *session.State {
	t.Helper()
	s, ok := store.Get(userID)
	if !ok {
		t.Fatal("expected a session")
	}
	return s
}

func TestStartBeginsAtFirstExercise(t *testing.T) {
	c, store := newTestController(t, Options{})
	r := c.Start(1)
	if !strings.Contains(r.Text, "Exercise 1/10") {
		t.Fatalf("unexpected start text: %q", r.Text)
	}
	if r.Terminated {
		t.Fatal("start must not terminate the dialogue")
	}
	s := mustState(t, store, 1)
	if s.CurrentExercise != 1 || s.Score != 0 {
		t.Fatalf("fresh state: %+v", s)
	}
}

func TestSubmitWithoutSession(t *testing.T) {
	c, _ := newTestController(t, Options{})
	r := c.Submit(1, "hello")
	if r.Text != msgNoSession {
		t.Fatalf("text = %q, want no-session prompt", r.Text)
	}
}

func TestSubmitCorrectAdvancesItem(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)

	r := c.Submit(1, "I am fine, thanks!")
	if !strings.Contains(r.Text, msgCorrect) {
		t.Fatalf("expected correct feedback, got %q", r.Text)
	}
	if !strings.Contains(r.Text, "Question 2/3") {
		t.Fatalf("expected the next question, got %q", r.Text)
	}
	s := mustState(t, store, 1)
	if s.Score != 1 || s.Current().ItemIndex != 1 {
		t.Fatalf("state after one correct answer: %+v", s.Current())
	}
}

func TestSubmitIncorrectKeepsPosition(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)
	c.Navigate(1, 2)

	before := mustState(t, store, 1)
	r := c.Submit(1, "a banana")
	if !strings.Contains(r.Text, msgIncorrect) {
		t.Fatalf("expected incorrect feedback, got %q", r.Text)
	}
	if !strings.Contains(r.Text, "Hint:") {
		t.Fatalf("expected a hint, got %q", r.Text)
	}
	after := mustState(t, store, 1)
	if !before.Equal(after) {
		t.Fatalf("incorrect answer changed the session: %+v -> %+v", before, after)
	}
}

func TestExerciseCompletionSummary(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)

	c.Submit(1, "I am fine")
	c.Submit(1, "I come from Spain")
	r := c.Submit(1, "I like reading")

	if !strings.Contains(r.Text, "complete!") {
		t.Fatalf("expected summary, got %q", r.Text)
	}
	if !strings.Contains(r.Text, "Your score: 3/3.") {
		t.Fatalf("expected full score, got %q", r.Text)
	}
	s := mustState(t, store, 1)
	if s.Score != 3 {
		t.Fatalf("session score = %d, want 3", s.Score)
	}
}

func TestRepeatSubmitAfterCompletionDoesNotRescore(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)
	c.Submit(1, "I am fine")
	c.Submit(1, "I come from Spain")
	c.Submit(1, "I like reading")

	r := c.Submit(1, "I am fine")
	if !strings.Contains(r.Text, "Your score: 3/3.") {
		t.Fatalf("expected the summary again, got %q", r.Text)
	}
	s := mustState(t, store, 1)
	if s.Score != 3 {
		t.Fatalf("score changed on repeat submission: %d", s.Score)
	}
}

func TestMatchingFullCredit(t *testing.T) {
	c, _ := newTestController(t, Options{})
	c.Start(1)
	c.Navigate(1, 4)

	r := c.Submit(1, "A-4, B-5, C-3, D-1, E-2")
	if !strings.Contains(r.Text, "Your score: 5/5.") {
		t.Fatalf("expected 5/5, got %q", r.Text)
	}
}

func TestMatchingPartialCredit(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)
	c.Navigate(1, 4)

	r := c.Submit(1, "A-4, B-1, C-3, D-2, E-5")
	if !strings.Contains(r.Text, "Your score: 2/5.") {
		t.Fatalf("expected 2/5, got %q", r.Text)
	}
	s := mustState(t, store, 1)
	if s.Score != 2 {
		t.Fatalf("session score = %d, want 2", s.Score)
	}
}

func TestMalformedMatchingLeavesStateUntouched(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)
	c.Navigate(1, 4)

	before := mustState(t, store, 1)
	r := c.Submit(1, "total nonsense")
	if !strings.Contains(r.Text, msgMatchingHelp) {
		t.Fatalf("expected format help, got %q", r.Text)
	}
	after := mustState(t, store, 1)
	if !before.Equal(after) {
		t.Fatal("malformed matching answer changed the session")
	}
}

func TestNavigateOneRestartsCourse(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)
	c.Submit(1, "I am fine")
	c.Navigate(1, 4)

	r := c.Navigate(1, 1)
	if !strings.Contains(r.Text, "Exercise 1/10") {
		t.Fatalf("expected restart at exercise 1, got %q", r.Text)
	}
	s := mustState(t, store, 1)
	if s.Score != 0 || s.CurrentExercise != 1 || len(s.PerExercise) != 1 {
		t.Fatalf("restart kept old progress: %+v", s)
	}
}

func TestNavigatePreservesProgress(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)
	c.Navigate(1, 2)
	c.Submit(1, "an umbrella")

	c.Navigate(1, 5)
	r := c.Navigate(1, 2)
	if !strings.Contains(r.Text, "Question 2/4") {
		t.Fatalf("expected to resume at question 2, got %q", r.Text)
	}
	s := mustState(t, store, 1)
	if p := s.PerExercise[2]; p == nil || p.ItemIndex != 1 || p.Score != 1 {
		t.Fatalf("revisit lost progress: %+v", p)
	}
}

func TestNavigateBeyondCourseCompletes(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)

	r := c.Navigate(1, 11)
	if !r.Terminated {
		t.Fatal("navigating past the last exercise must terminate")
	}
	if !strings.Contains(r.Text, "finished the course") {
		t.Fatalf("unexpected completion text: %q", r.Text)
	}

	before := mustState(t, store, 1)
	r = c.Submit(1, "hello")
	if !r.Terminated {
		t.Fatal("submissions after completion must be refused")
	}
	after := mustState(t, store, 1)
	if !before.Equal(after) {
		t.Fatal("submission after completion changed the session")
	}
}

func TestNavigateBelowRangeIsNoop(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)
	before := mustState(t, store, 1)

	r := c.Navigate(1, 0)
	if !strings.Contains(r.Text, "Exercise 1/10") {
		t.Fatalf("expected current exercise re-render, got %q", r.Text)
	}
	after := mustState(t, store, 1)
	if !before.Equal(after) {
		t.Fatal("out-of-range navigation changed the session")
	}
}

func TestCancelTerminates(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)

	r := c.Cancel(1)
	if !r.Terminated {
		t.Fatal("cancel must terminate")
	}
	if store.InProgress(1) {
		t.Fatal("session survives cancel")
	}
}

func TestSkipAdvancesPronunciationOnly(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)

	// Skip outside pronunciation practice re-renders without moving.
	before := mustState(t, store, 1)
	c.Skip(1)
	after := mustState(t, store, 1)
	if !before.Equal(after) {
		t.Fatal("skip changed a non-pronunciation exercise")
	}

	c.Navigate(1, 3)
	c.Skip(1)
	s := mustState(t, store, 1)
	if p := s.PerExercise[3]; p == nil || p.ItemIndex != 1 {
		t.Fatalf("skip did not advance: %+v", p)
	}

	c.Skip(1)
	r := c.Skip(1)
	if !strings.Contains(r.Text, "Your score: 0/3.") {
		t.Fatalf("expected zero-score summary after skipping all, got %q", r.Text)
	}
}

func TestPronunciationRetrySetsFlag(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)
	c.Navigate(1, 3)

	r := c.Submit(1, "mumble")
	if !strings.Contains(r.Text, msgPronRetry) {
		t.Fatalf("expected retry feedback, got %q", r.Text)
	}
	s := mustState(t, store, 1)
	if !s.VoiceRetry {
		t.Fatal("retry flag not set")
	}
	if s.PerExercise[3].ItemIndex != 0 {
		t.Fatal("retry must not advance the item")
	}

	r = c.Submit(1, "The weather is wonderful today.")
	if !strings.Contains(r.Text, msgPronExcellent) {
		t.Fatalf("expected excellent feedback, got %q", r.Text)
	}
	s = mustState(t, store, 1)
	if s.VoiceRetry {
		t.Fatal("retry flag survived a passing attempt")
	}
	if s.PerExercise[3].ItemIndex != 1 || s.Score != 1 {
		t.Fatalf("passing attempt did not score: %+v", s)
	}
}

func TestPronunciationConsecutiveRetryEscalates(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)
	c.Navigate(1, 3)

	r := c.Submit(1, "mumble")
	if !strings.Contains(r.Text, msgPronRetry) {
		t.Fatalf("first miss should use the plain retry prompt, got %q", r.Text)
	}

	r = c.Submit(1, "mumble grumble")
	if !strings.Contains(r.Text, msgPronRetryAgain) {
		t.Fatalf("second consecutive miss should escalate, got %q", r.Text)
	}
	s := mustState(t, store, 1)
	if !s.VoiceRetry {
		t.Fatal("retry flag must stay set across consecutive misses")
	}

	r = c.Submit(1, "The weather is wonderful today.")
	if !strings.Contains(r.Text, msgPronExcellent) {
		t.Fatalf("expected excellent feedback, got %q", r.Text)
	}
	if mustState(t, store, 1).VoiceRetry {
		t.Fatal("retry flag survived a passing attempt")
	}
}

func TestRetryFlagCommittedEveryTurn(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)
	c.Navigate(1, 3)
	c.Submit(1, "mumble")
	if !mustState(t, store, 1).VoiceRetry {
		t.Fatal("retry flag not stored after a miss")
	}

	// Skipping the sentence must persist the cleared flag.
	c.Skip(1)
	if mustState(t, store, 1).VoiceRetry {
		t.Fatal("retry flag survived a skip")
	}

	c.Submit(1, "mumble")
	// Leaving the exercise must persist the cleared flag too.
	c.Navigate(1, 2)
	if mustState(t, store, 1).VoiceRetry {
		t.Fatal("retry flag survived navigation")
	}
}

func TestFreeResponseAcknowledged(t *testing.T) {
	c, _ := newTestController(t, Options{})
	c.Start(1)
	c.Navigate(1, 7)

	r := c.Submit(1, "I love the old harbour, it is quiet in the morning.")
	if !strings.Contains(r.Text, "complete!") {
		t.Fatalf("expected completion, got %q", r.Text)
	}
	if strings.Contains(r.Text, "Your score") {
		t.Fatalf("free response must not show a score, got %q", r.Text)
	}
}

func TestVoiceSubmissionScores(t *testing.T) {
	tr := &stubTranscriber{text: "an umbrella"}
	c, store := newTestController(t, Options{Transcriber: tr})
	c.Start(1)
	c.Navigate(1, 2)

	r := c.SubmitVoice(context.Background(), 1, speech.Audio{FileID: "f1"})
	if !strings.Contains(r.Text, msgCorrect) {
		t.Fatalf("expected correct feedback, got %q", r.Text)
	}
	if r.Heard != "an umbrella" {
		t.Fatalf("heard = %q, want the transcript", r.Heard)
	}
	s := mustState(t, store, 1)
	if s.Score != 1 {
		t.Fatalf("voice answer not scored: %+v", s)
	}
}

func TestVoiceFailureLeavesStateUntouched(t *testing.T) {
	tr := &stubTranscriber{err: speech.ErrServiceUnavailable}
	c, store := newTestController(t, Options{Transcriber: tr})
	c.Start(1)

	before := mustState(t, store, 1)
	r := c.SubmitVoice(context.Background(), 1, speech.Audio{FileID: "f1"})
	if r.Text != msgVoiceUnavailable {
		t.Fatalf("text = %q, want unavailable notice", r.Text)
	}
	after := mustState(t, store, 1)
	if !before.Equal(after) {
		t.Fatal("failed transcription changed the session")
	}
}

func TestVoiceNoSpeech(t *testing.T) {
	tr := &stubTranscriber{err: speech.ErrNoSpeech}
	c, _ := newTestController(t, Options{Transcriber: tr})
	c.Start(1)

	r := c.SubmitVoice(context.Background(), 1, speech.Audio{FileID: "f1"})
	if r.Text != msgNoSpeech {
		t.Fatalf("text = %q, want no-speech notice", r.Text)
	}
}

func TestVoiceWithoutTranscriber(t *testing.T) {
	c, _ := newTestController(t, Options{})
	c.Start(1)

	r := c.SubmitVoice(context.Background(), 1, speech.Audio{FileID: "f1"})
	if r.Text != msgVoiceUnavailable {
		t.Fatalf("text = %q, want unavailable notice", r.Text)
	}
}

func TestLateTranscriptDropped(t *testing.T) {
	tr := &stubTranscriber{text: "an umbrella"}
	c, store := newTestController(t, Options{Transcriber: tr})
	c.Start(1)
	c.Navigate(1, 2)

	// The user navigates away while recognition is still running.
	tr.hook = func() { c.Navigate(1, 5) }

	r := c.SubmitVoice(context.Background(), 1, speech.Audio{FileID: "f1"})
	if !strings.Contains(r.Text, "Exercise 5/10") {
		t.Fatalf("expected the current exercise, got %q", r.Text)
	}
	s := mustState(t, store, 1)
	if s.Score != 0 {
		t.Fatalf("late transcript was scored: %+v", s)
	}
}

func TestCompletionRecorded(t *testing.T) {
	rec := newStubRecorder()
	c, _ := newTestController(t, Options{Recorder: rec})
	c.Start(1)
	c.Navigate(1, 4)
	c.Submit(1, "A-4, B-5, C-3, D-1, E-2")

	select {
	case got := <-rec.ch:
		want := recordedCompletion{userID: 1, exercise: 4, score: 5, total: 5}
		if got != want {
			t.Fatalf("recorded %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("completion never reached the recorder")
	}
}

func TestUsersAreIndependent(t *testing.T) {
	c, store := newTestController(t, Options{})
	c.Start(1)
	c.Start(2)

	c.Submit(1, "I am fine")
	s1 := mustState(t, store, 1)
	s2 := mustState(t, store, 2)
	if s1.Score != 1 || s2.Score != 0 {
		t.Fatalf("cross-user leak: user1=%+v user2=%+v", s1, s2)
	}
}
