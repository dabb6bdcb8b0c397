package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	tg "lingobot/core/telegram"
	"lingobot/internal/catalog"
	"lingobot/internal/dialogue"
	"lingobot/internal/progress"
	"lingobot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements just enough of tele.Context for handler tests:
// it records sent payloads and carries the per-update key/value bag.
type fakeContext struct {
	tele.Context
	sent   []string
	values map[string]interface{}
}

func newFakeContext() *fakeContext {
	return &fakeContext{values: make(map[string]interface{})}
}

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func (f *fakeContext) Sender() *tele.User { return &tele.User{ID: 7} }

func (f *fakeContext) Chat() *tele.Chat { return &tele.Chat{ID: 7} }

func (f *fakeContext) Update() tele.Update { return tele.Update{ID: 1} }

func (f *fakeContext) Get(key string) interface{} { return f.values[key] }

func (f *fakeContext) Set(key string, val interface{}) { f.values[key] = val }

func (f *fakeContext) lastSent(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("expected a sent message")
	}
	return f.sent[len(f.sent)-1]
}

type stubArchive struct {
	counts map[int]int
	recent []progress.Completion
}

func (a *stubArchive) CountByExercise(ctx context.Context) (map[int]int, error) {
	return a.counts, nil
}

func (a *stubArchive) RecentByUser(ctx context.Context, userID int64, limit int) ([]progress.Completion, error) {
	return a.recent, nil
}

func newTestService(archive Archive) *Service {
	ctrl := dialogue.New(catalog.Builtin(), session.NewStore(), dialogue.Options{})
	return &Service{Ctrl: ctrl, Archive: archive}
}

func TestRegisterHealthcheck(t *testing.T) {
	s := newTestService(nil)
	reg := tg.NewRegistry()
	s.Register(reg)

	_, cmd, ok := reg.LookupCommand("/healthcheck")
	if !ok {
		t.Fatal("healthcheck command not registered")
	}
	if cmd.Hidden || cmd.AdminOnly {
		t.Fatal("healthcheck must be open to everyone")
	}

	fc := newFakeContext()
	if err := cmd.Handler(fc); err != nil {
		t.Fatalf("healthcheck handler: %v", err)
	}
	if got := fc.lastSent(t); got != "Bot is running!" {
		t.Fatalf("unexpected healthcheck reply: %q", got)
	}
}

func TestStatsIncludesRecentCompletions(t *testing.T) {
	finished := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(&stubArchive{
		counts: map[int]int{3: 2, 1: 5},
		recent: []progress.Completion{
			{UserID: 7, Exercise: 4, Score: 3, Total: 5, FinishedAt: finished},
		},
	})

	fc := newFakeContext()
	if err := s.handleStats(fc); err != nil {
		t.Fatalf("stats handler: %v", err)
	}
	got := fc.lastSent(t)
	for _, want := range []string{
		"Completions per exercise:",
		"1: 5",
		"3: 2",
		"Your recent completions:",
		"Exercise 4: 3/5 on 2026-08-01",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("stats output missing %q:\n%s", want, got)
		}
	}
}

func TestStatsWithoutArchive(t *testing.T) {
	s := newTestService(nil)
	fc := newFakeContext()
	if err := s.handleStats(fc); err != nil {
		t.Fatalf("stats handler: %v", err)
	}
	if got := fc.lastSent(t); got != "The progress archive is disabled." {
		t.Fatalf("unexpected reply without archive: %q", got)
	}
}
