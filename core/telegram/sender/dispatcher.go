// Package sender delivers outbound Telegram calls on a small worker pool
// so handler goroutines never block on the Bot API. Calls that hit a
// transient network failure or a flood wait are retried with backoff.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"lingobot/core/logger"
	"lingobot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueFull is returned by Enqueue when the outbound queue is at
	// capacity. Callers may fall back to a synchronous send.
	ErrQueueFull = errors.New("sender: queue full")

	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("sender: queue closed")
)

// Options tunes the dispatcher. Zero values pick conservative defaults
// sized for an interactive bot, not a broadcast pipeline.
type Options struct {
	// Workers is the number of concurrent senders. Default 2.
	Workers int

	// QueueSize bounds the pending call buffer. Default 64.
	QueueSize int

	// MaxAttempts caps delivery attempts per call, including the first.
	// Default 3.
	MaxAttempts int

	// RetryBackoff is the pause before the second attempt; it doubles on
	// each further attempt. Default 500ms.
	RetryBackoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 500 * time.Millisecond
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
	queued   time.Time
}

// Dispatcher owns the worker pool. Create with NewDispatcher, stop with
// Close; Close drains jobs already queued.
type Dispatcher struct {
	opts   Options
	jobs   chan job
	wg     sync.WaitGroup
	closed atomic.Bool
	failed atomic.Int64
}

func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		opts: opts.withDefaults(),
		jobs: make(chan job, opts.withDefaults().QueueSize),
	}
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue schedules run on the pool. The action and endpoint strings are
// only used for logging. Enqueue never blocks: a full queue returns
// ErrQueueFull immediately.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("sender: nil run func")
	}
	if d.closed.Load() {
		return ErrQueueClosed
	}
	j := job{ctx: ctx, action: action, endpoint: endpoint, run: run, queued: time.Now()}
	select {
	case d.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// FailedCount reports deliveries that exhausted all attempts since start.
func (d *Dispatcher) FailedCount() int64 {
	return d.failed.Load()
}

// Close stops accepting new jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	if d.closed.Swap(true) {
		return
	}
	close(d.jobs)
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	var err error
	backoff := d.opts.RetryBackoff
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		err = j.run()
		if err == nil {
			logger.Debug(ctx, "tg.sender", "send.ok",
				slog.String("action", j.action),
				slog.String("endpoint", j.endpoint),
				slog.Int("attempt", attempt),
				slog.Duration("queued", logger.RoundMS(start.Sub(j.queued))),
				slog.Duration("duration", logger.RoundMS(time.Since(start))),
			)
			return
		}

		wait, retry := retryDelay(err, backoff)
		if !retry || attempt == d.opts.MaxAttempts {
			break
		}
		logger.Debug(ctx, "tg.sender", "send.retry",
			slog.String("action", j.action),
			slog.String("endpoint", j.endpoint),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("err", redactToken(err.Error())),
		)
		time.Sleep(wait)
		backoff *= 2
	}

	d.failed.Add(1)
	logger.Warn(ctx, "tg.sender", "send.failed",
		slog.String("action", j.action),
		slog.String("endpoint", j.endpoint),
		slog.String("class", classify(err)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
		slog.String("err", redactToken(err.Error())),
	)
}

// retryDelay decides whether err is transient and how long to wait before
// the next attempt. Flood waits honor the server-provided pause.
func retryDelay(err error, backoff time.Duration) (time.Duration, bool) {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second, true
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		// 4xx means the request itself is wrong; retrying won't help.
		if apiErr.Code >= 400 && apiErr.Code < 500 {
			return 0, false
		}
		return backoff, true
	}

	if netutil.ShouldRetry(err) {
		return backoff, true
	}
	return 0, false
}

func classify(err error) string {
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return "flood"
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code >= 500 {
			return "api_5xx"
		}
		return "api_4xx"
	}
	if netutil.ShouldRetry(err) {
		return "network"
	}
	return "other"
}

// Bot API URLs embed the token; never let it reach the logs.
var tokenRe = regexp.MustCompile(`bot\d+:[\w-]+`)

func redactToken(s string) string {
	return tokenRe.ReplaceAllString(s, "bot<redacted>")
}
