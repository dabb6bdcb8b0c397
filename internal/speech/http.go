package speech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lingobot/core/logger"
)

const defaultTimeout = 15 * time.Second

// HTTPTranscriber posts raw audio to a recognition endpoint that answers
// with {"text": "..."}. An empty transcript maps to ErrNoSpeech, transport
// and server failures to ErrServiceUnavailable.
type HTTPTranscriber struct {
	url    string
	client *http.Client
}

// NewHTTPTranscriber builds a transcriber for the given endpoint.
func NewHTTPTranscriber(url string, timeout time.Duration) *HTTPTranscriber {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPTranscriber{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, audio Audio) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, audio.Content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		logger.Speech.Warn("stt request failed",
			slog.String("event", "stt.request"),
			slog.String("file_id", audio.FileID),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %s", ErrServiceUnavailable, resp.Status)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrServiceUnavailable, err)
	}
	transcript := strings.TrimSpace(out.Text)
	if transcript == "" {
		return "", ErrNoSpeech
	}

	logger.Speech.Debug("stt ok",
		slog.String("event", "stt.request"),
		slog.String("file_id", audio.FileID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return transcript, nil
}

// HTTPSynthesizer posts {"text": "..."} to a synthesis endpoint and caches
// the returned audio on disk keyed by a hash of the sentence, so repeated
// prompts never hit the service twice.
type HTTPSynthesizer struct {
	url      string
	cacheDir string
	mu       sync.Mutex
	client   *http.Client
}

// NewHTTPSynthesizer builds a synthesizer for the given endpoint. cacheDir
// may be empty to disable caching.
func NewHTTPSynthesizer(url, cacheDir string, timeout time.Duration) *HTTPSynthesizer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			logger.Speech.Warn("tts cache dir unavailable",
				slog.String("event", "tts.cache"),
				slog.String("dir", cacheDir),
				slog.String("err", err.Error()),
			)
			cacheDir = ""
		}
	}
	return &HTTPSynthesizer{
		url:      url,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: timeout},
	}
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:16])
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	var cachePath string
	if s.cacheDir != "" {
		cachePath = filepath.Join(s.cacheDir, cacheKey(text)+".ogg")
		if data, err := os.ReadFile(cachePath); err == nil {
			return data, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil {
			return data, nil
		}
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Speech.Warn("tts request failed",
			slog.String("event", "tts.request"),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", ErrSynthesisUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %s", ErrSynthesisUnavailable, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisUnavailable, err)
	}

	if cachePath != "" {
		if err := os.WriteFile(cachePath, data, 0o644); err != nil {
			logger.Speech.Warn("tts cache write failed",
				slog.String("event", "tts.cache"),
				slog.String("err", err.Error()),
			)
		}
	}
	return data, nil
}
