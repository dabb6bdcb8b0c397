package speech

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPTranscriber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": "hello there"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL, time.Second)
	got, err := tr.Transcribe(context.Background(), Audio{FileID: "f1", Content: strings.NewReader("ogg")})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "hello there" {
		t.Fatalf("transcript = %q", got)
	}
}

func TestHTTPTranscriberEmptyTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": "  "}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL, time.Second)
	_, err := tr.Transcribe(context.Background(), Audio{Content: strings.NewReader("ogg")})
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("err = %v, want ErrNoSpeech", err)
	}
}

func TestHTTPTranscriberServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL, time.Second)
	_, err := tr.Transcribe(context.Background(), Audio{Content: strings.NewReader("ogg")})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestHTTPSynthesizerCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("audio-bytes"))
	}))
	defer srv.Close()

	syn := NewHTTPSynthesizer(srv.URL, t.TempDir(), time.Second)

	for i := 0; i < 3; i++ {
		data, err := syn.Synthesize(context.Background(), "The weather is wonderful today.")
		if err != nil {
			t.Fatalf("Synthesize: %v", err)
		}
		if string(data) != "audio-bytes" {
			t.Fatalf("audio = %q", data)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("server hit %d times, want 1", got)
	}
}

func TestHTTPSynthesizerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	syn := NewHTTPSynthesizer(srv.URL, "", time.Second)
	_, err := syn.Synthesize(context.Background(), "anything")
	if !errors.Is(err, ErrSynthesisUnavailable) {
		t.Fatalf("err = %v, want ErrSynthesisUnavailable", err)
	}
}

func TestDisabledCollaborators(t *testing.T) {
	if _, err := (DisabledTranscriber{}).Transcribe(context.Background(), Audio{}); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("disabled transcriber err = %v", err)
	}
	if _, err := (DisabledSynthesizer{}).Synthesize(context.Background(), "x"); !errors.Is(err, ErrSynthesisUnavailable) {
		t.Fatalf("disabled synthesizer err = %v", err)
	}
}
