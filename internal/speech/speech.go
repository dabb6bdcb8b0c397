// Package speech defines the external speech collaborators. Both engines are
// black boxes behind small interfaces; their failure modes are sentinel
// errors the dialogue recovers from within the turn.
package speech

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNoSpeech means the recognizer got audio but found no speech in it.
	ErrNoSpeech = errors.New("speech: no speech detected")
	// ErrServiceUnavailable means the recognition service failed or timed out.
	ErrServiceUnavailable = errors.New("speech: recognition service unavailable")
	// ErrSynthesisUnavailable means text-to-speech could not produce audio.
	ErrSynthesisUnavailable = errors.New("speech: synthesis unavailable")
)

// Audio is a handle to one inbound voice message.
type Audio struct {
	// FileID is the transport-level identifier, used for logging only.
	FileID string
	// Content streams the audio payload.
	Content io.Reader
}

// Transcriber converts spoken audio into a best-effort transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// Synthesizer converts a sentence into a playable audio asset.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// DisabledTranscriber reports the service unavailable for every request.
// It is used when no recognizer endpoint is configured.
type DisabledTranscriber struct{}

func (DisabledTranscriber) Transcribe(context.Context, Audio) (string, error) {
	return "", ErrServiceUnavailable
}

// DisabledSynthesizer degrades pronunciation prompts to text-only.
type DisabledSynthesizer struct{}

func (DisabledSynthesizer) Synthesize(context.Context, string) ([]byte, error) {
	return nil, ErrSynthesisUnavailable
}
