// Package speech brackets translation with microphone capture + recognition on the way
// in and synthesis + playback on the way out.
package speech

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNoSpeech means no phrase started before the listening window closed.
	ErrNoSpeech = errors.New("no speech detected")
	// ErrUnrecognized means the recognizer returned no transcript for the audio.
	ErrUnrecognized = errors.New("speech not recognized")
)

// AudioSource opens a mono 16-bit little-endian PCM stream. Closing the stream releases
// the device.
type AudioSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Recognizer turns captured PCM into text.
type Recognizer interface {
	Recognize(ctx context.Context, pcm []byte, sampleRate int) (string, error)
}

// TTSClient fetches encoded audio for one chunk of text.
type TTSClient interface {
	Fetch(ctx context.Context, text, code string) ([]byte, error)
}

// Player hands an audio file to the platform and returns without waiting for playback.
type Player interface {
	Play(path string) error
}

// Artifact is one synthesized audio file.
type Artifact struct {
	Name              string    `json:"name"`
	Path              string    `json:"-"`
	Language          string    `json:"language"`
	RequestedLanguage string    `json:"requested_language"`
	Fallback          bool      `json:"fallback"`
	Chunks            int       `json:"chunks"`
	Bytes             int64     `json:"bytes"`
	CreatedAt         time.Time `json:"created_at"`
}
