package speech

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/vaani/internal/failure"
)

// DefaultCaptureTimeout matches the listening window of the voice input button.
const DefaultCaptureTimeout = 5 * time.Second

// deviceGrace bounds how long a stalled device may block past the audio window.
const deviceGrace = 2 * time.Second

// Capturer records one phrase and recognizes it.
type Capturer struct {
	source     AudioSource
	listener   *Listener
	recognizer Recognizer
	sampleRate int
	logger     zerolog.Logger
}

func NewCapturer(source AudioSource, recognizer Recognizer, cfg ListenConfig, logger zerolog.Logger) *Capturer {
	listener := NewListener(cfg)
	return &Capturer{
		source:     source,
		listener:   listener,
		recognizer: recognizer,
		sampleRate: listener.cfg.SampleRate,
		logger:     logger,
	}
}

// Capture opens the device, waits up to timeout for speech and returns the recognized
// text. The device is released on every path.
func (c *Capturer) Capture(ctx context.Context, timeout time.Duration) (string, error) {
	if c == nil || c.source == nil || c.recognizer == nil {
		return "", failure.Wrap(failure.CaptureFailure, errors.New("capture is not configured"), "Voice input is not available.")
	}

	if timeout <= 0 {
		return "", failure.Wrap(failure.CaptureTimeout, ErrNoSpeech, "No speech detected within %s.", time.Duration(0))
	}
	deviceCtx, cancel := context.WithTimeout(ctx, timeout+c.listener.cfg.PhraseLimit+deviceGrace)
	defer cancel()

	stream, err := c.source.Open(deviceCtx)
	if err != nil {
		return "", failure.Wrap(failure.CaptureFailure, err, "Could not open the microphone.")
	}
	defer func() {
		if closeErr := stream.Close(); closeErr != nil {
			c.logger.Warn().Err(closeErr).Msg("close audio device")
		}
	}()

	c.logger.Debug().Dur("timeout", timeout).Msg("listening")
	pcm, err := c.listener.Listen(stream, timeout)
	if err != nil {
		if ctx.Err() != nil {
			return "", failure.Wrap(failure.CaptureFailure, ctx.Err(), "Voice input was cancelled.")
		}
		if errors.Is(err, ErrNoSpeech) || deviceCtx.Err() != nil {
			return "", failure.Wrap(failure.CaptureTimeout, err, "No speech detected within %s.", timeout.Round(time.Millisecond))
		}
		return "", failure.Wrap(failure.CaptureFailure, err, "Could not read from the microphone.")
	}

	c.logger.Debug().Int("bytes", len(pcm)).Msg("phrase captured")
	text, err := c.recognizer.Recognize(ctx, pcm, c.sampleRate)
	if errors.Is(err, ErrUnrecognized) {
		return "", failure.Wrap(failure.CaptureUnrecognized, err, "Could not understand the audio.")
	}
	if err != nil {
		return "", failure.Wrap(failure.CaptureFailure, err, "Speech recognition failed.")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", failure.Wrap(failure.CaptureUnrecognized, ErrUnrecognized, "Could not understand the audio.")
	}
	return text, nil
}
