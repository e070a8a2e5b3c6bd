package speech

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

const (
	DefaultSampleRate      = 16000
	DefaultFrameDuration   = 32 * time.Millisecond
	DefaultEnergyThreshold = 300
	DefaultPauseThreshold  = 800 * time.Millisecond
	DefaultPhraseMin       = 300 * time.Millisecond
	DefaultPhraseLimit     = 15 * time.Second
)

// ListenConfig tunes the energy-threshold voice activity detector.
type ListenConfig struct {
	SampleRate      int
	FrameDuration   time.Duration
	EnergyThreshold float64
	// DynamicEnergy adapts the threshold to ambient noise while waiting for a phrase.
	DynamicEnergy bool
	// PauseThreshold is the silence that ends a phrase.
	PauseThreshold time.Duration
	// PhraseMin drops bursts shorter than this (clicks, bumps).
	PhraseMin time.Duration
	// PhraseLimit caps one phrase; zero means no cap.
	PhraseLimit time.Duration
}

func DefaultListenConfig() ListenConfig {
	return ListenConfig{
		SampleRate:      DefaultSampleRate,
		FrameDuration:   DefaultFrameDuration,
		EnergyThreshold: DefaultEnergyThreshold,
		DynamicEnergy:   true,
		PauseThreshold:  DefaultPauseThreshold,
		PhraseMin:       DefaultPhraseMin,
		PhraseLimit:     DefaultPhraseLimit,
	}
}

func (c ListenConfig) withDefaults() ListenConfig {
	def := DefaultListenConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.FrameDuration <= 0 {
		c.FrameDuration = def.FrameDuration
	}
	if c.EnergyThreshold <= 0 {
		c.EnergyThreshold = def.EnergyThreshold
	}
	if c.PauseThreshold <= 0 {
		c.PauseThreshold = def.PauseThreshold
	}
	if c.PhraseMin < 0 {
		c.PhraseMin = 0
	}
	return c
}

// Listener segments one phrase out of a PCM stream.
type Listener struct {
	cfg ListenConfig
}

func NewListener(cfg ListenConfig) *Listener {
	return &Listener{cfg: cfg.withDefaults()}
}

func (l *Listener) frameBytes() int {
	samples := int(int64(l.cfg.SampleRate) * int64(l.cfg.FrameDuration) / int64(time.Second))
	if samples < 1 {
		samples = 1
	}
	return samples * 2
}

func (l *Listener) frames(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	n := int(d / l.cfg.FrameDuration)
	if n < 1 {
		n = 1
	}
	return n
}

// Listen waits up to timeout of audio for a phrase to start, then records until
// PauseThreshold of silence, PhraseLimit or end of stream. timeout <= 0 returns
// ErrNoSpeech without reading.
func (l *Listener) Listen(r io.Reader, timeout time.Duration) ([]byte, error) {
	frameSize := l.frameBytes()
	waitFrames := l.frames(timeout)
	pauseFrames := l.frames(l.cfg.PauseThreshold)
	minFrames := l.frames(l.cfg.PhraseMin)
	limitFrames := l.frames(l.cfg.PhraseLimit)
	threshold := l.cfg.EnergyThreshold
	// Per-frame damping of the ambient average, 0.15 per second of audio.
	damping := math.Pow(0.15, l.cfg.FrameDuration.Seconds())

	waited := 0
	for {
		var start []byte
		for start == nil {
			if waited >= waitFrames {
				return nil, ErrNoSpeech
			}
			frame, err := readFrame(r, frameSize)
			if errors.Is(err, io.EOF) {
				return nil, ErrNoSpeech
			}
			if err != nil {
				return nil, fmt.Errorf("read audio: %w", err)
			}
			waited++

			energy := rms(frame)
			if energy > threshold {
				start = frame
				break
			}
			if l.cfg.DynamicEnergy {
				threshold = threshold*damping + energy*1.5*(1-damping)
				if threshold < 1 {
					threshold = 1
				}
			}
		}

		phrase := append([]byte(nil), start...)
		total, spoken, silent := 1, 1, 0
		ended := false
		for {
			if limitFrames > 0 && total >= limitFrames {
				break
			}
			frame, err := readFrame(r, frameSize)
			if errors.Is(err, io.EOF) {
				ended = true
				break
			}
			if err != nil {
				return nil, fmt.Errorf("read audio: %w", err)
			}
			phrase = append(phrase, frame...)
			total++

			if rms(frame) > threshold {
				spoken++
				silent = 0
				continue
			}
			silent++
			if silent >= pauseFrames {
				break
			}
		}

		if spoken >= minFrames {
			return phrase, nil
		}
		if ended {
			return nil, ErrNoSpeech
		}
		// Too short to be speech; keep waiting inside the same window. The burst's
		// first frame was already counted.
		waited += total - 1
	}
}

func readFrame(r io.Reader, size int) ([]byte, error) {
	frame := make([]byte, size)
	_, err := io.ReadFull(r, frame)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	return frame, nil
}

// rms is the root-mean-square amplitude of 16-bit little-endian samples.
func rms(frame []byte) float64 {
	samples := len(frame) / 2
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < samples; i++ {
		v := float64(int16(binary.LittleEndian.Uint16(frame[i*2:])))
		sum += v * v
	}
	return math.Sqrt(sum / float64(samples))
}
