package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"horse.fit/vaani/internal/failure"
	"horse.fit/vaani/internal/globaltime"
)

// DefaultVoice is used when the requested language has no voice.
const DefaultVoice = "en"

var artifactNamePattern = regexp.MustCompile(`^translated-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.mp3$`)

// Synthesizer turns text into mp3 artifacts under dir.
type Synthesizer struct {
	client TTSClient
	dir    string
	voices map[string]struct{}
	logger zerolog.Logger
}

func NewSynthesizer(client TTSClient, dir string, voices []string, logger zerolog.Logger) *Synthesizer {
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(os.TempDir(), "vaani")
	}
	set := make(map[string]struct{}, len(voices)+1)
	for _, code := range voices {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" {
			set[code] = struct{}{}
		}
	}
	set[DefaultVoice] = struct{}{}
	return &Synthesizer{client: client, dir: dir, voices: set, logger: logger}
}

// Supports reports whether code has its own voice.
func (s *Synthesizer) Supports(code string) bool {
	_, ok := s.voices[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// Synthesize voices text in code. An unsupported code falls back to DefaultVoice and
// the artifact is marked Fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, text, code string) (*Artifact, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, failure.Rejectf(failure.SynthesisEmptyInput, "No text to speak.")
	}
	if s == nil || s.client == nil {
		return nil, failure.Wrap(failure.SynthesisFailure, errors.New("synthesizer is not configured"), "Speech output is not available.")
	}

	requested := strings.ToLower(strings.TrimSpace(code))
	voice := requested
	fallback := false
	if !s.Supports(voice) {
		voice = DefaultVoice
		fallback = true
		s.logger.Warn().
			Str("requested_language", requested).
			Str("language", voice).
			Msg("no voice for language, falling back")
	}

	chunks := SplitText(trimmed, MaxChunkRunes)
	var audio []byte
	for i, chunk := range chunks {
		part, err := s.client.Fetch(ctx, chunk, voice)
		if err != nil {
			return nil, failure.Wrap(failure.SynthesisFailure, err, "Could not generate speech (chunk %d of %d).", i+1, len(chunks))
		}
		audio = append(audio, part...)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, failure.Wrap(failure.SynthesisFailure, err, "Could not prepare the audio directory.")
	}
	name := "translated-" + uuid.NewString() + ".mp3"
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return nil, failure.Wrap(failure.SynthesisFailure, err, "Could not save the audio file.")
	}

	s.logger.Debug().Str("artifact", name).Int("chunks", len(chunks)).Int("bytes", len(audio)).Msg("speech synthesized")
	return &Artifact{
		Name:              name,
		Path:              path,
		Language:          voice,
		RequestedLanguage: requested,
		Fallback:          fallback,
		Chunks:            len(chunks),
		Bytes:             int64(len(audio)),
		CreatedAt:         globaltime.UTC(),
	}, nil
}

// ArtifactPath maps an artifact name back to its file, rejecting anything that is not
// a synthesized artifact name.
func (s *Synthesizer) ArtifactPath(name string) (string, error) {
	if !artifactNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
