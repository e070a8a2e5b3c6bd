package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"horse.fit/vaani/internal/failure"
	"horse.fit/vaani/internal/globaltime"
	"horse.fit/vaani/internal/language"
	"horse.fit/vaani/internal/modelcache"
	"horse.fit/vaani/internal/speech"
)

// AutoSource asks the session to detect the source language.
const AutoSource = "auto"

// State is a step of one translation request.
type State string

const (
	StateIdle        State = "idle"
	StateValidating  State = "validating"
	StateResolving   State = "resolving"
	StateLoading     State = "loading"
	StateTranslating State = "translating"
	StateDone        State = "done"
	StateRejected    State = "rejected"
	StateFailed      State = "failed"
)

// Detector guesses a language code for text.
type Detector interface {
	Detect(text string) (string, bool)
}

// Synthesizer voices text in a language code.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, code string) (*speech.Artifact, error)
}

// Result is a completed translation.
type Result struct {
	RequestID      string        `json:"request_id"`
	Text           string        `json:"text"`
	Source         language.Spec `json:"source"`
	Target         language.Spec `json:"target"`
	DetectedSource bool          `json:"detected_source,omitempty"`
	Profile        string        `json:"profile"`
	Provider       string        `json:"provider"`
	Model          string        `json:"model,omitempty"`
	CacheKey       string        `json:"cache_key"`
	CacheHit       bool          `json:"cache_hit"`
	LatencyMs      int64         `json:"latency_ms"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Outcome is delivered once by TranslateAsync.
type Outcome struct {
	Result *Result
	Err    error
}

// Session runs translation requests for one profile. Sessions are safe for concurrent
// use and may share one cache.
type Session struct {
	profile  *Profile
	cache    *modelcache.Cache[Provider]
	logger   zerolog.Logger
	detector Detector
	synth    Synthesizer
	player   speech.Player
}

type Option func(*Session)

// WithDetector enables source=auto.
func WithDetector(detector Detector) Option {
	return func(s *Session) {
		s.detector = detector
	}
}

// WithSpeech enables Speak.
func WithSpeech(synth Synthesizer, player speech.Player) Option {
	return func(s *Session) {
		s.synth = synth
		s.player = player
	}
}

func NewSession(profile *Profile, cache *modelcache.Cache[Provider], logger zerolog.Logger, opts ...Option) (*Session, error) {
	if profile == nil || profile.Resolver == nil || profile.Backend == nil {
		return nil, fmt.Errorf("session needs a complete profile")
	}
	if cache == nil {
		return nil, fmt.Errorf("session needs a model cache")
	}
	s := &Session{
		profile: profile,
		cache:   cache,
		logger:  logger.With().Str("profile", profile.Name).Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) Profile() *Profile {
	return s.profile
}

// Translate validates, resolves, loads and translates one request. Every failure is
// terminal and returned as a *failure.Error.
func (s *Session) Translate(ctx context.Context, text, sourceName, targetName string) (*Result, error) {
	requestID := uuid.NewString()
	logger := s.logger.With().Str("request_id", requestID).Logger()
	started := globaltime.Now()
	step(logger, StateIdle, StateValidating)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, s.reject(logger, StateValidating, failure.Rejectf(failure.EmptyInput, "Please enter text to translate."))
	}

	step(logger, StateValidating, StateResolving)
	detected := false
	if s.profile.AutoSource && strings.EqualFold(strings.TrimSpace(sourceName), AutoSource) {
		code, err := s.detectSource(trimmed)
		if err != nil {
			return nil, s.reject(logger, StateResolving, err)
		}
		logger.Debug().Str("detected", code).Msg("source language detected")
		sourceName = code
		detected = true
	}
	pair, err := s.profile.Resolver.Resolve(sourceName, targetName)
	if err != nil {
		return nil, s.reject(logger, StateResolving, err)
	}

	step(logger, StateResolving, StateLoading)
	key := s.profile.Backend.Key(pair)
	provider, hit, err := s.cache.GetOrCreate(ctx, key, func(ctx context.Context) (Provider, error) {
		logger.Info().Str("cache_key", key).Str("pair", pair.String()).Msg("loading translation provider")
		return s.profile.Backend.Load(ctx, pair)
	})
	if err != nil {
		return nil, s.fail(logger, StateLoading, failure.Wrap(failure.ProviderUnavailable, err, "Could not load the translator for %s to %s.", pair.Source.Name, pair.Target.Name))
	}
	if provider == nil {
		return nil, s.fail(logger, StateLoading, failure.Wrap(failure.ProviderUnavailable, errors.New("backend returned no provider"), "Could not load the translator for %s to %s.", pair.Source.Name, pair.Target.Name))
	}

	step(logger, StateLoading, StateTranslating)
	out, err := provider.Translate(ctx, trimmed)
	if err != nil {
		if failure.KindOf(err) != failure.TranslationFailure {
			err = failure.Wrap(failure.TranslationFailure, err, "Translation failed.")
		}
		return nil, s.fail(logger, StateTranslating, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, s.fail(logger, StateTranslating, failure.Wrap(failure.TranslationFailure, ErrEmptyTranslation, "The translator returned no text."))
	}

	result := &Result{
		RequestID:      requestID,
		Text:           out,
		Source:         pair.Source,
		Target:         pair.Target,
		DetectedSource: detected,
		Profile:        s.profile.Name,
		Provider:       s.profile.Backend.Name(),
		Model:          pair.Model,
		CacheKey:       key,
		CacheHit:       hit,
		LatencyMs:      globaltime.MillisSince(started),
		CreatedAt:      globaltime.UTC(),
	}
	step(logger, StateTranslating, StateDone)
	logger.Info().
		Str("pair", pair.String()).
		Str("cache_key", key).
		Bool("cache_hit", hit).
		Int64("latency_ms", result.LatencyMs).
		Msg("translation completed")
	return result, nil
}

// TranslateAsync runs Translate on its own goroutine. The returned channel yields
// exactly one Outcome and is then closed.
func (s *Session) TranslateAsync(ctx context.Context, text, sourceName, targetName string) <-chan Outcome {
	done := make(chan Outcome, 1)
	go func() {
		defer close(done)
		result, err := s.Translate(ctx, text, sourceName, targetName)
		done <- Outcome{Result: result, Err: err}
	}()
	return done
}

// Speak synthesizes text in the target language and, when play is set, hands the
// artifact to the player. A playback error is returned alongside the artifact.
func (s *Session) Speak(ctx context.Context, text, targetName string, play bool) (*speech.Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return nil, failure.Rejectf(failure.SynthesisEmptyInput, "No translated text to speak.")
	}
	if s.synth == nil {
		return nil, failure.Wrap(failure.SynthesisFailure, errors.New("speech output is not configured"), "Speech output is not available for the %s profile.", s.profile.Name)
	}
	target, ok := s.profile.Resolver.Lookup(targetName)
	if !ok {
		return nil, failure.Rejectf(failure.UnknownLanguage, "Unknown target language %q.", strings.TrimSpace(targetName))
	}

	artifact, err := s.synth.Synthesize(ctx, text, target.Code)
	if err != nil {
		return nil, err
	}
	if artifact.Fallback {
		s.logger.Warn().
			Str("language", target.Name).
			Str("voice", artifact.Language).
			Msg("spoken output uses fallback voice")
	}
	if !play || s.player == nil {
		return artifact, nil
	}
	if err := s.player.Play(artifact.Path); err != nil {
		return artifact, err
	}
	return artifact, nil
}

func (s *Session) detectSource(text string) (string, error) {
	if s.detector == nil {
		return "", failure.Rejectf(failure.UnknownLanguage, "Automatic language detection is not available; please select a source language.")
	}
	code, ok := s.detector.Detect(text)
	if !ok {
		return "", failure.Rejectf(failure.UnknownLanguage, "Could not detect the source language; please select it.")
	}
	return code, nil
}

func (s *Session) reject(logger zerolog.Logger, from State, err error) error {
	step(logger, from, StateRejected)
	logger.Info().Str("kind", string(failure.KindOf(err))).Msg(failure.Message(err))
	return err
}

func (s *Session) fail(logger zerolog.Logger, from State, err error) error {
	step(logger, from, StateFailed)
	logger.Error().Err(err).Str("kind", string(failure.KindOf(err))).Msg("translation failed")
	return err
}

func step(logger zerolog.Logger, from, to State) {
	logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("state")
}
