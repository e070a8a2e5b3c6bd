package translation

import (
	"context"
	"errors"

	"horse.fit/vaani/internal/language"
)

var (
	// ErrUnsupportedPair means the backend cannot translate the requested codes.
	ErrUnsupportedPair = errors.New("language pair not supported by translation service")
	// ErrServiceTransport covers network, quota and malformed-response failures.
	ErrServiceTransport = errors.New("translation service request failed")
	// ErrEmptyTranslation means a backend answered with no text.
	ErrEmptyTranslation = errors.New("translation result was empty")
)

// Provider translates text for the language pair it was loaded for.
type Provider interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Backend acquires providers for resolved pairs. Load may be slow; callers memoize the
// result under Key.
type Backend interface {
	Name() string
	Key(pair language.Pair) string
	Load(ctx context.Context, pair language.Pair) (Provider, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, text string) (string, error)

func (f ProviderFunc) Translate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}
