package translation

import (
	"context"
	"errors"
	"fmt"

	"horse.fit/vaani/internal/failure"
	"horse.fit/vaani/internal/gtranslate"
	"horse.fit/vaani/internal/language"
)

// ServiceClient is the multi-directional translation service.
type ServiceClient interface {
	Translate(ctx context.Context, text, source, target string) (gtranslate.Result, error)
}

// RemoteServiceBackend binds one shared service client to code pairs.
type RemoteServiceBackend struct {
	client ServiceClient
}

func NewRemoteServiceBackend(client ServiceClient) *RemoteServiceBackend {
	return &RemoteServiceBackend{client: client}
}

func (b *RemoteServiceBackend) Name() string {
	return "google"
}

// Key is "<src>-><tgt>" over service codes. Languages the service lacks are keyed by
// name so they never share a handle.
func (b *RemoteServiceBackend) Key(pair language.Pair) string {
	return keyPart(pair.Source) + "->" + keyPart(pair.Target)
}

func keyPart(spec language.Spec) string {
	if spec.Supported() {
		return spec.Code
	}
	return "?" + language.NormalizeName(spec.Name)
}

func (b *RemoteServiceBackend) Load(_ context.Context, pair language.Pair) (Provider, error) {
	if b == nil || b.client == nil {
		return nil, errors.New("remote backend has no service client")
	}
	return &RemoteServiceProvider{client: b.client, source: pair.Source, target: pair.Target}, nil
}

// RemoteServiceProvider is a stateless client bound to a source/target code pair.
type RemoteServiceProvider struct {
	client ServiceClient
	source language.Spec
	target language.Spec
}

func (p *RemoteServiceProvider) Translate(ctx context.Context, text string) (string, error) {
	for _, spec := range []language.Spec{p.source, p.target} {
		if !spec.Supported() {
			return "", failure.Wrap(failure.TranslationFailure,
				fmt.Errorf("%s has no service code: %w", spec.Name, ErrUnsupportedPair),
				"%s is not supported by the translation service.", spec.Name)
		}
	}

	result, err := p.client.Translate(ctx, text, p.source.Code, p.target.Code)
	if errors.Is(err, gtranslate.ErrUnsupportedLanguage) {
		return "", failure.Wrap(failure.TranslationFailure,
			fmt.Errorf("%s->%s: %w: %w", p.source.Code, p.target.Code, ErrUnsupportedPair, err),
			"The translation service does not support %s to %s.", p.source.Name, p.target.Name)
	}
	if err != nil {
		return "", failure.Wrap(failure.TranslationFailure,
			fmt.Errorf("%w: %w", ErrServiceTransport, err),
			"The translation service could not be reached.")
	}
	return result.Text, nil
}
