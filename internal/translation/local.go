package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"horse.fit/vaani/internal/failure"
	"horse.fit/vaani/internal/language"
	"horse.fit/vaani/internal/seq2seq"
)

// CacheKeyMode picks what a LocalNeuralBackend memoizes handles under.
type CacheKeyMode int

const (
	// KeyByModel keys on the model id (one handle per directed pair).
	KeyByModel CacheKeyMode = iota
	// KeyByTarget keys on the target name, for fixed-source profiles.
	KeyByTarget
)

// LocalNeuralBackend loads pretrained seq2seq models by id.
type LocalNeuralBackend struct {
	loader  seq2seq.Loader
	keyMode CacheKeyMode
}

func NewLocalNeuralBackend(loader seq2seq.Loader, keyMode CacheKeyMode) *LocalNeuralBackend {
	return &LocalNeuralBackend{loader: loader, keyMode: keyMode}
}

func (b *LocalNeuralBackend) Name() string {
	return "local"
}

func (b *LocalNeuralBackend) Key(pair language.Pair) string {
	if b.keyMode == KeyByTarget {
		return pair.Target.Name
	}
	return pair.Model
}

func (b *LocalNeuralBackend) Load(ctx context.Context, pair language.Pair) (Provider, error) {
	if b == nil || b.loader == nil {
		return nil, errors.New("local backend has no model loader")
	}
	modelID := strings.TrimSpace(pair.Model)
	if modelID == "" {
		return nil, fmt.Errorf("no model configured for %s", pair)
	}
	tokenizer, model, err := b.loader.Load(ctx, modelID)
	if err != nil {
		return nil, err
	}
	return &LocalNeuralProvider{tokenizer: tokenizer, model: model}, nil
}

// LocalNeuralProvider owns one tokenizer/model pair.
type LocalNeuralProvider struct {
	tokenizer seq2seq.Tokenizer
	model     seq2seq.Model
}

func NewLocalNeuralProvider(tokenizer seq2seq.Tokenizer, model seq2seq.Model) *LocalNeuralProvider {
	return &LocalNeuralProvider{tokenizer: tokenizer, model: model}
}

// Translate encodes text as a one-row batch, generates and decodes the first sequence
// with special tokens removed.
func (p *LocalNeuralProvider) Translate(ctx context.Context, text string) (string, error) {
	batch, err := p.tokenizer.Encode(ctx, []string{text})
	if err != nil {
		return "", failure.Wrap(failure.TranslationFailure, err, "Could not tokenize the input.")
	}
	sequences, err := p.model.Generate(ctx, batch)
	if err != nil {
		return "", failure.Wrap(failure.TranslationFailure, err, "Translation model %s failed.", p.model.ID())
	}
	if len(sequences) == 0 {
		return "", failure.Wrap(failure.TranslationFailure, seq2seq.ErrEmptyOutput, "Translation model %s returned nothing.", p.model.ID())
	}
	out, err := p.tokenizer.Decode(ctx, sequences[0], true)
	if err != nil {
		return "", failure.Wrap(failure.TranslationFailure, err, "Could not decode the translation.")
	}
	return out, nil
}
