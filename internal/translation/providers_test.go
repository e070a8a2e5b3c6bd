package translation

import (
	"context"
	"errors"
	"testing"

	"horse.fit/vaani/internal/failure"
	"horse.fit/vaani/internal/gtranslate"
	"horse.fit/vaani/internal/language"
	"horse.fit/vaani/internal/seq2seq"
)

type stubTokenizer struct {
	encoded [][]string
	decoded [][]int64
	skip    []bool
}

func (s *stubTokenizer) Encode(_ context.Context, texts []string) (seq2seq.Batch, error) {
	s.encoded = append(s.encoded, texts)
	return seq2seq.Pad([][]int64{{5, 6, 1}}, 0)
}

func (s *stubTokenizer) Decode(_ context.Context, ids []int64, skipSpecialTokens bool) (string, error) {
	s.decoded = append(s.decoded, ids)
	s.skip = append(s.skip, skipSpecialTokens)
	return "नमस्ते", nil
}

type stubModel struct {
	err  error
	rows []int
}

func (m *stubModel) ID() string {
	return "Helsinki-NLP/opus-mt-en-hi"
}

func (m *stubModel) Generate(_ context.Context, batch seq2seq.Batch) ([][]int64, error) {
	m.rows = append(m.rows, batch.Rows())
	if m.err != nil {
		return nil, m.err
	}
	return [][]int64{{0, 42, 43, 1}, {0, 99, 1}}, nil
}

type stubLoader struct {
	requested []string
	err       error
	tokenizer *stubTokenizer
	model     *stubModel
}

func (l *stubLoader) Load(_ context.Context, modelID string) (seq2seq.Tokenizer, seq2seq.Model, error) {
	l.requested = append(l.requested, modelID)
	if l.err != nil {
		return nil, nil, l.err
	}
	return l.tokenizer, l.model, nil
}

func TestLocalNeuralProvider_SingleSentenceBatch(t *testing.T) {
	t.Parallel()

	tok := &stubTokenizer{}
	model := &stubModel{}
	loader := &stubLoader{tokenizer: tok, model: model}
	backend := NewLocalNeuralBackend(loader, KeyByModel)

	pair := language.Pair{Source: language.English, Target: language.FixedTargets[0], Model: "Helsinki-NLP/opus-mt-en-hi"}
	provider, err := backend.Load(context.Background(), pair)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out, err := provider.Translate(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if out != "नमस्ते" {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(tok.encoded) != 1 || len(tok.encoded[0]) != 1 || tok.encoded[0][0] != "Hello" {
		t.Fatalf("expected one single-element batch, got %v", tok.encoded)
	}
	if model.rows[0] != 1 {
		t.Fatalf("expected one-row batch, got %d", model.rows[0])
	}
	if len(tok.decoded) != 1 || len(tok.decoded[0]) != 4 || !tok.skip[0] {
		t.Fatalf("expected first sequence decoded with special tokens skipped, got %v %v", tok.decoded, tok.skip)
	}
	if loader.requested[0] != "Helsinki-NLP/opus-mt-en-hi" {
		t.Fatalf("unexpected model request: %v", loader.requested)
	}
}

func TestLocalNeuralProvider_FailuresAreTranslationFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("shape mismatch")
	provider := NewLocalNeuralProvider(&stubTokenizer{}, &stubModel{err: cause})
	_, err := provider.Translate(context.Background(), "Hello")
	if !errors.Is(err, failure.TranslationFailure) || !errors.Is(err, cause) {
		t.Fatalf("expected TranslationFailure wrapping cause, got %v", err)
	}
}

func TestLocalNeuralBackend_Keys(t *testing.T) {
	t.Parallel()

	pair := language.Pair{Source: language.English, Target: language.FixedTargets[2], Model: "Helsinki-NLP/opus-mt-en-ta"}
	if got := NewLocalNeuralBackend(nil, KeyByTarget).Key(pair); got != "Tamil" {
		t.Fatalf("unexpected target key: %q", got)
	}
	if got := NewLocalNeuralBackend(nil, KeyByModel).Key(pair); got != "Helsinki-NLP/opus-mt-en-ta" {
		t.Fatalf("unexpected model key: %q", got)
	}

	if _, err := NewLocalNeuralBackend(&stubLoader{}, KeyByModel).Load(context.Background(), language.Pair{}); err == nil {
		t.Fatalf("expected a pair without model to fail")
	}
	missing := errors.New("404")
	if _, err := NewLocalNeuralBackend(&stubLoader{err: missing}, KeyByModel).Load(context.Background(), pair); !errors.Is(err, missing) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

type stubService struct {
	calls  [][3]string
	result gtranslate.Result
	err    error
}

func (s *stubService) Translate(_ context.Context, text, source, target string) (gtranslate.Result, error) {
	s.calls = append(s.calls, [3]string{text, source, target})
	return s.result, s.err
}

func servicePair(t *testing.T, source, target string) language.Pair {
	t.Helper()

	r, err := language.NewCodeMapResolver(language.ServiceLanguages)
	if err != nil {
		t.Fatalf("build resolver: %v", err)
	}
	pair, err := r.Resolve(source, target)
	if err != nil {
		t.Fatalf("resolve %s->%s: %v", source, target, err)
	}
	return pair
}

func TestRemoteServiceProvider_SendsCodes(t *testing.T) {
	t.Parallel()

	service := &stubService{result: gtranslate.Result{Text: "வணக்கம்"}}
	backend := NewRemoteServiceBackend(service)
	pair := servicePair(t, "Hindi", "Tamil")

	if got := backend.Key(pair); got != "hi->ta" {
		t.Fatalf("unexpected key: %q", got)
	}
	provider, err := backend.Load(context.Background(), pair)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out, err := provider.Translate(context.Background(), "नमस्ते")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if out != "வணக்கம்" || service.calls[0] != [3]string{"नमस्ते", "hi", "ta"} {
		t.Fatalf("unexpected call: out=%q calls=%v", out, service.calls)
	}
}

func TestRemoteServiceProvider_DistinguishesFailureCauses(t *testing.T) {
	t.Parallel()

	service := &stubService{}
	backend := NewRemoteServiceBackend(service)

	unsupported := servicePair(t, "Bodo", "English")
	if got := backend.Key(unsupported); got != "?bodo->en" {
		t.Fatalf("unexpected key for unsupported language: %q", got)
	}
	provider, _ := backend.Load(context.Background(), unsupported)
	_, err := provider.Translate(context.Background(), "text")
	if !errors.Is(err, failure.TranslationFailure) || !errors.Is(err, ErrUnsupportedPair) || errors.Is(err, ErrServiceTransport) {
		t.Fatalf("expected TranslationFailure(ErrUnsupportedPair), got %v", err)
	}
	if len(service.calls) != 0 {
		t.Fatalf("expected no service call for a language without code")
	}

	provider, _ = backend.Load(context.Background(), servicePair(t, "English", "Hindi"))
	service.err = gtranslate.ErrUnsupportedLanguage
	_, err = provider.Translate(context.Background(), "text")
	if !errors.Is(err, ErrUnsupportedPair) || !errors.Is(err, gtranslate.ErrUnsupportedLanguage) {
		t.Fatalf("expected service rejection to map to ErrUnsupportedPair, got %v", err)
	}

	service.err = &gtranslate.StatusError{StatusCode: 429}
	_, err = provider.Translate(context.Background(), "text")
	if !errors.Is(err, failure.TranslationFailure) || !errors.Is(err, ErrServiceTransport) || errors.Is(err, ErrUnsupportedPair) {
		t.Fatalf("expected TranslationFailure(ErrServiceTransport), got %v", err)
	}
}
