package speech

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"horse.fit/vaani/internal/failure"
)

type stubTTS struct {
	mu    sync.Mutex
	calls []string
	codes []string
	err   error
}

func (s *stubTTS) Fetch(_ context.Context, text, code string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, text)
	s.codes = append(s.codes, code)
	if s.err != nil {
		return nil, s.err
	}
	return []byte("ID3" + text), nil
}

func TestSynthesize_EmptyInputNeverCallsBackend(t *testing.T) {
	t.Parallel()

	tts := &stubTTS{}
	s := NewSynthesizer(tts, t.TempDir(), []string{"hi"}, zerolog.Nop())
	for _, code := range []string{"hi", "xx", ""} {
		_, err := s.Synthesize(context.Background(), "  \n ", code)
		if !errors.Is(err, failure.SynthesisEmptyInput) {
			t.Fatalf("expected SynthesisEmptyInput for %q, got %v", code, err)
		}
	}
	if len(tts.calls) != 0 {
		t.Fatalf("expected no backend calls, got %d", len(tts.calls))
	}
}

func TestSynthesize_WritesArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tts := &stubTTS{}
	s := NewSynthesizer(tts, dir, []string{"hi", "ta"}, zerolog.Nop())

	artifact, err := s.Synthesize(context.Background(), "नमस्ते", "HI")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if artifact.Fallback || artifact.Language != "hi" {
		t.Fatalf("unexpected artifact: %+v", artifact)
	}
	if filepath.Dir(artifact.Path) != dir || !artifactNamePattern.MatchString(artifact.Name) {
		t.Fatalf("unexpected artifact location: %s", artifact.Path)
	}
	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "ID3नमस्ते" || artifact.Bytes != int64(len(data)) {
		t.Fatalf("unexpected artifact content: %q", data)
	}

	path, err := s.ArtifactPath(artifact.Name)
	if err != nil || path != artifact.Path {
		t.Fatalf("unexpected artifact path lookup: %q %v", path, err)
	}
	if _, err := s.ArtifactPath("../../etc/passwd"); err == nil {
		t.Fatalf("expected traversal name to be rejected")
	}
}

func TestSynthesize_ExplicitFallback(t *testing.T) {
	t.Parallel()

	tts := &stubTTS{}
	s := NewSynthesizer(tts, t.TempDir(), []string{"hi"}, zerolog.Nop())

	artifact, err := s.Synthesize(context.Background(), "Hello", "brx")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if !artifact.Fallback || artifact.Language != DefaultVoice || artifact.RequestedLanguage != "brx" {
		t.Fatalf("expected explicit fallback, got %+v", artifact)
	}
	if tts.codes[0] != DefaultVoice {
		t.Fatalf("expected backend to be asked for %q, got %q", DefaultVoice, tts.codes[0])
	}
}

func TestSynthesize_ChunksLongText(t *testing.T) {
	t.Parallel()

	tts := &stubTTS{}
	s := NewSynthesizer(tts, t.TempDir(), nil, zerolog.Nop())
	text := strings.Repeat("This is a sentence. ", 12)

	artifact, err := s.Synthesize(context.Background(), text, "en")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if artifact.Chunks != len(tts.calls) || artifact.Chunks < 3 {
		t.Fatalf("unexpected chunk count: artifact=%d calls=%d", artifact.Chunks, len(tts.calls))
	}
}

func TestSynthesize_BackendFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("429 too many requests")
	s := NewSynthesizer(&stubTTS{err: cause}, t.TempDir(), nil, zerolog.Nop())
	_, err := s.Synthesize(context.Background(), "Hello", "en")
	if !errors.Is(err, failure.SynthesisFailure) || !errors.Is(err, cause) {
		t.Fatalf("expected SynthesisFailure wrapping cause, got %v", err)
	}
}

func TestGoogleTTS_Fetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/translate_tts" || q.Get("client") != "tw-ob" || q.Get("tl") != "ta" || q.Get("q") != "வணக்கம்" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	client := NewGoogleTTS(server.URL, 0)
	audio, err := client.Fetch(context.Background(), "வணக்கம்", "ta")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("unexpected audio: %q", audio)
	}
	if _, err := client.Fetch(context.Background(), "x", "zz"); err == nil {
		t.Fatalf("expected error status to fail")
	}
}

func TestCommandPlayer(t *testing.T) {
	t.Parallel()

	var started []string
	p := NewCommandPlayer([]string{"afplay", "-v", "1"}, zerolog.Nop())
	p.start = func(cmd *exec.Cmd) error {
		started = cmd.Args
		return nil
	}
	if err := p.Play("/tmp/translated.mp3"); err != nil {
		t.Fatalf("play: %v", err)
	}
	if strings.Join(started, " ") != "afplay -v 1 /tmp/translated.mp3" {
		t.Fatalf("unexpected command: %q", started)
	}

	p.start = func(*exec.Cmd) error { return exec.ErrNotFound }
	if err := p.Play("/tmp/translated.mp3"); !errors.Is(err, failure.PlaybackFailure) {
		t.Fatalf("expected PlaybackFailure, got %v", err)
	}
	if err := p.Play(""); !errors.Is(err, failure.PlaybackFailure) {
		t.Fatalf("expected PlaybackFailure for empty path, got %v", err)
	}
}

func TestDefaultPlayerCommand(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"windows": "cmd",
		"darwin":  "afplay",
		"linux":   "xdg-open",
	}
	for goos, want := range cases {
		if got := DefaultPlayerCommand(goos)[0]; got != want {
			t.Fatalf("%s: got %q want %q", goos, got, want)
		}
	}
}
