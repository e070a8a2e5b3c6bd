package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/vaani/internal/failure"
)

func pcmFrames(amplitude int16, d time.Duration) []byte {
	samples := int(int64(DefaultSampleRate) * int64(d) / int64(time.Second))
	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := amplitude
		if i%2 == 1 {
			v = -amplitude
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

type stubSource struct {
	audio   []byte
	openErr error
	opened  atomic.Int32
	closed  atomic.Int32
}

func (s *stubSource) Open(context.Context) (io.ReadCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opened.Add(1)
	return &stubStream{Reader: bytes.NewReader(s.audio), closed: &s.closed}, nil
}

type stubStream struct {
	*bytes.Reader
	closed *atomic.Int32
}

func (s *stubStream) Close() error {
	s.closed.Add(1)
	return nil
}

type stubRecognizer struct {
	text  string
	err   error
	calls int
	got   []byte
}

func (r *stubRecognizer) Recognize(_ context.Context, pcm []byte, _ int) (string, error) {
	r.calls++
	r.got = pcm
	return r.text, r.err
}

func TestCapture_ZeroTimeoutWithNoInput(t *testing.T) {
	t.Parallel()

	source := &stubSource{}
	recognizer := &stubRecognizer{text: "never"}
	c := NewCapturer(source, recognizer, DefaultListenConfig(), zerolog.Nop())

	_, err := c.Capture(context.Background(), 0)
	if !errors.Is(err, failure.CaptureTimeout) {
		t.Fatalf("expected CaptureTimeout, got %v", err)
	}
	if recognizer.calls != 0 {
		t.Fatalf("expected recognizer to be skipped, got %d calls", recognizer.calls)
	}
	if source.opened.Load() != 0 {
		t.Fatalf("expected device to stay closed, got opened=%d", source.opened.Load())
	}
}

func TestCapture_ZeroTimeoutSkipsMissingDevice(t *testing.T) {
	t.Parallel()

	source := &stubSource{openErr: errors.New("no such device")}
	_, err := NewCapturer(source, &stubRecognizer{}, DefaultListenConfig(), zerolog.Nop()).Capture(context.Background(), 0)
	if !errors.Is(err, failure.CaptureTimeout) {
		t.Fatalf("expected CaptureTimeout, got %v", err)
	}
}

func TestCapture_RecorderExitIsFailure(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	c := NewCapturer(NewCommandSource([]string{"sh", "-c", "exit 1"}), &stubRecognizer{}, DefaultListenConfig(), zerolog.Nop())
	_, err := c.Capture(context.Background(), time.Second)
	if !errors.Is(err, failure.CaptureFailure) {
		t.Fatalf("expected CaptureFailure for failed recorder, got %v", err)
	}

	c = NewCapturer(NewCommandSource([]string{"sh", "-c", "exit 0"}), &stubRecognizer{}, DefaultListenConfig(), zerolog.Nop())
	_, err = c.Capture(context.Background(), time.Second)
	if !errors.Is(err, failure.CaptureTimeout) {
		t.Fatalf("expected CaptureTimeout for a recorder that ends cleanly, got %v", err)
	}
}

// pipeSource streams nothing until the device context ends.
type pipeSource struct{}

func (pipeSource) Open(ctx context.Context) (io.ReadCloser, error) {
	pr, pw := io.Pipe()
	go func() {
		<-ctx.Done()
		_ = pw.CloseWithError(ctx.Err())
	}()
	return pr, nil
}

func TestCapture_CallerCancelIsFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := NewCapturer(pipeSource{}, &stubRecognizer{}, DefaultListenConfig(), zerolog.Nop()).Capture(ctx, 5*time.Second)
	if !errors.Is(err, failure.CaptureFailure) {
		t.Fatalf("expected CaptureFailure after cancellation, got %v", err)
	}
	if errors.Is(err, failure.CaptureTimeout) {
		t.Fatalf("cancellation must not read as a timeout: %v", err)
	}
}

func TestCapture_SilenceTimesOut(t *testing.T) {
	t.Parallel()

	source := &stubSource{audio: pcmFrames(20, 3*time.Second)}
	c := NewCapturer(source, &stubRecognizer{}, DefaultListenConfig(), zerolog.Nop())

	_, err := c.Capture(context.Background(), time.Second)
	if !errors.Is(err, failure.CaptureTimeout) {
		t.Fatalf("expected CaptureTimeout, got %v", err)
	}
	if source.closed.Load() != 1 {
		t.Fatalf("expected device to be released")
	}
}

func TestCapture_RecognizesPhrase(t *testing.T) {
	t.Parallel()

	var audio []byte
	audio = append(audio, pcmFrames(20, 500*time.Millisecond)...)
	audio = append(audio, pcmFrames(4000, time.Second)...)
	audio = append(audio, pcmFrames(20, 2*time.Second)...)
	audio = append(audio, pcmFrames(4000, time.Second)...)

	source := &stubSource{audio: audio}
	recognizer := &stubRecognizer{text: "  hello there "}
	c := NewCapturer(source, recognizer, DefaultListenConfig(), zerolog.Nop())

	text, err := c.Capture(context.Background(), 5*time.Second)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if text != "hello there" {
		t.Fatalf("unexpected text: %q", text)
	}
	// One second of speech plus at most the pause threshold, never the second burst.
	maxBytes := len(pcmFrames(0, time.Second+DefaultPauseThreshold+DefaultFrameDuration*2))
	if len(recognizer.got) == 0 || len(recognizer.got) > maxBytes {
		t.Fatalf("unexpected phrase size: %d (max %d)", len(recognizer.got), maxBytes)
	}
	if source.closed.Load() != 1 {
		t.Fatalf("expected device to be released")
	}
}

func TestCapture_FailureKinds(t *testing.T) {
	t.Parallel()

	speech := pcmFrames(4000, time.Second)

	_, err := NewCapturer(&stubSource{audio: speech}, &stubRecognizer{err: ErrUnrecognized}, DefaultListenConfig(), zerolog.Nop()).
		Capture(context.Background(), time.Second)
	if !errors.Is(err, failure.CaptureUnrecognized) {
		t.Fatalf("expected CaptureUnrecognized, got %v", err)
	}

	_, err = NewCapturer(&stubSource{audio: speech}, &stubRecognizer{text: "   "}, DefaultListenConfig(), zerolog.Nop()).
		Capture(context.Background(), time.Second)
	if !errors.Is(err, failure.CaptureUnrecognized) {
		t.Fatalf("expected CaptureUnrecognized for blank transcript, got %v", err)
	}

	transport := errors.New("connection reset")
	_, err = NewCapturer(&stubSource{audio: speech}, &stubRecognizer{err: transport}, DefaultListenConfig(), zerolog.Nop()).
		Capture(context.Background(), time.Second)
	if !errors.Is(err, failure.CaptureFailure) || !errors.Is(err, transport) {
		t.Fatalf("expected CaptureFailure wrapping cause, got %v", err)
	}

	_, err = NewCapturer(&stubSource{openErr: errors.New("no such device")}, &stubRecognizer{}, DefaultListenConfig(), zerolog.Nop()).
		Capture(context.Background(), time.Second)
	if !errors.Is(err, failure.CaptureFailure) {
		t.Fatalf("expected CaptureFailure for device error, got %v", err)
	}
}

func TestListener_IgnoresShortClicks(t *testing.T) {
	t.Parallel()

	var audio []byte
	audio = append(audio, pcmFrames(20, 200*time.Millisecond)...)
	audio = append(audio, pcmFrames(6000, 64*time.Millisecond)...)
	audio = append(audio, pcmFrames(20, time.Second)...)

	cfg := DefaultListenConfig()
	cfg.DynamicEnergy = false
	if _, err := NewListener(cfg).Listen(bytes.NewReader(audio), 5*time.Second); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected a click to be ignored, got %v", err)
	}
}

func TestListener_ClickKeepsFullWindow(t *testing.T) {
	t.Parallel()

	// A two-frame click and its pause use 27 frames; speech starts on frame 28,
	// the last one inside a 28-frame window.
	var audio []byte
	audio = append(audio, pcmFrames(6000, 64*time.Millisecond)...)
	audio = append(audio, pcmFrames(20, 800*time.Millisecond)...)
	audio = append(audio, pcmFrames(4000, 640*time.Millisecond)...)
	audio = append(audio, pcmFrames(20, time.Second)...)

	cfg := DefaultListenConfig()
	cfg.DynamicEnergy = false
	phrase, err := NewListener(cfg).Listen(bytes.NewReader(audio), 28*DefaultFrameDuration)
	if err != nil {
		t.Fatalf("expected the phrase after a click to be heard, got %v", err)
	}
	if len(phrase) == 0 {
		t.Fatalf("expected phrase audio")
	}
}

func TestListener_PhraseLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultListenConfig()
	cfg.PhraseLimit = 640 * time.Millisecond
	phrase, err := NewListener(cfg).Listen(bytes.NewReader(pcmFrames(4000, 3*time.Second)), time.Second)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if want := len(pcmFrames(0, cfg.PhraseLimit)); len(phrase) != want {
		t.Fatalf("unexpected phrase length: got %d want %d", len(phrase), want)
	}
}

func TestParseRecognizeResponse(t *testing.T) {
	t.Parallel()

	raw := []byte("{\"result\":[]}\n{\"result\":[{\"alternative\":[{\"transcript\":\"namaste\",\"confidence\":0.92},{\"transcript\":\"namastey\"}],\"final\":true}],\"result_index\":0}\n")
	text, err := ParseRecognizeResponse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if text != "namaste" {
		t.Fatalf("unexpected transcript: %q", text)
	}

	if _, err := ParseRecognizeResponse([]byte("{\"result\":[]}\n")); !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized, got %v", err)
	}
	if _, err := ParseRecognizeResponse([]byte("<html>")); err == nil || errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestSplitText(t *testing.T) {
	t.Parallel()

	if got := SplitText("short text", 100); len(got) != 1 || got[0] != "short text" {
		t.Fatalf("unexpected chunks: %q", got)
	}

	long := strings.Repeat("नमस्ते दुनिया। ", 20)
	chunks := SplitText(long, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for _, chunk := range chunks {
		if n := len([]rune(chunk)); n > 100 || n == 0 {
			t.Fatalf("chunk has %d runes: %q", n, chunk)
		}
		if !strings.HasSuffix(chunk, "।") {
			t.Fatalf("expected chunk to end at punctuation: %q", chunk)
		}
	}

	word := strings.Repeat("a", 250)
	if got := SplitText(word, 100); len(got) != 3 || len(got[2]) != 50 {
		t.Fatalf("unexpected hard split: %d chunks", len(got))
	}
}
