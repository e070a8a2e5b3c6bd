package gtranslate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestParseResponse_JoinsSegments(t *testing.T) {
	t.Parallel()

	raw := []byte(`[[["नमस्ते। ","Hello. ",null,null,10],["आप कैसे हैं?","How are you?",null,null,10]],null,"en",null,null,null,1]`)
	got, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Text != "नमस्ते। आप कैसे हैं?" {
		t.Fatalf("unexpected text: %q", got.Text)
	}
	if got.DetectedSource != "en" {
		t.Fatalf("unexpected detected source: %q", got.DetectedSource)
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	t.Parallel()

	cases := []string{
		`not json`,
		`[]`,
		`[null]`,
		`[[42]]`,
		`[[[7,"x"]]]`,
	}
	for _, raw := range cases {
		if _, err := ParseResponse([]byte(raw)); !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("ParseResponse(%s): expected ErrMalformedResponse, got %v", raw, err)
		}
	}
}

func TestClientTranslate_SendsCodes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate_a/single" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("client") != "gtx" || q.Get("sl") != "hi" || q.Get("tl") != "ta" || q.Get("q") != "नमस्ते" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`[[["வணக்கம்","नमस्ते",null,null,10]],null,"hi"]`))
	}))
	defer server.Close()

	got, err := NewClient(server.URL, 0).Translate(context.Background(), "नमस्ते", "hi", "ta")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got.Text != "வணக்கம்" {
		t.Fatalf("unexpected text: %q", got.Text)
	}
}

func TestClientTranslate_ClassifiesFailures(t *testing.T) {
	t.Parallel()

	var status atomic.Int32
	status.Store(http.StatusBadRequest)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer server.Close()
	client := NewClient(server.URL, 0)

	if _, err := client.Translate(context.Background(), "x", "en", "zz"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage for 400, got %v", err)
	}

	status.Store(http.StatusTooManyRequests)
	_, err := client.Translate(context.Background(), "x", "en", "hi")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected StatusError 429, got %v", err)
	}
	if errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("quota failure must not look like an unsupported language")
	}
}

func TestClientTranslate_EmptyCodeNeverCallsService(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 0).Translate(context.Background(), "x", "en", "")
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("expected no request, got %d", got)
	}
}
