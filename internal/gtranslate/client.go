// Package gtranslate is a client for the public Google Translate web endpoint
// (translate_a/single, client=gtx).
package gtranslate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://translate.googleapis.com"

var (
	// ErrUnsupportedLanguage means a code was empty or rejected by the service.
	ErrUnsupportedLanguage = errors.New("language not supported by translation service")
	// ErrMalformedResponse means the service answered with a payload that could not be parsed.
	ErrMalformedResponse = errors.New("malformed translation response")
)

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("translation service status %d: %s", e.StatusCode, body)
}

// Result is a parsed translation.
type Result struct {
	Text           string
	DetectedSource string
}

// Client issues translation requests. It is safe for concurrent use.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	c := resty.New().SetBaseURL(base)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Client{http: c}
}

// Translate converts text from source to target. source may be "auto".
func (c *Client) Translate(ctx context.Context, text, source, target string) (Result, error) {
	if c == nil || c.http == nil {
		return Result{}, fmt.Errorf("translation client is not initialized")
	}
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)
	if source == "" {
		return Result{}, fmt.Errorf("source code is empty: %w", ErrUnsupportedLanguage)
	}
	if target == "" || target == "auto" {
		return Result{}, fmt.Errorf("target code %q: %w", target, ErrUnsupportedLanguage)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("client", "gtx").
		SetQueryParam("sl", source).
		SetQueryParam("tl", target).
		SetQueryParam("dt", "t").
		SetQueryParam("q", text).
		Get("/translate_a/single")
	if err != nil {
		return Result{}, fmt.Errorf("request translation: %w", err)
	}

	if resp.StatusCode() == http.StatusBadRequest {
		return Result{}, fmt.Errorf("%s->%s: %w", source, target, ErrUnsupportedLanguage)
	}
	if resp.IsError() {
		return Result{}, &StatusError{StatusCode: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}

	return ParseResponse(resp.Body())
}

// ParseResponse extracts the joined translated segments from a translate_a/single
// payload: [[["seg","orig",...],...],null,"detected",...].
func ParseResponse(raw []byte) (Result, error) {
	var payload []any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(payload) == 0 {
		return Result{}, fmt.Errorf("%w: empty payload", ErrMalformedResponse)
	}

	segments, ok := payload[0].([]any)
	if !ok {
		return Result{}, fmt.Errorf("%w: missing segment list", ErrMalformedResponse)
	}

	var b strings.Builder
	for i, rawSegment := range segments {
		segment, ok := rawSegment.([]any)
		if !ok || len(segment) == 0 {
			return Result{}, fmt.Errorf("%w: segment %d is not a list", ErrMalformedResponse, i)
		}
		if segment[0] == nil {
			continue
		}
		text, ok := segment[0].(string)
		if !ok {
			return Result{}, fmt.Errorf("%w: segment %d has no text", ErrMalformedResponse, i)
		}
		b.WriteString(text)
	}

	out := Result{Text: b.String()}
	if len(payload) > 2 {
		if detected, ok := payload[2].(string); ok {
			out.DetectedSource = detected
		}
	}
	return out, nil
}
