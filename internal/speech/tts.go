package speech

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

const DefaultTTSBaseURL = "https://translate.google.com"

// GoogleTTS fetches mp3 audio from the translate_tts endpoint.
type GoogleTTS struct {
	http *resty.Client
}

func NewGoogleTTS(baseURL string, timeout time.Duration) *GoogleTTS {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultTTSBaseURL
	}
	c := resty.New().
		SetBaseURL(base).
		SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &GoogleTTS{http: c}
}

func (g *GoogleTTS) Fetch(ctx context.Context, text, code string) ([]byte, error) {
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ie":      "UTF-8",
			"client":  "tw-ob",
			"tl":      code,
			"q":       text,
			"textlen": strconv.Itoa(utf8.RuneCountInString(text)),
		}).
		Get("/translate_tts")
	if err != nil {
		return nil, fmt.Errorf("request speech audio: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("speech audio status %d", resp.StatusCode())
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("speech audio response is empty")
	}
	return body, nil
}
