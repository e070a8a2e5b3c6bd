package speech

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultRecognizerBaseURL = "http://www.google.com"

// GoogleRecognizer calls the speech-api v2 recognize endpoint.
type GoogleRecognizer struct {
	http     *resty.Client
	key      string
	language string
}

func NewGoogleRecognizer(baseURL, key, language string, timeout time.Duration) *GoogleRecognizer {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultRecognizerBaseURL
	}
	lang := strings.TrimSpace(language)
	if lang == "" {
		lang = "en-US"
	}
	c := resty.New().SetBaseURL(base)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &GoogleRecognizer{http: c, key: strings.TrimSpace(key), language: lang}
}

type recognizeLine struct {
	Result []struct {
		Alternative []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternative"`
		Final bool `json:"final"`
	} `json:"result"`
}

func (g *GoogleRecognizer) Recognize(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	if len(pcm) == 0 {
		return "", ErrUnrecognized
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	req := g.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "audio/l16; rate="+strconv.Itoa(sampleRate)).
		SetQueryParam("client", "chromium").
		SetQueryParam("lang", g.language).
		SetQueryParam("output", "json").
		SetBody(pcm)
	if g.key != "" {
		req.SetQueryParam("key", g.key)
	}

	resp, err := req.Post("/speech-api/v2/recognize")
	if err != nil {
		return "", fmt.Errorf("recognize speech: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("recognize speech: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return ParseRecognizeResponse(resp.Body())
}

// ParseRecognizeResponse picks the first transcript from the newline-delimited JSON
// the endpoint streams back. The leading {"result":[]} line is skipped.
func ParseRecognizeResponse(raw []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var decoded recognizeLine
		if err := json.Unmarshal(line, &decoded); err != nil {
			return "", fmt.Errorf("decode recognition result: %w", err)
		}
		for _, result := range decoded.Result {
			for _, alt := range result.Alternative {
				if text := strings.TrimSpace(alt.Transcript); text != "" {
					return text, nil
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read recognition result: %w", err)
	}
	return "", ErrUnrecognized
}
