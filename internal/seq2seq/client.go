package seq2seq

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultEndpoint points to a local inference sidecar.
	DefaultEndpoint = "http://127.0.0.1:8845"
	// DefaultMaxNewTokens bounds one generation pass.
	DefaultMaxNewTokens = 512
)

// Client loads tokenizer/model handles from the inference sidecar.
type Client struct {
	http *resty.Client
}

// NewClient builds a sidecar client. A zero timeout keeps resty's default.
func NewClient(endpoint string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(normalizeEndpoint(endpoint)).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Client{http: c}
}

type modelInfoResponse struct {
	Model           string  `json:"model"`
	PadTokenID      int64   `json:"pad_token_id"`
	EOSTokenID      int64   `json:"eos_token_id"`
	SpecialTokenIDs []int64 `json:"special_token_ids"`
	MaxLength       int     `json:"max_length"`
}

type tokenizeRequest struct {
	Texts []string `json:"texts"`
}

type tokenizeResponse struct {
	InputIDs [][]int64 `json:"input_ids"`
}

type generateRequest struct {
	InputIDs      [][]int64 `json:"input_ids"`
	AttentionMask [][]int64 `json:"attention_mask"`
	MaxNewTokens  int       `json:"max_new_tokens"`
	NoGrad        bool      `json:"no_grad"`
}

type generateResponse struct {
	Sequences [][]int64 `json:"sequences"`
}

type detokenizeRequest struct {
	IDs []int64 `json:"ids"`
}

type detokenizeResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Load asks the sidecar to load modelID and returns handles bound to it.
func (c *Client) Load(ctx context.Context, modelID string) (Tokenizer, Model, error) {
	if c == nil || c.http == nil {
		return nil, nil, fmt.Errorf("seq2seq client is not initialized")
	}
	id := strings.TrimSpace(modelID)
	if id == "" {
		return nil, nil, fmt.Errorf("model id is required")
	}

	var info modelInfoResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetRawPathParam("model", id).
		SetResult(&info).
		SetError(&errorResponse{}).
		Get("/v1/models/{model}")
	if err != nil {
		return nil, nil, fmt.Errorf("load model %s: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil, fmt.Errorf("load model %s: %w", id, ErrModelNotFound)
	}
	if err := responseError(resp); err != nil {
		return nil, nil, fmt.Errorf("load model %s: %w", id, err)
	}

	special := make(map[int64]struct{}, len(info.SpecialTokenIDs)+2)
	for _, tokenID := range info.SpecialTokenIDs {
		special[tokenID] = struct{}{}
	}
	special[info.PadTokenID] = struct{}{}
	special[info.EOSTokenID] = struct{}{}

	maxNew := info.MaxLength
	if maxNew <= 0 {
		maxNew = DefaultMaxNewTokens
	}

	tok := &remoteTokenizer{http: c.http, modelID: id, padID: info.PadTokenID, special: special}
	mdl := &remoteModel{http: c.http, modelID: id, maxNewTokens: maxNew}
	return tok, mdl, nil
}

type remoteTokenizer struct {
	http    *resty.Client
	modelID string
	padID   int64
	special map[int64]struct{}
}

func (t *remoteTokenizer) Encode(ctx context.Context, texts []string) (Batch, error) {
	var out tokenizeResponse
	resp, err := t.http.R().
		SetContext(ctx).
		SetRawPathParam("model", t.modelID).
		SetBody(tokenizeRequest{Texts: texts}).
		SetResult(&out).
		SetError(&errorResponse{}).
		Post("/v1/models/{model}/tokenize")
	if err != nil {
		return Batch{}, fmt.Errorf("tokenize: %w", err)
	}
	if err := responseError(resp); err != nil {
		return Batch{}, fmt.Errorf("tokenize: %w", err)
	}
	if len(out.InputIDs) != len(texts) {
		return Batch{}, fmt.Errorf("tokenize: got %d sequences for %d texts", len(out.InputIDs), len(texts))
	}
	return Pad(out.InputIDs, t.padID)
}

func (t *remoteTokenizer) Decode(ctx context.Context, ids []int64, skipSpecialTokens bool) (string, error) {
	if skipSpecialTokens {
		ids = StripSpecial(ids, t.special)
	}
	if len(ids) == 0 {
		return "", nil
	}

	var out detokenizeResponse
	resp, err := t.http.R().
		SetContext(ctx).
		SetRawPathParam("model", t.modelID).
		SetBody(detokenizeRequest{IDs: ids}).
		SetResult(&out).
		SetError(&errorResponse{}).
		Post("/v1/models/{model}/detokenize")
	if err != nil {
		return "", fmt.Errorf("detokenize: %w", err)
	}
	if err := responseError(resp); err != nil {
		return "", fmt.Errorf("detokenize: %w", err)
	}
	return strings.TrimSpace(out.Text), nil
}

type remoteModel struct {
	http         *resty.Client
	modelID      string
	maxNewTokens int
}

func (m *remoteModel) ID() string {
	return m.modelID
}

func (m *remoteModel) Generate(ctx context.Context, batch Batch) ([][]int64, error) {
	if batch.Rows() == 0 {
		return nil, fmt.Errorf("generate: batch is empty")
	}

	var out generateResponse
	resp, err := m.http.R().
		SetContext(ctx).
		SetRawPathParam("model", m.modelID).
		SetBody(generateRequest{
			InputIDs:      batch.InputIDs,
			AttentionMask: batch.AttentionMask,
			MaxNewTokens:  m.maxNewTokens,
			NoGrad:        true,
		}).
		SetResult(&out).
		SetError(&errorResponse{}).
		Post("/v1/models/{model}/generate")
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if err := responseError(resp); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if len(out.Sequences) == 0 {
		return nil, ErrEmptyOutput
	}
	return out.Sequences, nil
}

func responseError(resp *resty.Response) error {
	if resp == nil {
		return fmt.Errorf("no response")
	}
	if !resp.IsError() {
		return nil
	}
	if payload, ok := resp.Error().(*errorResponse); ok && payload != nil {
		if msg := strings.TrimSpace(payload.Error.Message); msg != "" {
			return fmt.Errorf("sidecar status %d: %s", resp.StatusCode(), msg)
		}
	}
	return fmt.Errorf("sidecar status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
}

func normalizeEndpoint(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return DefaultEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultEndpoint
	}
	parsed.Path = strings.TrimSuffix(strings.TrimRight(parsed.Path, "/"), "/v1")
	return strings.TrimRight(parsed.String(), "/")
}
