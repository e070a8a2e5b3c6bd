// Package seq2seq talks to a local sequence-to-sequence inference sidecar that hosts
// pretrained translation models (for example Helsinki-NLP OPUS-MT) by model id.
package seq2seq

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrModelNotFound means the sidecar has no weights for the requested model id.
	ErrModelNotFound = errors.New("seq2seq model not found")
	// ErrEmptyOutput means generation returned no sequence.
	ErrEmptyOutput = errors.New("seq2seq generation returned no output")
)

// Batch is a padded, rectangular token batch.
type Batch struct {
	InputIDs      [][]int64 `json:"input_ids"`
	AttentionMask [][]int64 `json:"attention_mask"`
}

// Rows returns the number of sequences in the batch.
func (b Batch) Rows() int {
	return len(b.InputIDs)
}

// Tokenizer converts between text and token ids for one model.
type Tokenizer interface {
	Encode(ctx context.Context, texts []string) (Batch, error)
	Decode(ctx context.Context, ids []int64, skipSpecialTokens bool) (string, error)
}

// Model generates output token sequences for an encoded batch.
type Model interface {
	Generate(ctx context.Context, batch Batch) ([][]int64, error)
	ID() string
}

// Loader acquires the tokenizer and model for a model id.
type Loader interface {
	Load(ctx context.Context, modelID string) (Tokenizer, Model, error)
}

// Pad right-pads sequences with padID to the longest row and builds the matching
// attention mask.
func Pad(sequences [][]int64, padID int64) (Batch, error) {
	if len(sequences) == 0 {
		return Batch{}, fmt.Errorf("batch is empty")
	}

	longest := 0
	for i, seq := range sequences {
		if len(seq) == 0 {
			return Batch{}, fmt.Errorf("sequence %d is empty", i)
		}
		if len(seq) > longest {
			longest = len(seq)
		}
	}

	batch := Batch{
		InputIDs:      make([][]int64, len(sequences)),
		AttentionMask: make([][]int64, len(sequences)),
	}
	for i, seq := range sequences {
		ids := make([]int64, longest)
		mask := make([]int64, longest)
		copy(ids, seq)
		for j := range ids {
			if j < len(seq) {
				mask[j] = 1
				continue
			}
			ids[j] = padID
		}
		batch.InputIDs[i] = ids
		batch.AttentionMask[i] = mask
	}
	return batch, nil
}

// StripSpecial drops every id found in special.
func StripSpecial(ids []int64, special map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, skip := special[id]; skip {
			continue
		}
		out = append(out, id)
	}
	return out
}
