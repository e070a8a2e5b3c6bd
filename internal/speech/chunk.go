package speech

import (
	"strings"
	"unicode"
)

// MaxChunkRunes is the longest text the TTS endpoint accepts per request.
const MaxChunkRunes = 100

func isBreakPunct(r rune) bool {
	switch r {
	case '.', '!', '?', ',', ';', ':', '\n', '।', '॥', '۔', '،', '؟', '…':
		return true
	}
	return false
}

// SplitText cuts text into chunks of at most limit runes, preferring to cut after
// punctuation, then at whitespace, then mid-word.
func SplitText(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxChunkRunes
	}
	runes := []rune(strings.TrimSpace(text))
	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = appendChunk(chunks, runes)
			break
		}

		cut := -1
		for i := limit - 1; i > 0; i-- {
			if isBreakPunct(runes[i]) {
				cut = i + 1
				break
			}
		}
		if cut < 0 {
			for i := limit; i > 0; i-- {
				if unicode.IsSpace(runes[i]) {
					cut = i
					break
				}
			}
		}
		if cut <= 0 {
			cut = limit
		}

		chunks = appendChunk(chunks, runes[:cut])
		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}
	return chunks
}

func appendChunk(chunks []string, runes []rune) []string {
	chunk := strings.TrimSpace(string(runes))
	if chunk == "" {
		return chunks
	}
	return append(chunks, chunk)
}
