// Package langdetect guesses the language of free text for source=auto requests.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minLetters is the shortest sample worth detecting.
const minLetters = 6

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectISO6391 returns the two-letter code of the most likely language, or "" when
// the sample is too short or ambiguous.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// Detector restricts detection to a set of accepted codes.
type Detector struct {
	accepted map[string]struct{}
	detect   func(string) string
}

// NewDetector accepts only the given codes. An empty list accepts any detected code.
func NewDetector(codes []string) *Detector {
	accepted := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" {
			accepted[code] = struct{}{}
		}
	}
	return &Detector{accepted: accepted, detect: DetectISO6391}
}

// Detect returns the detected code when it is one of the accepted codes.
func (d *Detector) Detect(text string) (string, bool) {
	if d == nil || d.detect == nil {
		return "", false
	}
	code := d.detect(text)
	if code == "" {
		return "", false
	}
	if len(d.accepted) == 0 {
		return code, true
	}
	if _, ok := d.accepted[code]; !ok {
		return "", false
	}
	return code, true
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})
	return detector
}
