// Package failure defines the outcome taxonomy shared by translation, capture and synthesis.
//
// A Rejected kind is a user-correctable request problem. A Failed kind is a backend or
// system fault. Both are returned as *Error values; errors.Is(err, KindX) matches the kind.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one member of the taxonomy. Kind implements error so it can be used
// as an errors.Is target.
type Kind string

const (
	EmptyInput      Kind = "empty_input"
	UnknownLanguage Kind = "unknown_language"
	SameLanguage    Kind = "same_language"
	UnsupportedPair Kind = "unsupported_pair"

	ProviderUnavailable Kind = "provider_unavailable"
	TranslationFailure  Kind = "translation_failure"
	CaptureTimeout      Kind = "capture_timeout"
	CaptureUnrecognized Kind = "capture_unrecognized"
	CaptureFailure      Kind = "capture_failure"
	SynthesisEmptyInput Kind = "synthesis_empty_input"
	SynthesisFailure    Kind = "synthesis_failure"
	PlaybackFailure     Kind = "playback_failure"
)

var rejectedKinds = map[Kind]struct{}{
	EmptyInput:      {},
	UnknownLanguage: {},
	SameLanguage:    {},
	UnsupportedPair: {},
}

func (k Kind) Error() string {
	return string(k)
}

// Rejected reports whether the kind is a user-correctable rejection.
func (k Kind) Rejected() bool {
	_, ok := rejectedKinds[k]
	return ok
}

// Error carries a taxonomy kind, a human-readable message and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	message := strings.TrimSpace(e.Message)
	if message == "" {
		message = string(e.Kind)
	}
	if e.Err == nil {
		return message
	}
	return fmt.Sprintf("%s: %v", message, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *Error) Is(target error) bool {
	kind, ok := target.(Kind)
	if !ok || e == nil {
		return false
	}
	return e.Kind == kind
}

// Rejectf builds a rejection of the given kind.
func Rejectf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a failure of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the taxonomy kind carried by err, or "" when err is not classified.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) && classified != nil {
		return classified.Kind
	}
	return ""
}

// IsRejected reports whether err is a user-correctable rejection.
func IsRejected(err error) bool {
	return KindOf(err).Rejected()
}

// Message returns the user-facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var classified *Error
	if errors.As(err, &classified) && classified != nil {
		if msg := strings.TrimSpace(classified.Message); msg != "" {
			return msg
		}
	}
	return err.Error()
}
