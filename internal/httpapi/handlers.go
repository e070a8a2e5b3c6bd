package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"horse.fit/vaani/internal/failure"
	"horse.fit/vaani/internal/language"
)

const maxCaptureTimeout = 30 * time.Second

type translateRequest struct {
	Text    string `json:"text"`
	Source  string `json:"source"`
	Target  string `json:"target"`
	Profile string `json:"profile"`
}

type captureRequest struct {
	Profile   string `json:"profile"`
	TimeoutMs int64  `json:"timeout_ms"`
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	Target  string `json:"target"`
	Profile string `json:"profile"`
	Play    bool   `json:"play"`
}

type languageItem struct {
	language.Spec
	Label     string `json:"label"`
	Supported bool   `json:"supported"`
}

func (s *Server) handleLanguages(c echo.Context) error {
	session, err := s.sessions.Session(c.QueryParam("profile"))
	if err != nil {
		return failValidation(c, map[string]string{"profile": err.Error()})
	}
	profile := session.Profile()
	return success(c, map[string]any{
		"profile":     profile.Name,
		"description": profile.Description,
		"topology":    profile.Resolver.Topology(),
		"speech":      profile.Speech,
		"auto_source": profile.AutoSource,
		"sources":     languageItems(profile.Resolver.Sources()),
		"targets":     languageItems(profile.Resolver.Targets()),
	})
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be a JSON object"})
	}
	session, err := s.sessions.Session(req.Profile)
	if err != nil {
		return failValidation(c, map[string]string{"profile": err.Error()})
	}

	result, err := session.Translate(c.Request().Context(), req.Text, req.Source, req.Target)
	if err != nil {
		return s.respondFailure(c, err)
	}
	return success(c, result)
}

func (s *Server) handleCapture(c echo.Context) error {
	var req captureRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return failValidation(c, map[string]string{"body": "must be a JSON object"})
		}
	}
	session, err := s.sessions.Session(req.Profile)
	if err != nil {
		return failValidation(c, map[string]string{"profile": err.Error()})
	}
	if !session.Profile().Speech {
		return fail(c, http.StatusBadRequest, "Voice input is not enabled for the "+session.Profile().Name+" profile.", nil)
	}
	if s.capturer == nil {
		return serviceError(c, http.StatusServiceUnavailable, "Voice input is not available on this server.", nil)
	}

	timeout := s.opts.CaptureTimeout
	if req.TimeoutMs < 0 {
		return failValidation(c, map[string]string{"timeout_ms": "must be >= 0"})
	}
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
		if timeout > maxCaptureTimeout {
			timeout = maxCaptureTimeout
		}
	}

	text, err := s.capturer.Capture(c.Request().Context(), timeout)
	if err != nil {
		return s.respondFailure(c, err)
	}
	return success(c, map[string]any{
		"text":    text,
		"profile": session.Profile().Name,
	})
}

func (s *Server) handleSynthesize(c echo.Context) error {
	var req synthesizeRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be a JSON object"})
	}
	session, err := s.sessions.Session(req.Profile)
	if err != nil {
		return failValidation(c, map[string]string{"profile": err.Error()})
	}
	if !session.Profile().Speech {
		return fail(c, http.StatusBadRequest, "Spoken output is not enabled for the "+session.Profile().Name+" profile.", nil)
	}

	artifact, err := session.Speak(c.Request().Context(), req.Text, req.Target, req.Play)
	if err != nil && artifact == nil {
		return s.respondFailure(c, err)
	}
	data := map[string]any{
		"artifact": artifact,
		"url":      "/api/v1/artifacts/" + artifact.Name,
		"played":   req.Play && err == nil,
	}
	if err != nil {
		// The audio exists; only the local player failed.
		s.logger.Warn().Err(err).Str("artifact", artifact.Name).Msg("playback failed")
		data["playback_error"] = failure.Message(err)
	}
	return success(c, data)
}

func (s *Server) handleArtifact(c echo.Context) error {
	if s.artifacts == nil {
		return failNotFound(c, "Audio artifact not found")
	}
	path, err := s.artifacts.ArtifactPath(c.Param("name"))
	if err != nil {
		return failNotFound(c, "Audio artifact not found")
	}
	return c.File(path)
}

// respondFailure maps the outcome taxonomy onto jsend envelopes.
func (s *Server) respondFailure(c echo.Context, err error) error {
	kind := failure.KindOf(err)
	message := failure.Message(err)
	data := map[string]any{"kind": kind}

	switch kind {
	case failure.EmptyInput, failure.UnknownLanguage, failure.SameLanguage, failure.SynthesisEmptyInput:
		return fail(c, http.StatusBadRequest, message, data)
	case failure.UnsupportedPair, failure.CaptureUnrecognized:
		return fail(c, http.StatusUnprocessableEntity, message, data)
	case failure.CaptureTimeout:
		return fail(c, http.StatusRequestTimeout, message, data)
	case failure.CaptureFailure:
		s.logger.Error().Err(err).Str("kind", string(kind)).Msg("voice capture failed")
		return serviceError(c, http.StatusServiceUnavailable, message, data)
	case failure.ProviderUnavailable, failure.TranslationFailure, failure.SynthesisFailure, failure.PlaybackFailure:
		return serviceError(c, http.StatusBadGateway, message, data)
	default:
		s.logger.Error().Err(err).Msg("unclassified request failure")
		return internalError(c, "Internal server error")
	}
}

func languageItems(specs []language.Spec) []languageItem {
	items := make([]languageItem, 0, len(specs))
	for _, spec := range specs {
		items = append(items, languageItem{
			Spec:      spec,
			Label:     spec.Label(),
			Supported: spec.Supported(),
		})
	}
	return items
}
