package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"TRANSLATION_PROFILE", "CAPTURE_TIMEOUT", "SPEECH_LANGUAGE", "API_BASIC_AUTH_USER", "API_BASIC_AUTH_PASSWORD_HASH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TranslationProfile != "voice" || cfg.CaptureTimeout != 5*time.Second || cfg.SpeechLanguage != "en-US" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.BasicAuthEnabled() {
		t.Fatalf("expected basic auth to be off by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TRANSLATION_PROFILE", "indic")
	t.Setenv("CAPTURE_TIMEOUT", "2500ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test ,http://b.test,http://a.test,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TranslationProfile != "indic" || cfg.CaptureTimeout != 2500*time.Millisecond {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if got := strings.Join(cfg.CORSAllowedOriginsList(), ","); got != "http://a.test,http://b.test" {
		t.Fatalf("unexpected origins: %s", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := Config{
		TranslationProfile: "basic",
		Seq2SeqEndpoint:    "http://127.0.0.1:8845",
		Seq2SeqTimeout:     time.Minute,
		HTTPClientTimeout:  time.Second,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to be valid: %v", err)
	}

	bad := base
	bad.TranslationProfile = "deluxe"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected unknown profile to fail")
	}

	bad = base
	bad.APIBasicAuthUser = "admin"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected user without hash to fail")
	}

	bad = base
	bad.CaptureTimeout = -time.Second
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected negative capture timeout to fail")
	}
}
