package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

var validProfiles = map[string]struct{}{"basic": {}, "voice": {}, "indic": {}}

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	TranslationProfile  string `envconfig:"TRANSLATION_PROFILE" default:"voice"`
	LanguageCatalogPath string `envconfig:"LANGUAGE_CATALOG_PATH" default:""`

	Seq2SeqEndpoint   string        `envconfig:"SEQ2SEQ_ENDPOINT" default:"http://127.0.0.1:8845"`
	Seq2SeqTimeout    time.Duration `envconfig:"SEQ2SEQ_TIMEOUT" default:"120s"`
	GTranslateBaseURL string        `envconfig:"GTRANSLATE_BASE_URL" default:"https://translate.googleapis.com"`
	HTTPClientTimeout time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`

	SpeechAPIBaseURL string        `envconfig:"SPEECH_API_BASE_URL" default:"http://www.google.com"`
	SpeechAPIKey     string        `envconfig:"SPEECH_API_KEY" default:""`
	SpeechLanguage   string        `envconfig:"SPEECH_LANGUAGE" default:"en-US"`
	CaptureTimeout   time.Duration `envconfig:"CAPTURE_TIMEOUT" default:"5s"`
	CaptureCommand   string        `envconfig:"CAPTURE_COMMAND" default:""`

	GTTSBaseURL   string `envconfig:"GTTS_BASE_URL" default:"https://translate.google.com"`
	ArtifactsDir  string `envconfig:"ARTIFACTS_DIR" default:""`
	PlayerCommand string `envconfig:"PLAYER_COMMAND" default:""`

	APIBasicAuthUser         string `envconfig:"API_BASIC_AUTH_USER" default:""`
	APIBasicAuthPasswordHash string `envconfig:"API_BASIC_AUTH_PASSWORD_HASH" default:""`
	CORSAllowedOrigins       string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	profile := strings.ToLower(strings.TrimSpace(c.TranslationProfile))
	if _, ok := validProfiles[profile]; !ok {
		return fmt.Errorf("TRANSLATION_PROFILE must be one of basic, voice, indic (got %q)", c.TranslationProfile)
	}
	if strings.TrimSpace(c.Seq2SeqEndpoint) == "" {
		return fmt.Errorf("SEQ2SEQ_ENDPOINT is required")
	}
	if c.Seq2SeqTimeout <= 0 {
		return fmt.Errorf("SEQ2SEQ_TIMEOUT must be > 0")
	}
	if c.HTTPClientTimeout <= 0 {
		return fmt.Errorf("HTTP_CLIENT_TIMEOUT must be > 0")
	}
	if c.CaptureTimeout < 0 {
		return fmt.Errorf("CAPTURE_TIMEOUT must be >= 0")
	}
	user := strings.TrimSpace(c.APIBasicAuthUser)
	hash := strings.TrimSpace(c.APIBasicAuthPasswordHash)
	if (user == "") != (hash == "") {
		return fmt.Errorf("API_BASIC_AUTH_USER and API_BASIC_AUTH_PASSWORD_HASH must be set together")
	}
	return nil
}

// BasicAuthEnabled reports whether the HTTP API requires credentials.
func (c *Config) BasicAuthEnabled() bool {
	return c != nil && strings.TrimSpace(c.APIBasicAuthUser) != ""
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
