package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/vaani/internal/catalogschema"
	"horse.fit/vaani/internal/cli"
	"horse.fit/vaani/internal/config"
	"horse.fit/vaani/internal/gtranslate"
	"horse.fit/vaani/internal/langdetect"
	"horse.fit/vaani/internal/language"
	"horse.fit/vaani/internal/logging"
	"horse.fit/vaani/internal/modelcache"
	"horse.fit/vaani/internal/seq2seq"
	"horse.fit/vaani/internal/speech"
	"horse.fit/vaani/internal/translation"
)

// services holds everything a command needs once configuration is loaded.
type services struct {
	cfg      *config.Config
	logger   zerolog.Logger
	sessions *translation.SessionSet
	synth    *speech.Synthesizer
	player   *speech.CommandPlayer
	capturer *speech.Capturer
}

// bootstrap loads env and config, then wires clients, profiles and speech. profile,
// when set, replaces TRANSLATION_PROFILE as the default profile.
func bootstrap(envLoader *cli.EnvLoader, profile string) (*services, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if trimmed := strings.TrimSpace(profile); trimmed != "" {
		cfg.TranslationProfile = trimmed
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --profile: %w", err)
		}
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLanguages, err := loadServiceLanguages(cfg.LanguageCatalogPath)
	if err != nil {
		return nil, err
	}

	registry, err := translation.NewDefaultRegistry(cfg.TranslationProfile, translation.Deps{
		Loader:           seq2seq.NewClient(cfg.Seq2SeqEndpoint, cfg.Seq2SeqTimeout),
		Service:          gtranslate.NewClient(cfg.GTranslateBaseURL, cfg.HTTPClientTimeout),
		ServiceLanguages: serviceLanguages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build translation profiles: %w", err)
	}

	speechLogger := logging.Component(logger, "speech")
	synth := speech.NewSynthesizer(
		speech.NewGoogleTTS(cfg.GTTSBaseURL, cfg.HTTPClientTimeout),
		cfg.ArtifactsDir,
		language.SpeechCodes,
		speechLogger,
	)
	player := speech.NewCommandPlayer(speech.ParseCommand(cfg.PlayerCommand), speechLogger)
	capturer := speech.NewCapturer(
		speech.NewCommandSource(speech.ParseCommand(cfg.CaptureCommand)),
		speech.NewGoogleRecognizer(cfg.SpeechAPIBaseURL, cfg.SpeechAPIKey, cfg.SpeechLanguage, cfg.HTTPClientTimeout),
		speech.DefaultListenConfig(),
		speechLogger,
	)

	sessions := translation.NewSessionSet(
		registry,
		modelcache.New[translation.Provider](),
		logging.Component(logger, "translation"),
		sessionOptions(synth, player),
	)

	return &services{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		synth:    synth,
		player:   player,
		capturer: capturer,
	}, nil
}

// sessionOptions enables detection and speech on the profiles that offer them.
func sessionOptions(synth translation.Synthesizer, player speech.Player) func(*translation.Profile) []translation.Option {
	return func(profile *translation.Profile) []translation.Option {
		var opts []translation.Option
		if profile.AutoSource {
			opts = append(opts, translation.WithDetector(langdetect.NewDetector(sourceCodes(profile.Resolver))))
		}
		if profile.Speech && synth != nil {
			opts = append(opts, translation.WithSpeech(synth, player))
		}
		return opts
	}
}

func sourceCodes(resolver language.Resolver) []string {
	specs := resolver.Sources()
	codes := make([]string, 0, len(specs))
	for _, spec := range specs {
		if spec.Supported() {
			codes = append(codes, spec.Code)
		}
	}
	return codes
}

// loadServiceLanguages reads the optional catalog override. An empty path keeps the
// built-in table.
func loadServiceLanguages(path string) ([]language.Spec, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	doc, err := readCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("LANGUAGE_CATALOG_PATH: %w", err)
	}
	return doc.Languages, nil
}

func readCatalog(path string) (*catalogschema.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	doc, err := catalogschema.ParseYAML(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
