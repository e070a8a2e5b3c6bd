package translation

import (
	"fmt"
	"sort"
	"strings"

	"horse.fit/vaani/internal/language"
	"horse.fit/vaani/internal/seq2seq"
)

const (
	// DefaultProfileName is used when TRANSLATION_PROFILE is unset.
	DefaultProfileName = ProfileVoice

	ProfileBasic = "basic"
	ProfileVoice = "voice"
	ProfileIndic = "indic"
)

// Profile wires one resolver topology to one backend.
type Profile struct {
	Name        string
	Description string
	Resolver    language.Resolver
	Backend     Backend
	// Speech enables voice input and spoken output on surfaces.
	Speech bool
	// AutoSource lets requests ask for source language detection.
	AutoSource bool
}

// Registry stores profiles and resolves a default profile.
type Registry struct {
	profiles       map[string]*Profile
	defaultProfile string
}

func NewRegistry(defaultProfile string) *Registry {
	normalizedDefault := normalizeProfileName(defaultProfile)
	if normalizedDefault == "" {
		normalizedDefault = DefaultProfileName
	}

	return &Registry{
		profiles:       make(map[string]*Profile),
		defaultProfile: normalizedDefault,
	}
}

// Register adds one profile.
func (r *Registry) Register(profile *Profile) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if profile == nil {
		return fmt.Errorf("profile is nil")
	}
	name := normalizeProfileName(profile.Name)
	if name == "" {
		return fmt.Errorf("profile name is required")
	}
	if profile.Resolver == nil || profile.Backend == nil {
		return fmt.Errorf("profile %q needs a resolver and a backend", name)
	}
	profile.Name = name
	r.profiles[name] = profile
	return nil
}

// Profile resolves a profile by name. Empty names use the configured default profile.
func (r *Registry) Profile(name string) (*Profile, error) {
	if r == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if len(r.profiles) == 0 {
		return nil, fmt.Errorf("no translation profiles are registered")
	}

	resolvedName := normalizeProfileName(name)
	if resolvedName == "" {
		resolvedName = r.defaultProfile
	}
	profile, ok := r.profiles[resolvedName]
	if ok {
		return profile, nil
	}

	return nil, fmt.Errorf("translation profile %q is not registered (available: %s)", resolvedName, strings.Join(r.ProfileNames(), ", "))
}

func (r *Registry) DefaultProfile() string {
	if r == nil {
		return ""
	}
	return r.defaultProfile
}

func (r *Registry) ProfileNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Deps are the collaborators the built-in profiles need.
type Deps struct {
	Loader  seq2seq.Loader
	Service ServiceClient
	// ServiceLanguages overrides language.ServiceLanguages for the indic profile.
	ServiceLanguages []language.Spec
}

// NewDefaultRegistry registers the basic, voice and indic profiles.
func NewDefaultRegistry(defaultProfile string, deps Deps) (*Registry, error) {
	registry := NewRegistry(defaultProfile)

	fixed, err := language.NewFixedSourceResolver(language.English, language.FixedTargets, func(source, target language.Spec) string {
		return language.OpusModelID(source.Code, target.Code)
	})
	if err != nil {
		return nil, fmt.Errorf("build %s resolver: %w", ProfileBasic, err)
	}
	pairs, err := language.NewPairTableResolver(
		append([]language.Spec{language.English}, language.PairLanguages...),
		language.PairTable(language.PairLanguages),
	)
	if err != nil {
		return nil, fmt.Errorf("build %s resolver: %w", ProfileVoice, err)
	}
	serviceLanguages := deps.ServiceLanguages
	if len(serviceLanguages) == 0 {
		serviceLanguages = language.ServiceLanguages
	}
	codes, err := language.NewCodeMapResolver(serviceLanguages)
	if err != nil {
		return nil, fmt.Errorf("build %s resolver: %w", ProfileIndic, err)
	}

	profiles := []*Profile{
		{
			Name:        ProfileBasic,
			Description: "English to five Indian languages with local OPUS-MT models",
			Resolver:    fixed,
			Backend:     NewLocalNeuralBackend(deps.Loader, KeyByTarget),
		},
		{
			Name:        ProfileVoice,
			Description: "English and twelve Indian languages in both directions with local OPUS-MT models, voice in and out",
			Resolver:    pairs,
			Backend:     NewLocalNeuralBackend(deps.Loader, KeyByModel),
			Speech:      true,
			AutoSource:  true,
		},
		{
			Name:        ProfileIndic,
			Description: "Any pair of 23 Indian languages through the online translation service, voice in and out",
			Resolver:    codes,
			Backend:     NewRemoteServiceBackend(deps.Service),
			Speech:      true,
			AutoSource:  true,
		},
	}
	for _, profile := range profiles {
		if err := registry.Register(profile); err != nil {
			return nil, err
		}
	}

	if _, exists := registry.profiles[registry.defaultProfile]; !exists {
		return nil, fmt.Errorf("translation profile %q is not registered (available: %s)", registry.defaultProfile, strings.Join(registry.ProfileNames(), ", "))
	}
	return registry, nil
}

func normalizeProfileName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
