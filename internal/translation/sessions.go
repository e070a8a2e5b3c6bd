package translation

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"horse.fit/vaani/internal/modelcache"
)

// SessionSet hands out one Session per profile, built on first use. Every session
// shares the same provider cache.
type SessionSet struct {
	registry *Registry
	cache    *modelcache.Cache[Provider]
	logger   zerolog.Logger
	options  func(*Profile) []Option

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionSet builds a set over registry. options, when set, supplies per-profile
// session options such as speech and detection.
func NewSessionSet(registry *Registry, cache *modelcache.Cache[Provider], logger zerolog.Logger, options func(*Profile) []Option) *SessionSet {
	if cache == nil {
		cache = modelcache.New[Provider]()
	}
	return &SessionSet{
		registry: registry,
		cache:    cache,
		logger:   logger,
		options:  options,
		sessions: make(map[string]*Session),
	}
}

// Session returns the session for a profile name; empty means the default profile.
func (s *SessionSet) Session(name string) (*Session, error) {
	if s == nil || s.registry == nil {
		return nil, fmt.Errorf("session set is not initialized")
	}
	profile, err := s.registry.Profile(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[profile.Name]; ok {
		return session, nil
	}
	var opts []Option
	if s.options != nil {
		opts = s.options(profile)
	}
	session, err := NewSession(profile, s.cache, s.logger, opts...)
	if err != nil {
		return nil, err
	}
	s.sessions[profile.Name] = session
	return session, nil
}

func (s *SessionSet) Registry() *Registry {
	return s.registry
}

func (s *SessionSet) Cache() *modelcache.Cache[Provider] {
	return s.cache
}
