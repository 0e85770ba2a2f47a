package genwire

import (
	"fmt"
	"sync"

	"github.com/genwire/genwire/config"
	"github.com/genwire/genwire/genai"
	"github.com/genwire/genwire/providers/openai"
)

// GeneratorFactory builds a content generator for a session configuration.
// Host applications register factories for auth modes this module does not
// implement itself, such as the personal-login generator.
type GeneratorFactory func(cfg *config.ContentGeneratorConfig) (genai.ContentGenerator, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[config.AuthType]GeneratorFactory{}
)

// RegisterGenerator registers a factory for an auth mode. Registering the
// same mode twice overwrites the previous factory; built-in modes cannot be
// overridden.
func RegisterGenerator(authType config.AuthType, factory GeneratorFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[authType] = factory
}

// NewContentGenerator builds the content generator backing a session,
// selected by the configuration's auth mode. API-key and vertex sessions use
// the OpenAI-compatible adapter; any other mode dispatches to a registered
// factory. Callers are agnostic to which implementation they get: every
// generator exposes the same four-operation contract.
func NewContentGenerator(cfg *config.ContentGeneratorConfig) (genai.ContentGenerator, error) {
	switch cfg.AuthType {
	case config.AuthAPIKey, config.AuthVertex, "":
		return openai.New(cfg), nil
	}

	factoriesMu.RLock()
	factory, registered := factories[cfg.AuthType]
	factoriesMu.RUnlock()

	if !registered {
		return nil, fmt.Errorf("no content generator registered for auth type %q", cfg.AuthType)
	}
	return factory(cfg)
}
