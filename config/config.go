// Package config builds the immutable session configuration consumed by the
// content generators. All environment inspection happens here, exactly once,
// at construction time; no other component ever reads environment state
// mid-session.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
)

// Version is the host version advertised in the outbound user-agent string.
const Version = "0.1.0"

const (
	// DefaultModel is the primary model identifier used when the caller does
	// not configure one. Only this model is subject to the fallback probe.
	DefaultModel = "gpt-4.1"

	// FallbackModel is the lighter model the session downgrades to when the
	// fallback probe observes a rate limit on the primary model.
	FallbackModel = "gpt-4.1-mini"

	// DefaultEmbeddingModel substitutes for any embedding request whose
	// model identifier does not look like an embedding model.
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// AuthType selects which content-generator implementation backs a session.
type AuthType string

const (
	// AuthAPIKey authenticates with a bearer API key against the
	// OpenAI-compatible backend implemented by this module.
	AuthAPIKey AuthType = "api-key"

	// AuthPersonal selects the personal-login generator, provided by the
	// host application. This module only dispatches to it.
	AuthPersonal AuthType = "oauth-personal"

	// AuthVertex authenticates through a cloud project/location pair.
	AuthVertex AuthType = "vertex-ai"
)

// ContentGeneratorConfig is the session-scoped configuration: created once at
// session start, immutable thereafter, owned exclusively by the generator
// instance built from it.
type ContentGeneratorConfig struct {
	Model    string
	APIKey   string
	BaseURL  string
	Vertex   bool
	AuthType AuthType

	// CloudProject and CloudLocation are populated for vertex sessions and
	// otherwise empty.
	CloudProject  string
	CloudLocation string
}

// defaultBaseURL is the endpoint used when none is configured.
const defaultBaseURL = "https://api.openai.com/v1"

// LoadContentGeneratorConfig reads the environment once and returns the
// session configuration. A .env file in the working directory is honored when
// present (missing files are not an error). The model defaults to
// [DefaultModel] when empty; run the effective-model resolver afterwards to
// apply the fallback probe.
func LoadContentGeneratorConfig(model string, authType AuthType) *ContentGeneratorConfig {
	_ = godotenv.Load()

	if model == "" {
		model = DefaultModel
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cfg := &ContentGeneratorConfig{
		Model:         model,
		APIKey:        os.Getenv("OPENAI_API_KEY"),
		BaseURL:       baseURL,
		AuthType:      authType,
		CloudProject:  os.Getenv("GOOGLE_CLOUD_PROJECT"),
		CloudLocation: os.Getenv("GOOGLE_CLOUD_LOCATION"),
	}

	cfg.Vertex = authType == AuthVertex || (cfg.CloudProject != "" && cfg.CloudLocation != "")

	return cfg
}

// UserAgent returns the outbound user-agent string encoding host version,
// platform and architecture.
func UserAgent() string {
	return fmt.Sprintf("GenWire/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH)
}
