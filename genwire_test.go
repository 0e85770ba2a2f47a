package genwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genwire/genwire/config"
	"github.com/genwire/genwire/genai"
)

func TestNewContentGenerator_BuiltInAuthModes(t *testing.T) {
	for _, authType := range []config.AuthType{config.AuthAPIKey, config.AuthVertex, ""} {
		generator, err := NewContentGenerator(&config.ContentGeneratorConfig{
			Model:    config.DefaultModel,
			AuthType: authType,
		})
		require.NoError(t, err, "auth type %q", authType)
		assert.NotNil(t, generator)
	}
}

func TestNewContentGenerator_UnregisteredAuthType(t *testing.T) {
	_, err := NewContentGenerator(&config.ContentGeneratorConfig{
		AuthType: config.AuthPersonal,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "oauth-personal")
}

func TestNewContentGenerator_RegisteredFactory(t *testing.T) {
	custom := config.AuthType("test-custom")
	sentinel := &stubGenerator{}
	RegisterGenerator(custom, func(cfg *config.ContentGeneratorConfig) (genai.ContentGenerator, error) {
		return sentinel, nil
	})

	generator, err := NewContentGenerator(&config.ContentGeneratorConfig{AuthType: custom})
	require.NoError(t, err)
	assert.Same(t, sentinel, generator)
}

type stubGenerator struct {
	genai.ContentGenerator
}
