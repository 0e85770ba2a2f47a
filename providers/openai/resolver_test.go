package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genwire/genwire/config"
)

func resolverConfig(baseURL string, model string) *config.ContentGeneratorConfig {
	return &config.ContentGeneratorConfig{
		Model:   model,
		APIKey:  "test-key",
		BaseURL: baseURL,
	}
}

func TestResolveEffectiveModel_RateLimitedFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		var probe chatCompletionRequest
		require.NoError(t, json.NewDecoder(request.Body).Decode(&probe))
		assert.Equal(t, config.DefaultModel, probe.Model)
		require.NotNil(t, probe.MaxCompletionTokens)
		assert.Equal(t, 1, *probe.MaxCompletionTokens)

		http.Error(writer, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	model := ResolveEffectiveModel(context.Background(), server.Client(), resolverConfig(server.URL, config.DefaultModel))
	assert.Equal(t, config.FallbackModel, model)
}

// Only a definitive 429 downgrades; any other failure keeps the primary.
func TestResolveEffectiveModel_ServerErrorKeepsPrimary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		http.Error(writer, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	model := ResolveEffectiveModel(context.Background(), server.Client(), resolverConfig(server.URL, config.DefaultModel))
	assert.Equal(t, config.DefaultModel, model)
}

func TestResolveEffectiveModel_TransportFailureKeepsPrimary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	model := ResolveEffectiveModel(context.Background(), nil, resolverConfig(server.URL, config.DefaultModel))
	assert.Equal(t, config.DefaultModel, model)
}

func TestResolveEffectiveModel_SuccessKeepsPrimary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"p"},"finish_reason":"length"}]}`))
	}))
	defer server.Close()

	model := ResolveEffectiveModel(context.Background(), server.Client(), resolverConfig(server.URL, config.DefaultModel))
	assert.Equal(t, config.DefaultModel, model)
}

func TestResolveEffectiveModel_NonPrimaryModelSkipsProbe(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		http.Error(writer, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	model := ResolveEffectiveModel(context.Background(), server.Client(), resolverConfig(server.URL, "gpt-4o"))
	assert.Equal(t, "gpt-4o", model)
	assert.Zero(t, requests.Load())
}
