package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/genwire/genwire/config"
	"github.com/genwire/genwire/genai"
	"github.com/genwire/genwire/internal/utils"
	"github.com/genwire/genwire/observability"
)

const (
	chatCompletionsEndpoint = "/chat/completions"
	embeddingsEndpoint      = "/embeddings"
)

// Generator implements the genai.ContentGenerator contract against an
// OpenAI-compatible backend. A Generator exclusively owns its HTTP client
// handle; beyond that it holds no mutable state, so concurrent calls against
// the same instance are independent.
type Generator struct {
	cfg    *config.ContentGeneratorConfig
	client *http.Client
}

// New creates a generator from the given session configuration.
func New(cfg *config.ContentGeneratorConfig) *Generator {
	return &Generator{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// WithHTTPClient sets a custom HTTP client.
func (g *Generator) WithHTTPClient(httpClient *http.Client) *Generator {
	g.client = httpClient
	return g
}

var _ genai.ContentGenerator = (*Generator)(nil)

// defaultHeaders returns the fixed set of outbound headers applied to every
// backend request.
func defaultHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{{Key: "User-Agent", Value: config.UserAgent()}}
}

// buildChatRequest assembles the backend request from a provider-agnostic
// generation request. Pure conversion, no side effects.
func (g *Generator) buildChatRequest(request *genai.GenerateContentRequest, stream bool) chatCompletionRequest {
	model := request.Model
	if model == "" {
		model = g.cfg.Model
	}

	chatRequest := chatCompletionRequest{
		Model:    model,
		Messages: toChatMessages(request.SystemInstruction, request.Contents),
		Tools:    convertTools(request.Tools),
	}

	if generationConfig := request.GenerationConfig; generationConfig != nil {
		chatRequest.Temperature = generationConfig.Temperature
		chatRequest.TopP = generationConfig.TopP
		if generationConfig.MaxOutputTokens > 0 {
			chatRequest.MaxCompletionTokens = utils.Ptr(generationConfig.MaxOutputTokens)
		}
	}

	if stream {
		chatRequest.Stream = utils.Ptr(true)
		chatRequest.StreamOptions = &streamOptions{IncludeUsage: true}
	}

	return chatRequest
}

// wrapBackendErr classifies a failed backend call: context cancellation and
// deadline expiry surface as the context's own condition so callers can
// distinguish "we gave up" from "backend rejected this"; everything else
// becomes a BackendError preserving the original message.
func wrapBackendErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && (errors.Is(err, ctxErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return &genai.BackendError{Op: op, Message: err.Error(), Err: err}
}

// GenerateContent issues one non-streaming generation call.
func (g *Generator) GenerateContent(ctx context.Context, request *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error) {
	const op = "generateContent"

	observer := observability.ObserverFromContext(ctx)
	if observer != nil {
		observer.Trace(ctx, "OpenAI-compatible generator preparing request",
			observability.String(observability.AttrBackendEndpoint, g.cfg.BaseURL),
			observability.String(observability.AttrBackendModel, g.cfg.Model),
			observability.Int(observability.AttrRequestContentsCount, len(request.Contents)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
		)
	}

	chatRequest := g.buildChatRequest(request, false)

	_, chatResponse, err := utils.DoPostSync[chatCompletionResponse](ctx, g.client, g.cfg.BaseURL+chatCompletionsEndpoint, g.cfg.APIKey, chatRequest, defaultHeaders()...)
	if err != nil {
		return nil, wrapBackendErr(ctx, op, err)
	}
	if chatResponse == nil {
		return nil, &genai.BackendError{Op: op, Message: "empty response from backend"}
	}

	response, synthErr := responseFromChatCompletion(chatResponse)

	if observer != nil && len(response.Candidates) > 0 {
		observer.Debug(ctx, "Generation completed",
			observability.String(observability.AttrFinishReason, string(response.Candidates[0].FinishReason)),
			observability.Int(observability.AttrResponseToolCallsCount, len(response.FunctionCalls())),
		)
	}

	return response, synthErr
}

// CountTokens returns an approximate token count: the character count of all
// text parts, space-joined, divided by four and rounded up. This is an
// estimate, not a tokenizer count.
func (g *Generator) CountTokens(ctx context.Context, request *genai.CountTokensRequest) (*genai.CountTokensResponse, error) {
	var texts []string
	for _, content := range request.Contents {
		if content == nil {
			continue
		}
		for _, part := range content.Parts {
			if part != nil && part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
	}

	characters := len(strings.Join(texts, " "))
	estimate := (characters + 3) / 4

	return &genai.CountTokensResponse{TotalTokens: int32(estimate)}, nil
}

// EmbedContent passes the input texts to the backend's embedding call and
// returns one vector per input, order-preserved. When the requested model
// identifier does not look like an embedding model (no "embedding"
// substring), the default embedding model substitutes for it; this guards
// against accidentally routing a chat model into the embeddings endpoint.
func (g *Generator) EmbedContent(ctx context.Context, request *genai.EmbedContentRequest) (*genai.EmbedContentResponse, error) {
	const op = "embedContent"

	model := request.Model
	if model == "" {
		model = g.cfg.Model
	}
	if !strings.Contains(model, "embedding") {
		model = config.DefaultEmbeddingModel
	}

	_, embeddingResp, err := utils.DoPostSync[embeddingResponse](ctx, g.client, g.cfg.BaseURL+embeddingsEndpoint, g.cfg.APIKey, embeddingRequest{
		Model: model,
		Input: request.Texts,
	}, defaultHeaders()...)
	if err != nil {
		return nil, wrapBackendErr(ctx, op, err)
	}
	if embeddingResp == nil {
		return nil, &genai.BackendError{Op: op, Message: "empty response from backend"}
	}

	embeddings := make([]*genai.ContentEmbedding, len(embeddingResp.Data))
	for position, data := range embeddingResp.Data {
		index := data.Index
		if index < 0 || index >= len(embeddings) {
			index = position
		}
		embeddings[index] = &genai.ContentEmbedding{Values: data.Embedding}
	}

	return &genai.EmbedContentResponse{Embeddings: embeddings}, nil
}
