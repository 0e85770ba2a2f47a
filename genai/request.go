package genai

/*
	##### GENERATOR INPUT #####
*/

// GenerateContentRequest is the input to both generation operations.
type GenerateContentRequest struct {
	Model string `json:"model,omitempty"` // Model identifier; the generator's configured model applies when empty
	// Contents holds the conversation turns in order.
	Contents []*Content `json:"contents"`
	// SystemInstruction, when present, always precedes every conversation
	// turn in the backend message sequence.
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Tools             []*Tool           `json:"tools,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// GenerationConfig carries optional sampling parameters.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

// CountTokensRequest asks for a token estimate over a set of contents.
type CountTokensRequest struct {
	Model    string     `json:"model,omitempty"`
	Contents []*Content `json:"contents"`
}

// CountTokensResponse reports the estimated token count. The value is an
// approximation (character count / 4, rounded up), not a tokenizer count;
// callers must not treat it as authoritative.
type CountTokensResponse struct {
	TotalTokens int32 `json:"totalTokens"`
}

// EmbedContentRequest asks for one embedding vector per input text.
type EmbedContentRequest struct {
	Model string   `json:"model,omitempty"`
	Texts []string `json:"texts"`
}

// ContentEmbedding is a single embedding vector.
type ContentEmbedding struct {
	Values []float32 `json:"values"`
}

// EmbedContentResponse carries the embedding vectors, order-preserved with
// respect to the request texts.
type EmbedContentResponse struct {
	Embeddings []*ContentEmbedding `json:"embeddings"`
}
