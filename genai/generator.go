package genai

import (
	"context"
	"iter"
)

// ContentGenerator is the four-operation contract every backend adapter
// implements. Implementations are safe for concurrent use: each call owns its
// buffers for its lifetime only and no converter or synthesizer holds
// cross-call state.
type ContentGenerator interface {
	// GenerateContent issues one non-streaming generation call and returns
	// the completed response. Backend and transport failures are returned
	// as a [*BackendError], never as a raw error.
	GenerateContent(ctx context.Context, request *GenerateContentRequest) (*GenerateContentResponse, error)

	// GenerateContentStream returns a lazy, single-consumption sequence of
	// response snapshots. Each snapshot is authoritative: it carries the
	// entire accumulated state so far and supersedes every prior snapshot.
	// The sequence is finite and not restartable; a mid-stream error
	// terminates it and no further snapshots follow. Callers must consume
	// the sequence (or break out of the loop) so the underlying transport
	// resources are released.
	GenerateContentStream(ctx context.Context, request *GenerateContentRequest) iter.Seq2[*GenerateContentResponse, error]

	// CountTokens returns an approximate token count for the request
	// contents. The estimate is documented in [CountTokensResponse].
	CountTokens(ctx context.Context, request *CountTokensRequest) (*CountTokensResponse, error)

	// EmbedContent returns one embedding vector per input text,
	// order-preserved. Backend failures are returned as a [*BackendError].
	EmbedContent(ctx context.Context, request *EmbedContentRequest) (*EmbedContentResponse, error)
}
