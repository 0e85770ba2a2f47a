package openai

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/genwire/genwire/genai"
	"github.com/genwire/genwire/internal/parse"
	"github.com/genwire/genwire/internal/utils"
	"github.com/genwire/genwire/observability"
)

// GenerateContentStream sends a streaming request and returns a lazy,
// single-consumption sequence of response snapshots.
//
// Each text delta produces a snapshot carrying the entire accumulated text so
// far as a single text part; snapshots are full replacements, never diffs.
// Tool-call fragments are buffered silently and flushed into the final
// snapshot. The final snapshot is emitted once the stream is complete: the
// usage chunk trails the finish marker, so the finish marker alone does not
// terminate the sequence. After the terminal snapshot the sequence ends; it
// is not restartable.
//
// Pre-stream errors (auth, bad request, network) terminate the sequence with
// its first yield. Mid-stream errors terminate it likewise; cancellation
// surfaces as the context's own condition. The response body is closed on
// every exit path, including an early break by the consumer.
func (g *Generator) GenerateContentStream(ctx context.Context, request *genai.GenerateContentRequest) iter.Seq2[*genai.GenerateContentResponse, error] {
	const op = "generateContentStream"

	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		span := observability.SpanFromContext(ctx)
		if span != nil {
			span.SetAttributes(
				observability.String(observability.AttrBackendEndpoint, g.cfg.BaseURL),
				observability.String(observability.AttrBackendModel, g.cfg.Model),
				observability.Bool(observability.AttrStreaming, true),
			)
		}

		chatRequest := g.buildChatRequest(request, true)

		httpResponse, err := utils.DoPostStream(ctx, g.client, g.cfg.BaseURL+chatCompletionsEndpoint, g.cfg.APIKey, chatRequest, defaultHeaders()...)
		if err != nil {
			yield(nil, wrapBackendErr(ctx, op, err))
			return
		}
		defer utils.CloseWithLog(httpResponse.Body)

		sseScanner := utils.NewSSEScanner(httpResponse.Body)
		accumulator := newChunkAccumulator()

		for {
			// After cancellation no further snapshots are emitted; the
			// consumer sees the cancellation condition, not a generic error.
			if ctx.Err() != nil {
				yield(nil, fmt.Errorf("%s: %w", op, ctx.Err()))
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				// [DONE] sentinel or raw stream end. Covers streams whose
				// finish marker had no trailing usage chunk, and streams
				// that ended without any finish marker; either way the
				// accumulated state flushes exactly once.
				if !accumulator.finished {
					yield(accumulator.finalSnapshot(), nil)
				}
				return
			}
			if sseErr != nil {
				yield(nil, wrapBackendErr(ctx, op, fmt.Errorf("SSE read error: %w", sseErr)))
				return
			}

			chunk, parseErr := unmarshalStreamChunk(payload)
			if parseErr != nil {
				yield(nil, wrapBackendErr(ctx, op, fmt.Errorf("failed to parse streaming chunk: %w", parseErr)))
				return
			}

			for _, snapshot := range accumulator.feed(chunk) {
				if !yield(snapshot, nil) {
					return
				}
			}

			// The terminal snapshot closes the sequence; later chunks (if
			// any) are never read.
			if accumulator.finished {
				return
			}
		}
	}
}

// toolCallFragment accumulates incremental tool call deltas into a complete
// call. ID and name arrive on the first delta for an index; argument
// fragments are appended as they come.
type toolCallFragment struct {
	id        string
	name      string
	arguments strings.Builder
}

// chunkAccumulator folds streaming chunks into provider-agnostic snapshots.
// One accumulator serves exactly one stream; it never backtracks, and feeding
// the same chunk sequence to two fresh accumulators yields identical final
// snapshots.
type chunkAccumulator struct {
	text       strings.Builder
	fragments  []*toolCallFragment
	usage      *genai.UsageMetadata
	finishSeen bool
	finished   bool
}

func newChunkAccumulator() *chunkAccumulator {
	return &chunkAccumulator{}
}

// feed consumes one chunk and returns the snapshots it produces: one per
// text delta, and the final snapshot once both the finish marker and its
// trailing usage chunk have arrived. The finish marker alone only records
// that the choice is done; with stream_options.include_usage the usage chunk
// comes after it, so flushing on the marker would lose the token accounting.
// Streams that never deliver usage are flushed by the consumer at stream end.
// Tool-call fragments produce no snapshot of their own; they are only
// meaningful once complete.
func (a *chunkAccumulator) feed(chunk *chatCompletionStreamChunk) []*genai.GenerateContentResponse {
	var snapshots []*genai.GenerateContentResponse

	// Usage arrives in a dedicated chunk with empty choices.
	if chunk.Usage != nil {
		a.usage = &genai.UsageMetadata{
			PromptTokenCount:     int32(chunk.Usage.PromptTokens),
			CandidatesTokenCount: int32(chunk.Usage.CompletionTokens),
			TotalTokenCount:      int32(chunk.Usage.TotalTokens),
		}
		if a.finishSeen && !a.finished {
			return append(snapshots, a.finalSnapshot())
		}
	}

	for _, choice := range chunk.Choices {
		if choice.Delta.Content != nil && *choice.Delta.Content != "" {
			a.text.WriteString(*choice.Delta.Content)
			snapshots = append(snapshots, a.textSnapshot())
		}

		for _, deltaPart := range choice.Delta.ToolCalls {
			a.bufferToolCallDelta(deltaPart)
		}

		if choice.FinishReason != nil && *choice.FinishReason != "" {
			a.finishSeen = true
			if a.usage != nil && !a.finished {
				snapshots = append(snapshots, a.finalSnapshot())
			}
		}
	}

	return snapshots
}

// bufferToolCallDelta merges an incremental tool-call delta into the fragment
// buffer, growing it when a new index appears.
func (a *chunkAccumulator) bufferToolCallDelta(delta streamToolCallPart) {
	for len(a.fragments) <= delta.Index {
		a.fragments = append(a.fragments, &toolCallFragment{})
	}

	fragment := a.fragments[delta.Index]
	if delta.ID != "" {
		fragment.id = delta.ID
	}
	if delta.Function.Name != "" {
		fragment.name = delta.Function.Name
	}
	if delta.Function.Arguments != "" {
		fragment.arguments.WriteString(delta.Function.Arguments)
	}
}

// textSnapshot returns an intermediate snapshot: the entire accumulated text
// as a single part, finish reason unset.
func (a *chunkAccumulator) textSnapshot() *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: a.text.String()}},
			},
			Index: 0,
		}},
	}
}

// finalSnapshot flushes the accumulated state: text (if any) followed by one
// function-call part per buffered fragment whose arguments parse as JSON
// after a repair attempt. Fragments that still fail to parse are dropped from
// the snapshot, per the streaming contract. Marks the accumulator finished.
func (a *chunkAccumulator) finalSnapshot() *genai.GenerateContentResponse {
	a.finished = true

	var parts []*genai.Part
	if a.text.Len() > 0 {
		parts = append(parts, &genai.Part{Text: a.text.String()})
	}

	for _, fragment := range a.fragments {
		args, err := parse.Arguments(fragment.arguments.String())
		if err != nil {
			continue
		}
		parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
			ID:   fragment.id,
			Name: fragment.name,
			Args: args,
		}})
	}

	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: genai.RoleModel, Parts: parts},
			FinishReason: genai.FinishReasonStop,
			Index:        0,
		}},
		UsageMetadata: a.usage,
	}
}
