package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genwire/genwire/config"
	"github.com/genwire/genwire/genai"
)

// sseHandler writes the given payloads as SSE data events followed by the
// [DONE] sentinel.
func sseHandler(t *testing.T, payloads ...string) http.HandlerFunc {
	t.Helper()
	return func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "text/event-stream", request.Header.Get("Accept"))
		writer.Header().Set("Content-Type", "text/event-stream")
		for _, payload := range payloads {
			_, _ = writer.Write([]byte("data: " + payload + "\n\n"))
		}
		_, _ = writer.Write([]byte("data: [DONE]\n\n"))
	}
}

func newStreamTestGenerator(server *httptest.Server) *Generator {
	return New(&config.ContentGeneratorConfig{
		Model:   "gpt-4.1",
		APIKey:  "test-key",
		BaseURL: server.URL,
	}).WithHTTPClient(server.Client())
}

func collectStream(t *testing.T, generator *Generator) ([]*genai.GenerateContentResponse, []error) {
	t.Helper()
	var snapshots []*genai.GenerateContentResponse
	var failures []error
	for snapshot, err := range generator.GenerateContentStream(context.Background(), &genai.GenerateContentRequest{
		Contents: []*genai.Content{genai.NewUserContent("hi")},
	}) {
		if err != nil {
			failures = append(failures, err)
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, failures
}

func TestGenerateContentStream_FullReplaceSnapshots(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		`{"choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"}}]}`,
		`{"choices":[{"index":0,"delta":{"content":"lo"}}]}`,
		`{"choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
	))
	defer server.Close()

	snapshots, failures := collectStream(t, newStreamTestGenerator(server))
	require.Empty(t, failures)
	require.Len(t, snapshots, 3)

	// Each snapshot replaces the previous one wholesale.
	assert.Equal(t, "Hel", snapshots[0].Text())
	assert.Equal(t, "Hello", snapshots[1].Text())
	assert.Equal(t, genai.FinishReason(""), snapshots[0].Candidates[0].FinishReason)

	terminal := snapshots[2]
	assert.Equal(t, "Hello", terminal.Text())
	assert.Equal(t, genai.FinishReasonStop, terminal.Candidates[0].FinishReason)
}

func TestGenerateContentStream_ToolCallsBufferedUntilTerminal(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_s1","type":"function","function":{"name":"lookup","arguments":""}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"q\":"}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"x\"}"}}]}}]}`,
		`{"choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
	))
	defer server.Close()

	snapshots, failures := collectStream(t, newStreamTestGenerator(server))
	require.Empty(t, failures)

	// Fragments never leak into intermediate snapshots; only the terminal
	// snapshot carries the assembled call.
	require.Len(t, snapshots, 1)
	calls := snapshots[0].FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_s1", calls[0].ID)
	assert.Equal(t, "lookup", calls[0].Name)
	assert.Equal(t, map[string]any{"q": "x"}, calls[0].Args)
	assert.Equal(t, genai.FinishReasonStop, snapshots[0].Candidates[0].FinishReason)
}

// The usage chunk trails the finish marker on the wire; the terminal
// snapshot must still carry it.
func TestGenerateContentStream_UsageAttachesToTerminalSnapshot(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		`{"choices":[{"index":0,"delta":{"content":"ok"}}]}`,
		`{"choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		`{"choices":[],"usage":{"prompt_tokens":7,"completion_tokens":1,"total_tokens":8}}`,
	))
	defer server.Close()

	snapshots, failures := collectStream(t, newStreamTestGenerator(server))
	require.Empty(t, failures)
	require.Len(t, snapshots, 2)

	assert.Nil(t, snapshots[0].UsageMetadata)
	terminal := snapshots[1]
	require.NotNil(t, terminal.UsageMetadata)
	assert.Equal(t, int32(7), terminal.UsageMetadata.PromptTokenCount)
	assert.Equal(t, int32(8), terminal.UsageMetadata.TotalTokenCount)
}

// A stream that ends without an explicit finish marker still flushes the
// accumulated state exactly once.
func TestGenerateContentStream_EOFWithoutFinishMarker(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		`{"choices":[{"index":0,"delta":{"content":"partial"}}]}`,
	))
	defer server.Close()

	snapshots, failures := collectStream(t, newStreamTestGenerator(server))
	require.Empty(t, failures)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "partial", snapshots[1].Text())
	assert.Equal(t, genai.FinishReasonStop, snapshots[1].Candidates[0].FinishReason)
}

func TestGenerateContentStream_PreStreamErrorTerminatesSequence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		http.Error(writer, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	snapshots, failures := collectStream(t, newStreamTestGenerator(server))
	assert.Empty(t, snapshots)
	require.Len(t, failures, 1)

	var backendErr *genai.BackendError
	require.True(t, errors.As(failures[0], &backendErr))
	assert.Contains(t, backendErr.Message, "401")
}

func TestChunkAccumulator_Deterministic(t *testing.T) {
	content := "answer"
	finish := "stop"
	chunks := []*chatCompletionStreamChunk{
		{Choices: []streamChoice{{Delta: streamDelta{Content: &content}}}},
		{Choices: []streamChoice{{Delta: streamDelta{ToolCalls: []streamToolCallPart{{
			Index: 0, ID: "call_0", Type: "function",
		}}}}}},
		{Choices: []streamChoice{{Delta: streamDelta{ToolCalls: []streamToolCallPart{{
			Index: 0, Function: struct {
				Name      string `json:"name,omitempty"`
				Arguments string `json:"arguments,omitempty"`
			}{Name: "lookup", Arguments: `{"q":"x"}`},
		}}}}}},
		{Choices: []streamChoice{{Delta: streamDelta{}, FinishReason: &finish}}},
		{Usage: &chatUsage{PromptTokens: 2, CompletionTokens: 1, TotalTokens: 3}},
	}

	run := func() *genai.GenerateContentResponse {
		accumulator := newChunkAccumulator()
		var last *genai.GenerateContentResponse
		for _, chunk := range chunks {
			for _, snapshot := range accumulator.feed(chunk) {
				last = snapshot
			}
		}
		return last
	}

	first := run()
	second := run()
	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, "answer", first.Text())
	require.Len(t, first.FunctionCalls(), 1)
	require.NotNil(t, first.UsageMetadata)
	assert.Equal(t, int32(3), first.UsageMetadata.TotalTokenCount)
}

// Cancelling mid-stream ends the sequence with the cancellation condition;
// no snapshots follow it.
func TestGenerateContentStream_CancellationMidStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")
		_, _ = writer.Write([]byte(`data: {"choices":[{"index":0,"delta":{"content":"first"}}]}` + "\n\n"))
		if flusher, ok := writer.(http.Flusher); ok {
			flusher.Flush()
		}
		<-request.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var snapshots []*genai.GenerateContentResponse
	var failure error
	for snapshot, err := range newStreamTestGenerator(server).GenerateContentStream(ctx, &genai.GenerateContentRequest{
		Contents: []*genai.Content{genai.NewUserContent("hi")},
	}) {
		if err != nil {
			failure = err
			continue
		}
		snapshots = append(snapshots, snapshot)
		cancel()
	}

	require.Len(t, snapshots, 1)
	assert.Equal(t, "first", snapshots[0].Text())

	require.Error(t, failure)
	assert.ErrorIs(t, failure, context.Canceled)
	var backendErr *genai.BackendError
	assert.False(t, errors.As(failure, &backendErr))
}

// Fragments whose arguments remain unparseable after repair are dropped from
// the terminal snapshot rather than failing the stream.
func TestChunkAccumulator_UnparseableFragmentDropped(t *testing.T) {
	accumulator := newChunkAccumulator()
	accumulator.bufferToolCallDelta(streamToolCallPart{Index: 0, ID: "call_0"})
	accumulator.fragments[0].name = "broken"
	accumulator.fragments[0].arguments.WriteString(`"not an object"`)

	terminal := accumulator.finalSnapshot()
	assert.Empty(t, terminal.FunctionCalls())
	assert.True(t, accumulator.finished)
}
