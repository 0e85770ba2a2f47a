package observability

// Semantic conventions for observability attributes. These constants define
// standard attribute names so the same keys appear across every component.

// --- Generator attributes ---

const (
	// AttrBackendEndpoint is the backend base URL.
	AttrBackendEndpoint = "backend.endpoint"

	// AttrBackendModel is the model identifier sent to the backend.
	AttrBackendModel = "backend.model"

	// AttrFinishReason is the reason the generation finished.
	AttrFinishReason = "backend.finish_reason"

	// AttrStreaming reports whether the call used the streaming path.
	AttrStreaming = "backend.streaming"
)

// --- Request/response attributes ---

const (
	// AttrRequestContentsCount is the number of content turns in the request.
	AttrRequestContentsCount = "request.contents_count"

	// AttrRequestToolsCount is the number of tool declarations in the request.
	AttrRequestToolsCount = "request.tools_count"

	// AttrResponseToolCallsCount is the number of tool calls in the response.
	AttrResponseToolCallsCount = "response.tool_calls_count"
)

// --- HTTP attributes ---

const (
	// AttrHTTPMethod is the HTTP request method.
	AttrHTTPMethod = "http.method"

	// AttrHTTPURL is the full request URL.
	AttrHTTPURL = "http.url"

	// AttrHTTPStatusCode is the response status code.
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPRequestBodySize is the request body size in bytes.
	AttrHTTPRequestBodySize = "http.request.body_size"

	// AttrHTTPResponseBodySize is the response body size in bytes.
	AttrHTTPResponseBodySize = "http.response.body_size"
)

// --- Token usage attributes ---

const (
	// AttrTokensPrompt is the number of prompt tokens.
	AttrTokensPrompt = "tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrTokensCandidates is the number of generated tokens.
	AttrTokensCandidates = "tokens.candidates" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrTokensTotal is the total number of tokens.
	AttrTokensTotal = "tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens
)
