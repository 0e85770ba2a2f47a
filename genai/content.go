package genai

import "github.com/genwire/genwire/internal/utils"

// Role identifies the author of a content turn; compatible with string.
// Converters tolerate free-form role strings and map unknown values to a
// safe default (see the backend adapter documentation).
type Role string

const (
	// RoleUser is an end-user turn.
	RoleUser Role = "user"
	// RoleModel is a model turn in the provider-agnostic dialect.
	RoleModel Role = "model"
	// RoleSystem carries system instructions.
	RoleSystem Role = "system"
	// RoleAssistant is accepted as a synonym for RoleModel on input.
	RoleAssistant Role = "assistant"
)

// Content is one conversational turn: a role and an ordered sequence of parts.
type Content struct {
	Role  Role    `json:"role,omitempty"`
	Parts []*Part `json:"parts"`
}

// Part is one unit of payload within a turn. Exactly the populated fields are
// meaningful; converters treat them as mutually exclusive when classifying a
// turn.
type Part struct {
	Text             string            `json:"text,omitempty"`
	Thought          bool              `json:"thought,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
	InlineData       *Blob             `json:"inlineData,omitempty"`
	FileData         *FileData         `json:"fileData,omitempty"`
}

// FunctionCall is a request from the model to invoke a named function.
type FunctionCall struct {
	// ID correlates the call with its response. Optional on input; the
	// message converter generates one when absent.
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse carries the result of a previously issued function call.
type FunctionResponse struct {
	// ID correlates the response with the originating call. Optional; when
	// absent the message converter correlates by call order.
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response,omitempty"`
}

// Blob is inline binary data, base64-encoded, with its MIME type.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// FileData references external content by URI instead of carrying it inline.
type FileData struct {
	MIMEType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

// NewTextPart returns a text part.
func NewTextPart(text string) *Part {
	return &Part{Text: text}
}

// NewFunctionCallPart returns a function-call part.
func NewFunctionCallPart(name string, args map[string]any) *Part {
	return &Part{FunctionCall: &FunctionCall{Name: name, Args: args}}
}

// NewFunctionResponsePart returns a function-response part.
func NewFunctionResponsePart(name string, response map[string]any) *Part {
	return &Part{FunctionResponse: &FunctionResponse{Name: name, Response: response}}
}

// NewUserContent wraps text into a single user turn.
func NewUserContent(text string) *Content {
	return &Content{Role: RoleUser, Parts: []*Part{NewTextPart(text)}}
}

// NewModelContent wraps text into a single model turn.
func NewModelContent(text string) *Content {
	return &Content{Role: RoleModel, Parts: []*Part{NewTextPart(text)}}
}

// String returns the compact JSON representation of the content turn.
// Intended for log output; marshalling failures degrade to an error string.
func (c *Content) String() string {
	return utils.JSONToString(c)
}
