package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/genwire/genwire/genai"
	"github.com/genwire/genwire/internal/parse"
)

/*
	MESSAGE CONVERSION
*/

// mapRole translates a provider-agnostic role into a chat-completions role.
// Unknown roles map to "user", never "assistant": a mislabelled turn sent as
// user input is harmless, while a fabricated assistant turn would rewrite the
// model's own history.
func mapRole(role genai.Role) string {
	switch role {
	case genai.RoleModel:
		return "assistant"
	case genai.RoleUser, genai.RoleSystem, genai.RoleAssistant:
		return string(role)
	default:
		return "user"
	}
}

// callIDAllocator hands out tool-call identifiers from a monotonic counter
// scoped to one conversion, and tracks issued identifiers so tool-result
// messages correlate to the originating call in order.
type callIDAllocator struct {
	next    int
	pending []string
}

// allocateCall returns the identifier for a function-call part: the part's
// explicit ID when present, otherwise a fresh counter ID. Either way the ID
// joins the pending queue for later response correlation.
func (a *callIDAllocator) allocateCall(explicit string) string {
	id := explicit
	if id == "" {
		id = fmt.Sprintf("call_%d", a.next)
		a.next++
	}
	a.pending = append(a.pending, id)
	return id
}

// claimResponse returns the identifier a function-response part correlates
// to: the part's explicit ID when present, otherwise the oldest unclaimed
// call ID, otherwise a fresh counter ID for an orphan response.
func (a *callIDAllocator) claimResponse(explicit string) string {
	if explicit != "" {
		for i, id := range a.pending {
			if id == explicit {
				a.pending = append(a.pending[:i], a.pending[i+1:]...)
				break
			}
		}
		return explicit
	}
	if len(a.pending) > 0 {
		id := a.pending[0]
		a.pending = a.pending[1:]
		return id
	}
	id := fmt.Sprintf("call_%d", a.next)
	a.next++
	return id
}

// toChatMessages converts the ordered content turns into the backend's flat
// message list. A system instruction, when present, is always the first
// message, independent of any system-role turns in contents.
func toChatMessages(systemInstruction *genai.Content, contents []*genai.Content) []chatMessage {
	var messages []chatMessage

	if systemInstruction != nil {
		if body := pureContentBody(systemInstruction); body != "" {
			messages = append(messages, chatMessage{Role: "system", Content: body})
		}
	}

	allocator := &callIDAllocator{}

	for _, content := range contents {
		if content == nil {
			continue
		}
		if isToolTurn(content) {
			messages = append(messages, convertToolTurn(content, allocator)...)
			continue
		}
		if body := pureContentBody(content); body != "" {
			messages = append(messages, chatMessage{
				Role:    mapRole(content.Role),
				Content: body,
			})
		}
	}

	return messages
}

// isToolTurn reports whether any part of the turn carries a function call or
// function response.
func isToolTurn(content *genai.Content) bool {
	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil || part.FunctionResponse != nil {
			return true
		}
	}
	return false
}

// convertToolTurn emits the messages for a tool turn: at most one assistant
// message carrying the joined text body and all tool invocations, followed by
// one tool-result message per function-response part.
func convertToolTurn(content *genai.Content, allocator *callIDAllocator) []chatMessage {
	var texts []string
	var toolCalls []chatToolCall
	var results []chatMessage

	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		switch {
		case part.FunctionCall != nil:
			call := chatToolCall{
				ID:   allocator.allocateCall(part.FunctionCall.ID),
				Type: "function",
			}
			call.Function.Name = part.FunctionCall.Name
			call.Function.Arguments = parse.MarshalArguments(part.FunctionCall.Args)
			toolCalls = append(toolCalls, call)

		case part.FunctionResponse != nil:
			results = append(results, chatMessage{
				Role:       "tool",
				Content:    marshalResponsePayload(part.FunctionResponse.Response),
				Name:       part.FunctionResponse.Name,
				ToolCallID: allocator.claimResponse(part.FunctionResponse.ID),
			})

		case part.Text != "" && !part.Thought:
			texts = append(texts, part.Text)
		}
	}

	var messages []chatMessage
	if len(toolCalls) > 0 || len(texts) > 0 {
		assistant := chatMessage{Role: "assistant", ToolCalls: toolCalls}
		if len(texts) > 0 {
			assistant.Content = strings.Join(texts, "\n")
		}
		messages = append(messages, assistant)
	}
	return append(messages, results...)
}

// pureContentBody concatenates, in order, each part's text or a placeholder
// describing binary parts by MIME type. Thought parts and parts with no
// payload are skipped. An empty result means the turn produces no message.
func pureContentBody(content *genai.Content) string {
	var builder strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		switch {
		case part.Text != "":
			builder.WriteString(part.Text)
		case part.InlineData != nil:
			builder.WriteString("[" + part.InlineData.MIMEType + " data]")
		case part.FileData != nil:
			builder.WriteString("[" + part.FileData.MIMEType + " data]")
		}
	}
	return builder.String()
}

// marshalResponsePayload serialises a function-response payload to the JSON
// string carried by a tool-result message.
func marshalResponsePayload(response map[string]any) string {
	if response == nil {
		return "{}"
	}
	encoded, err := json.Marshal(response)
	if err != nil {
		panic(fmt.Sprintf("openai: unmarshalable function response payload: %v", err))
	}
	return string(encoded)
}

/*
	SCHEMA & TOOL CONVERSION
*/

// convertSchema translates a provider-agnostic schema into the backend's
// function-parameter format. The type tag is lower-cased, properties and
// items are converted recursively, description/required/enum are copied
// verbatim when present, and absent fields are omitted entirely. Extension
// bag keys pass through opaquely without overriding converted fields.
func convertSchema(schema *genai.Schema) map[string]any {
	if schema == nil {
		return nil
	}

	converted := map[string]any{
		"type": strings.ToLower(schema.Type),
	}
	if schema.Description != "" {
		converted["description"] = schema.Description
	}
	if len(schema.Properties) > 0 {
		properties := make(map[string]any, len(schema.Properties))
		for name, property := range schema.Properties {
			properties[name] = convertSchema(property)
		}
		converted["properties"] = properties
	}
	if schema.Items != nil {
		converted["items"] = convertSchema(schema.Items)
	}
	if len(schema.Required) > 0 {
		converted["required"] = schema.Required
	}
	if len(schema.Enum) > 0 {
		converted["enum"] = schema.Enum
	}
	for key, value := range schema.Extra {
		if _, taken := converted[key]; taken {
			continue
		}
		converted[key] = value
	}
	return converted
}

// convertTools flattens tool declarations into the backend's per-function
// tool list, preserving tools-then-declarations order.
func convertTools(tools []*genai.Tool) []chatTool {
	var converted []chatTool
	for _, tool := range tools {
		if tool == nil {
			continue
		}
		for _, declaration := range tool.FunctionDeclarations {
			if declaration == nil {
				continue
			}
			converted = append(converted, chatTool{
				Type: "function",
				Function: chatFunction{
					Name:        declaration.Name,
					Description: declaration.Description,
					Parameters:  convertSchema(declaration.Parameters),
				},
			})
		}
	}
	return converted
}

/*
	RESPONSE SYNTHESIS
*/

// responseFromChatCompletion converts a completed backend response into the
// provider-agnostic envelope. Only the first choice is used; the
// provider-agnostic model returns a single candidate.
//
// Tool calls whose argument strings fail to parse (after a repair attempt)
// are surfaced through the returned error as joined
// [*genai.MalformedToolArgumentsError] values; the rest of the response is
// still built and returned, so one bad call never corrupts unrelated parts.
func responseFromChatCompletion(resp *chatCompletionResponse) (*genai.GenerateContentResponse, error) {
	out := &genai.GenerateContentResponse{}

	if resp.Usage != nil {
		out.UsageMetadata = &genai.UsageMetadata{
			PromptTokenCount:     int32(resp.Usage.PromptTokens),
			CandidatesTokenCount: int32(resp.Usage.CompletionTokens),
			TotalTokenCount:      int32(resp.Usage.TotalTokens),
		}
	}

	if len(resp.Choices) == 0 {
		return out, nil
	}
	choice := resp.Choices[0]

	var parts []*genai.Part
	if choice.Message.Content != "" {
		parts = append(parts, &genai.Part{Text: choice.Message.Content})
	}

	var malformed []error
	for _, toolCall := range choice.Message.ToolCalls {
		args, err := parse.Arguments(toolCall.Function.Arguments)
		if err != nil {
			malformed = append(malformed, &genai.MalformedToolArgumentsError{
				Name:      toolCall.Function.Name,
				Arguments: toolCall.Function.Arguments,
				Err:       err,
			})
			continue
		}
		parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
			ID:   toolCall.ID,
			Name: toolCall.Function.Name,
			Args: args,
		}})
	}

	out.Candidates = []*genai.Candidate{{
		Content:      &genai.Content{Role: genai.RoleModel, Parts: parts},
		FinishReason: genai.FinishReason(choice.FinishReason),
		Index:        0,
	}}

	return out, errors.Join(malformed...)
}
