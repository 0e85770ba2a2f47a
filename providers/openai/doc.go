// Package openai implements the genai.ContentGenerator contract against an
// OpenAI-compatible chat-completions backend.
//
// The package is the translation layer between the provider-agnostic content
// model and the backend wire format: it converts content turns into flat chat
// messages, flattens tool declarations into per-function tool entries,
// synthesizes provider-agnostic responses from completed or streamed backend
// output, and runs the one-shot effective-model probe that decides whether a
// session downgrades to the fallback model.
//
// The main entry point is [New], which builds a generator from an immutable
// session configuration. Streaming is available through
// [Generator.GenerateContentStream], which yields full-replace response
// snapshots as SSE chunks arrive.
package openai
