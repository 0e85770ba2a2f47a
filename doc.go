// Package genwire is a bidirectional translation layer between a
// provider-agnostic conversation model and an OpenAI-compatible
// chat-completions backend.
//
// Callers author requests and consume responses through the genai package's
// content model; the providers/openai package converts to and from the
// backend wire format, accumulates streaming responses into full-replace
// snapshots, and runs the one-shot fallback probe that fixes the session's
// model identifier.
//
// Typical usage:
//
//	cfg := config.LoadContentGeneratorConfig("", config.AuthAPIKey)
//	cfg.Model = openai.ResolveEffectiveModel(ctx, nil, cfg)
//	generator, err := genwire.NewContentGenerator(cfg)
package genwire
