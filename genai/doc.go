// Package genai defines the provider-agnostic conversation model used by
// genwire: role-tagged content turns composed of ordered parts (text,
// function calls, function responses, inline and file data), tool and
// function-schema declarations, and the response envelope with usage
// metadata.
//
// The package also declares the [ContentGenerator] contract that every
// backend adapter implements. Callers author requests and consume responses
// exclusively through these types; the wire format of the underlying backend
// never leaks through this boundary.
package genai
