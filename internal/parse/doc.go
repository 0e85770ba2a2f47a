// Package parse provides tolerant JSON decoding for tool-call argument
// payloads. Backends stream argument strings that are occasionally malformed
// (truncated fragments, single quotes, trailing commas); decoding first tries
// strict encoding/json and then falls back to jsonrepair before giving up.
package parse
