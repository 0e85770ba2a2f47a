package genai

import "encoding/json"

// Tool groups zero or more function declarations under one capability the
// backend may invoke instead of returning plain text.
type Tool struct {
	FunctionDeclarations []*FunctionDeclaration `json:"functionDeclarations,omitempty"`
}

// FunctionDeclaration describes a single callable function: its name, a
// human-readable description, and an optional parameter schema.
type FunctionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Schema is a recursive JSON-schema-like type description. Type is always
// present; Items and Properties only reference strictly nested schemas, so
// recursion terminates.
//
// The named fields form a closed set the converters handle exhaustively.
// Keys outside that set survive a round trip opaquely in Extra, so schemas
// authored against a more permissive dialect are not silently truncated.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []any              `json:"enum,omitempty"`

	// Extra holds unrecognized keys verbatim. Never interpreted, only
	// passed through.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownSchemaKeys are the JSON keys handled by the named Schema fields.
var knownSchemaKeys = map[string]bool{
	"type":        true,
	"description": true,
	"properties":  true,
	"items":       true,
	"required":    true,
	"enum":        true,
}

// schemaAlias avoids marshalling recursion into the custom methods.
type schemaAlias Schema

// MarshalJSON emits the named fields plus any extension-bag keys. A bag key
// never overrides a named field.
func (s *Schema) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal((*schemaAlias)(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return base, nil
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, value := range s.Extra {
		if knownSchemaKeys[key] {
			continue
		}
		merged[key] = value
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the named fields and collects every other key into
// the extension bag.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, (*schemaAlias)(s)); err != nil {
		return err
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if knownSchemaKeys[key] {
			continue
		}
		if s.Extra == nil {
			s.Extra = map[string]json.RawMessage{}
		}
		s.Extra[key] = raw[key]
	}
	return nil
}
