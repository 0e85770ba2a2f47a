package genai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_UnmarshalCollectsUnknownKeysIntoExtra(t *testing.T) {
	raw := `{
		"type": "object",
		"description": "a query",
		"properties": {"q": {"type": "string", "minLength": 1}},
		"required": ["q"],
		"x-vendor-hint": {"cacheable": true}
	}`

	var schema Schema
	require.NoError(t, json.Unmarshal([]byte(raw), &schema))

	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, "a query", schema.Description)
	assert.Equal(t, []string{"q"}, schema.Required)
	require.Contains(t, schema.Properties, "q")
	assert.Equal(t, "string", schema.Properties["q"].Type)

	// Unknown keys land in the extension bag, at every nesting level.
	assert.Contains(t, schema.Extra, "x-vendor-hint")
	assert.Contains(t, schema.Properties["q"].Extra, "minLength")
	assert.NotContains(t, schema.Extra, "type")
}

func TestSchema_MarshalRoundTripsExtensionBag(t *testing.T) {
	schema := &Schema{
		Type: "string",
		Extra: map[string]json.RawMessage{
			"format": json.RawMessage(`"date-time"`),
		},
	}

	encoded, err := json.Marshal(schema)
	require.NoError(t, err)

	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, "string", decoded["type"])
	assert.Equal(t, "date-time", decoded["format"])
}

func TestSchema_ExtensionBagNeverOverridesNamedField(t *testing.T) {
	schema := &Schema{
		Type: "object",
		Extra: map[string]json.RawMessage{
			"type": json.RawMessage(`"smuggled"`),
		},
	}

	encoded, err := json.Marshal(schema)
	require.NoError(t, err)

	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, "object", decoded["type"])
}
