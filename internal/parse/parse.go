package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Arguments decodes a tool-call argument string into a map. An empty or
// blank string decodes to an empty map, matching the convention that a call
// without arguments carries "{}" or nothing at all.
//
// Decoding is repair-then-retry: strict JSON first, then a jsonrepair pass
// for the malformed payloads some backends emit. Returns an error only when
// both attempts fail; the caller decides how to surface it.
func Arguments(content string) (map[string]any, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	err := json.Unmarshal([]byte(content), &args)
	if err == nil {
		return args, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return nil, fmt.Errorf("failed to parse arguments and failed to repair JSON: parse error: %w, repair error: %v", err, repairErr)
	}

	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return nil, fmt.Errorf("failed to parse repaired arguments: %w", err)
	}
	return args, nil
}

// MarshalArguments serialises an argument map to the JSON string form the
// backend wire format expects. A nil map serialises to "{}".
func MarshalArguments(args map[string]any) string {
	if args == nil {
		return "{}"
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		// Maps with unmarshalable values are a programming error on the
		// caller's side; fail loudly instead of sending garbage.
		panic(fmt.Sprintf("parse: unmarshalable tool arguments: %v", err))
	}
	return string(encoded)
}
