package genai

import "fmt"

// BackendError wraps any transport failure or non-2xx response from a
// generation or embedding call. The original backend message is always
// preserved, so calling code can distinguish "backend rejected this" from a
// conversion bug. Match with errors.As.
type BackendError struct {
	// Op names the failing operation ("generateContent",
	// "generateContentStream", "embedContent").
	Op string
	// Message is the original backend/transport message text.
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: backend request failed: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: backend request failed", e.Op)
}

func (e *BackendError) Unwrap() error { return e.Err }

// MalformedToolArgumentsError reports a tool call whose argument payload
// failed to parse as JSON even after repair. It is surfaced per offending
// call and never aborts unrelated parts of the same response.
type MalformedToolArgumentsError struct {
	// Name is the function name of the offending call.
	Name string
	// Arguments is the raw argument string that failed to parse.
	Arguments string
	Err       error
}

func (e *MalformedToolArgumentsError) Error() string {
	return fmt.Sprintf("tool call %q carries malformed arguments: %v", e.Name, e.Err)
}

func (e *MalformedToolArgumentsError) Unwrap() error { return e.Err }
