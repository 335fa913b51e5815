package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseError reports that no structured payload could be recovered. Raw holds
// the complete model output for diagnostics.
type ParseError struct {
	Raw   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

var errNoObject = errors.New("no JSON object found in response")

// ExtractPayload returns the text between the first '{' and the last '}'
// inclusive. This is a heuristic, not a parser: prose containing braces
// before or after the object defeats it.
func ExtractPayload(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", &ParseError{Raw: text, Cause: errNoObject}
	}
	return text[start : end+1], nil
}

// Parse recovers a Report from model output. Only the brace search and the
// JSON syntax can fail; the decoded object is kept as-is, whatever its keys
// and value shapes.
func Parse(text string) (*Report, error) {
	payload, err := ExtractPayload(text)
	if err != nil {
		return nil, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, &ParseError{Raw: text, Cause: err}
	}
	return &Report{Payload: obj}, nil
}
