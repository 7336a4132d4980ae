// Package contract parses generator output into an api.GeneratedTask.
//
// The generator is asked for a single JSON object. Models often wrap that
// object in a Markdown code fence, so the fence and surrounding backticks
// and whitespace are removed before a strict JSON decode.
package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Janani-6874/dataagent/pkg/api"
)

// ParseError reports generator output that is not a JSON object. Raw holds
// the text exactly as received.
type ParseError struct {
	Err error
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse LLM response as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// cutset is trimmed from both ends after fence removal.
const cutset = "` \n\r\t"

// Parse decodes raw into a GeneratedTask. It returns *ParseError when the
// text is not a JSON object. A decoded task may still lack code; callers
// check that with GeneratedTask.Validate.
func Parse(raw string) (*api.GeneratedTask, error) {
	cleaned := Clean(raw)

	var v any
	dec := json.NewDecoder(strings.NewReader(cleaned))
	if err := dec.Decode(&v); err != nil {
		return nil, &ParseError{Err: err, Raw: raw}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Err: errors.New("unexpected data after JSON value"), Raw: raw}
	}

	fields, ok := v.(map[string]any)
	if !ok {
		return nil, &ParseError{Err: fmt.Errorf("expected a JSON object, got %s", kindOf(v)), Raw: raw}
	}
	return api.TaskFromFields(fields), nil
}

// Clean strips a leading ``` or ```json fence and trims backticks and
// whitespace from both ends.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	return strings.Trim(s, cutset)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
