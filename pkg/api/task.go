package api

import (
	"errors"
	"strings"
)

// ErrMissingCode is returned when generator output parses as JSON but
// carries no usable code field.
var ErrMissingCode = errors.New("invalid LLM response: missing code field")

// GeneratedTask is the parsed generator contract: an explanation for the
// user and the code body to execute.
type GeneratedTask struct {
	Narrative string `json:"narrative,omitempty"`
	Code      string `json:"code"`

	// Fields holds the complete decoded object, including keys not
	// mapped onto Narrative or Code.
	Fields map[string]any `json:"-"`
}

// narrativeKeys are checked in order when extracting the narrative.
var narrativeKeys = []string{"narrative", "explanation", "questions"}

// TaskFromFields maps a decoded JSON object onto a GeneratedTask. A code
// field given as a list of lines is joined with newlines, and so is a
// list-valued narrative.
func TaskFromFields(fields map[string]any) *GeneratedTask {
	t := &GeneratedTask{Fields: fields}
	t.Code = joinLines(fields["code"])
	for _, k := range narrativeKeys {
		if s := joinLines(fields[k]); s != "" {
			t.Narrative = s
			break
		}
	}
	return t
}

// Validate rejects tasks without a non-empty code body.
func (t *GeneratedTask) Validate() error {
	if t == nil || strings.TrimSpace(t.Code) == "" {
		return ErrMissingCode
	}
	return nil
}

func joinLines(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []any:
		lines := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return ""
			}
			lines = append(lines, s)
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}
