package server

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CallRequest is the body of POST /call. Fields stay raw so that a request
// with oddly typed arguments still reaches the tool; Params is accepted as an
// alias for Args and Args wins when both are present.
type CallRequest struct {
	Tool   json.RawMessage `json:"tool"`
	Args   json.RawMessage `json:"args"`
	Params json.RawMessage `json:"params"`
}

// toolName renders the tool field. It reports false when the field is
// missing or empty: null, "", 0, false, [] or {}.
func (r CallRequest) toolName() (ToolName, bool) {
	var v any
	if len(r.Tool) == 0 || json.Unmarshal(r.Tool, &v) != nil || isEmptyValue(v) {
		return "", false
	}
	if s, ok := v.(string); ok {
		return ToolName(s), true
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, r.Tool); err != nil {
		return ToolName(r.Tool), true
	}
	return ToolName(compact.String()), true
}

// arguments decodes args (or params). Absent or null arguments are an empty
// mapping; anything other than a JSON object is recorded in Arguments.Err.
func (r CallRequest) arguments() Arguments {
	raw := r.Args
	if isNull(raw) {
		raw = r.Params
	}
	if isNull(raw) {
		return Arguments{Values: map[string]any{}}
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		var v any
		_ = json.Unmarshal(raw, &v)
		return Arguments{
			Values: map[string]any{},
			Err:    fmt.Errorf("args must be an object, got %s", jsonKind(v)),
		}
	}
	return Arguments{Values: values}
}

// Arguments are the decoded tool arguments. Tools that read Values must fail
// with Err when it is set.
type Arguments struct {
	Values map[string]any
	Err    error
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return "invalid value"
	}
}

// Envelope is the result shape of every tool invocation.
type Envelope struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// fallbackError stands in for failures that carry no message.
const fallbackError = "tool failed"

func success(result any) Envelope { return Envelope{OK: true, Result: result} }

func failure(msg string) Envelope {
	if msg == "" {
		msg = fallbackError
	}
	return Envelope{OK: false, Error: msg}
}

// DatetimeResult is returned by get_datetime.
type DatetimeResult struct {
	ISOUTC   string `json:"iso_utc"`
	HumanUTC string `json:"human_utc"`
}

type rootStatus struct {
	Status   string `json:"status"`
	Manifest string `json:"manifest"`
}

type errorDetail struct {
	Detail string `json:"detail"`
}
