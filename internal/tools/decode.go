package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"collabboard/internal/apperr"
)

// Call is one tool invocation returned by the model.
type Call struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Decode resolves call.Name to an operation, validates the arguments against
// that operation's schema and decodes them into its typed args value.
//
// Unknown names fail with UNKNOWN_OPERATION; anything wrong with the
// arguments fails with MALFORMED_TOOL_ARGUMENTS. Top-level null values are
// treated as absent, and empty arguments as an empty object.
func (c *Catalog) Decode(call Call) (Args, error) {
	op, ok := ParseOperation(call.Name)
	if !ok {
		return nil, apperr.NewUnknownOperation(call.Name)
	}

	raw := bytes.TrimSpace(call.Arguments)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, apperr.NewMalformedToolArguments(call.Name, fmt.Errorf("invalid JSON: %w", err))
	}
	obj, ok := generic.(map[string]interface{})
	if !ok {
		return nil, apperr.NewMalformedToolArguments(call.Name, fmt.Errorf("arguments must be a JSON object"))
	}
	for k, v := range obj {
		if v == nil {
			delete(obj, k)
		}
	}

	if err := c.entries[op].schema.Validate(obj); err != nil {
		return nil, apperr.NewMalformedToolArguments(call.Name, err)
	}

	cleaned, err := json.Marshal(obj)
	if err != nil {
		return nil, apperr.NewMalformedToolArguments(call.Name, err)
	}
	target := newArgs(op)
	if err := json.Unmarshal(cleaned, target); err != nil {
		return nil, apperr.NewMalformedToolArguments(call.Name, err)
	}

	// hand out the value, not the pointer the decoder filled
	return reflect.ValueOf(target).Elem().Interface().(Args), nil
}
