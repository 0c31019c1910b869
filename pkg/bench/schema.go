package bench

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SuiteSchema returns the JSON schema of the [Suite] configuration, indented
// for direct output.
func SuiteSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	js := r.Reflect(&Suite{})

	b, err := js.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json schema: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := json.Indent(buf, b, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent json schema: %w", err)
	}

	return buf.Bytes(), nil
}

// JSONSchema documents [Duration] fields as Go duration strings.
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "string",
		Title:    "Duration",
		Examples: []any{"100ms", "2s"},
	}
}
