// Package schema validates sync payloads against embedded JSON Schemas.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed bulk-sync-v1.json
var bulkSyncSchemaJSON string

// Violation is one schema failure located by JSON pointer.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Error lists every violation of a rejected document.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	return "schema validation failed: " + strings.Join(e.Messages(), "; ")
}

func (e *Error) Messages() []string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.String())
	}
	return msgs
}

type Validator struct {
	bulk *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	if err := compiler.AddResource("bulk-sync-v1.json",
		strings.NewReader(bulkSyncSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	bulk, err := compiler.Compile("bulk-sync-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{bulk: bulk}, nil
}

// ValidateBulk checks a raw bulk request body. Malformed JSON and schema
// failures both come back as *Error.
func (v *Validator) ValidateBulk(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return &Error{Violations: []Violation{{Message: fmt.Sprintf("invalid JSON: %v", err)}}}
	}

	err := v.bulk.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("failed to validate bulk payload: %w", err)
	}
	return &Error{Violations: leaves(ve)}
}

func leaves(ve *jsonschema.ValidationError) []Violation {
	var out []Violation
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{Path: e.InstanceLocation, Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
