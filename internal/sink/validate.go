// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package sink

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// A Validator checks decoded values against a JSON Schema.
type Validator struct {
	schema *jsonschema.Schema
}

// LoadSchema compiles the JSON Schema in the file at path.
func LoadSchema(path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return CompileSchema(path, data)
}

// CompileSchema compiles a JSON Schema from data. The name identifies the
// schema in error messages.
func CompileSchema(name string, data []byte) (*Validator, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate reports an error if v does not satisfy the schema.
func (v *Validator) Validate(value any) error {
	return v.schema.Validate(plain(value, schemaNumber))
}

// schemaNumber converts n to the number type the schema validator compares
// exactly, so large integers keep their precision.
func schemaNumber(n json.Number) any { return stdjson.Number(n) }
