// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gsmcp-foundation/gsmcp/lib/schema"
	"github.com/gsmcp-foundation/gsmcp/lib/toolerror"
)

// printer renders schema validation messages. The jsonschema library
// localizes them through a message printer.
var printer = message.NewPrinter(language.English)

// compileInputSchema round-trips a schema through JSON and compiles it
// for instance validation.
func compileInputSchema(name string, inputSchema *schema.Schema) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(inputSchema)
	if err != nil {
		return nil, fmt.Errorf("marshaling input schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("parsing input schema: %w", err)
	}

	resource := name + ".schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resource, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compiling input schema: %w", err)
	}
	return compiled, nil
}

// validateArguments checks raw tool arguments against the compiled
// input schema. Missing arguments validate as an empty object so that
// a tool whose parameters are all optional can be called bare.
func (t *tool) validateArguments(arguments json.RawMessage) error {
	raw := arguments
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return toolerror.Validation("arguments are not valid JSON: %v", err)
	}

	if err := t.compiled.Validate(instance); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return toolerror.Validation("invalid arguments: %s", formatValidationError(validationErr))
		}
		return toolerror.Validation("invalid arguments: %v", err)
	}
	return nil
}

// formatValidationError flattens a validation error tree into a
// compact single-line summary of its leaf causes.
func formatValidationError(validationErr *jsonschema.ValidationError) string {
	var parts []string
	collectLeafCauses(validationErr, &parts)
	if len(parts) == 0 {
		return validationErr.Error()
	}
	return strings.Join(parts, "; ")
}

// collectLeafCauses recursively walks the error tree, rendering leaf
// errors as "/instance/path: message".
func collectLeafCauses(validationErr *jsonschema.ValidationError, parts *[]string) {
	if len(validationErr.Causes) == 0 {
		if validationErr.ErrorKind == nil {
			return
		}
		detail := validationErr.ErrorKind.LocalizedString(printer)
		if detail == "" {
			return
		}
		if len(validationErr.InstanceLocation) == 0 {
			*parts = append(*parts, detail)
		} else {
			*parts = append(*parts, "/"+strings.Join(validationErr.InstanceLocation, "/")+": "+detail)
		}
		return
	}
	for _, cause := range validationErr.Causes {
		collectLeafCauses(cause, parts)
	}
}
