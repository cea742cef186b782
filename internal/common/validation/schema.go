// Package validation checks job variables against the activity registry's
// input schemas.
package validation

import (
	"fmt"
	"strings"

	apperrors "vc-assistant/internal/common/errors"
	"vc-assistant/pkg/registry"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidator holds compiled input schemas keyed by task type.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewSchemaValidator compiles every activity's input schema.
func NewSchemaValidator(reg *registry.ActivityRegistry) (*SchemaValidator, error) {
	v := &SchemaValidator{schemas: make(map[string]*gojsonschema.Schema)}
	for _, a := range reg.Activities {
		if len(a.InputSchema) == 0 {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile input schema for %s: %w", a.TaskType, err)
		}
		v.schemas[a.TaskType] = schema
	}
	return v, nil
}

// Validate checks a JSON document against taskType's input schema. Task
// types without a schema always pass.
func (v *SchemaValidator) Validate(taskType, variables string) error {
	schema, ok := v.schemas[taskType]
	if !ok {
		return nil
	}

	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(variables))
	if err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("variables are not valid JSON: %v", err))
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return apperrors.NewInvalidInputError(strings.Join(msgs, "; "))
}
