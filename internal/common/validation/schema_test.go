package validation

import (
	stderrors "errors"
	"testing"

	apperrors "vc-assistant/internal/common/errors"
	"vc-assistant/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *registry.ActivityRegistry {
	return &registry.ActivityRegistry{
		Activities: []registry.Activity{
			{
				ID:       "analyze-deck",
				TaskType: "analyze-deck",
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"documentId"},
					"properties": map[string]interface{}{
						"documentId": map[string]interface{}{"type": "string", "minLength": 1},
					},
				},
			},
			{ID: "free", TaskType: "free"},
		},
	}
}

func TestValidate(t *testing.T) {
	v, err := NewSchemaValidator(testRegistry())
	require.NoError(t, err)

	tests := []struct {
		name      string
		taskType  string
		variables string
		wantErr   bool
	}{
		{"valid", "analyze-deck", `{"documentId":"doc-1"}`, false},
		{"missing required", "analyze-deck", `{}`, true},
		{"empty string", "analyze-deck", `{"documentId":""}`, true},
		{"wrong type", "analyze-deck", `{"documentId":5}`, true},
		{"empty variables", "analyze-deck", ``, true},
		{"no schema", "free", `{"anything":true}`, false},
		{"unknown task", "nope", `{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.taskType, tt.variables)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var stdErr *apperrors.StandardError
			require.True(t, stderrors.As(err, &stdErr))
			assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
		})
	}
}

func TestNewSchemaValidator_BadSchema(t *testing.T) {
	reg := &registry.ActivityRegistry{Activities: []registry.Activity{{
		TaskType:    "bad",
		InputSchema: map[string]interface{}{"type": 12},
	}}}
	_, err := NewSchemaValidator(reg)
	assert.Error(t, err)
}
