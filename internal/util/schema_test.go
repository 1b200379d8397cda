package util

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleSchema struct {
	A string  `json:"a" description:"Field A"`
	B *int    `json:"b" description:"Optional pointer field"`
	C int     `json:"c,omitempty" description:"Omit empty field"`
	P float64 `json:"p" minimum:"0" maximum:"100"`
	M string  `json:"m,omitempty" enum:"x,y"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	assert.ElementsMatch(t, []string{"a", "p"}, RequiredFields(schema))

	p := props["p"].(map[string]any)
	assert.Equal(t, "number", p["type"])
	assert.Equal(t, 0.0, p["minimum"])
	assert.Equal(t, 100.0, p["maximum"])
	assert.Equal(t, []string{"x", "y"}, props["m"].(map[string]any)["enum"])
}

func TestCreateSchema_NonStruct(t *testing.T) {
	assert.Equal(t, map[string]any{"type": "object", "properties": map[string]any{}}, CreateSchema(42))
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
			"p": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"s": map[string]any{"type": "string", "minLength": 1, "enum": []any{"a", "b"}},
		},
		"required": []any{"x"},
	}

	tests := []struct {
		name    string
		params  map[string]any
		field   string
		message string
	}{
		{"ok", map[string]any{"x": 5, "p": 50.5, "s": "a"}, "", ""},
		{"json number", map[string]any{"x": json.Number("5")}, "", ""},
		{"missing", map[string]any{}, "x", "required field is missing"},
		{"nil required", map[string]any{"x": nil}, "x", "required field is missing"},
		{"wrong type", map[string]any{"x": "not-int"}, "x", "expected type integer"},
		{"fractional integer", map[string]any{"x": 1.5}, "x", "expected type integer"},
		{"below minimum", map[string]any{"x": 1, "p": -0.1}, "p", "must be >= 0"},
		{"above maximum", map[string]any{"x": 1, "p": 100.1}, "p", "must be <= 100"},
		{"nan", map[string]any{"x": 1, "p": math.NaN()}, "p", "finite"},
		{"blank string", map[string]any{"x": 1, "s": "  "}, "s", "at least 1"},
		{"enum", map[string]any{"x": 1, "s": "c"}, "s", "must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.params, schema)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Contains(t, vErr.Message, tt.message)
		})
	}
}

func TestRequiredFields_StringSlice(t *testing.T) {
	schema := map[string]any{"required": []string{"a"}}
	assert.Error(t, ValidateParameters(map[string]any{}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"a": 1}, schema))
}
