package schema

import "testing"

func TestValidate(t *testing.T) {
	boolSchema := map[string]any{"type": "boolean"}
	rangeSchema := map[string]any{
		"type":    "integer",
		"minimum": 0,
		"maximum": 100,
	}

	t.Run("NilSchemaAcceptsAll", func(t *testing.T) {
		if !Validate(nil, "anything") {
			t.Error("nil schema should accept any input")
		}
		if !Validate(map[string]any{}, 42) {
			t.Error("empty schema should accept any input")
		}
	})

	t.Run("TypeMatch", func(t *testing.T) {
		if !Validate(boolSchema, true) {
			t.Error("expected bool to validate against boolean schema")
		}
		if Validate(boolSchema, "true") {
			t.Error("expected string to fail boolean schema")
		}
	})

	t.Run("Range", func(t *testing.T) {
		if !Validate(rangeSchema, 50) {
			t.Error("expected 50 to validate")
		}
		if Validate(rangeSchema, 101) {
			t.Error("expected 101 to fail maximum")
		}
		if Validate(rangeSchema, -1) {
			t.Error("expected -1 to fail minimum")
		}
	})

	t.Run("IgnoresAnnotationKeywords", func(t *testing.T) {
		s := map[string]any{
			"@type":    "OnOffProperty",
			"title":    "On/Off",
			"type":     "boolean",
			"readOnly": false,
		}
		if !Validate(s, false) {
			t.Error("annotation keywords should not affect validation")
		}
	})

	t.Run("ObjectSchema", func(t *testing.T) {
		s := map[string]any{
			"type":     "object",
			"required": []any{"level"},
			"properties": map[string]any{
				"level": map[string]any{
					"type":    "integer",
					"minimum": 0,
					"maximum": 100,
				},
			},
		}
		if !Validate(s, map[string]any{"level": 40}) {
			t.Error("expected valid object input to validate")
		}
		if Validate(s, map[string]any{}) {
			t.Error("expected missing required field to fail")
		}
		if Validate(s, map[string]any{"level": 200}) {
			t.Error("expected out-of-range field to fail")
		}
	})
}
