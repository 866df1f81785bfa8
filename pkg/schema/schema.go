// Package schema validates values against JSON Schema fragments.
//
// Property metadata and action input declarations are JSON Schema
// fragments; this package is the single place they are interpreted.
package schema

import (
	"github.com/xeipuuv/gojsonschema"
)

// Validate reports whether input satisfies the given schema fragment.
// A nil or empty schema accepts any input. Non-schema keywords in the
// fragment (e.g. "@type", "links", "title") are ignored by the engine.
func Validate(schema map[string]any, input any) bool {
	if len(schema) == 0 {
		return true
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(input),
	)
	if err != nil {
		// An unloadable schema rejects everything rather than
		// letting unvalidated input through.
		return false
	}
	return result.Valid()
}
