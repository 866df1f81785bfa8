package wire

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder mode for response payloads, configured
// for deterministic output.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode, lenient for forward compatibility.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
		DefaultMapType:    nil,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Encode serializes v in the given content format. Link-format is not
// an encodable structure format and is rejected.
func Encode(v any, format ContentFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.Marshal(v)
	case FormatCBOR:
		return encMode.Marshal(v)
	default:
		return nil, fmt.Errorf("unencodable content format %d", format)
	}
}

// Decode deserializes data in the given content format into v.
func Decode(data []byte, format ContentFormat, v any) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatCBOR:
		return decMode.Unmarshal(data, v)
	default:
		return fmt.Errorf("undecodable content format %d", format)
	}
}

// DecodeBody decodes a request body into a generic string-keyed map.
// CBOR map keys are normalized to strings so handlers see one shape
// regardless of the request encoding.
func DecodeBody(r *Request) (map[string]any, error) {
	if len(r.Body) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	switch r.BodyFormat() {
	case FormatJSON:
		var m map[string]any
		if err := json.Unmarshal(r.Body, &m); err != nil {
			return nil, err
		}
		return m, nil
	case FormatCBOR:
		var raw map[any]any
		if err := decMode.Unmarshal(r.Body, &raw); err != nil {
			return nil, err
		}
		return normalizeMap(raw), nil
	default:
		return nil, fmt.Errorf("unsupported body format %d", r.BodyFormat())
	}
}

// normalizeMap converts CBOR's map[any]any shape into nested
// map[string]any, dropping non-string keys.
func normalizeMap(raw map[any]any) map[string]any {
	m := make(map[string]any, len(raw))
	for k, v := range raw {
		key, ok := k.(string)
		if !ok {
			continue
		}
		m[key] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch inner := v.(type) {
	case map[any]any:
		return normalizeMap(inner)
	case []any:
		out := make([]any, len(inner))
		for i, e := range inner {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
