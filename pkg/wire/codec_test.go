package wire

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	payload := map[string]any{"on": true, "brightness": 50}

	t.Run("JSON", func(t *testing.T) {
		data, err := Encode(payload, FormatJSON)
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, Decode(data, FormatJSON, &out))
		assert.Equal(t, true, out["on"])
		assert.Equal(t, float64(50), out["brightness"])
	})

	t.Run("CBOR", func(t *testing.T) {
		data, err := Encode(payload, FormatCBOR)
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, Decode(data, FormatCBOR, &out))
		assert.Equal(t, true, out["on"])
	})

	t.Run("CBORDeterministic", func(t *testing.T) {
		first, err := Encode(payload, FormatCBOR)
		require.NoError(t, err)
		second, err := Encode(payload, FormatCBOR)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("LinkFormatRejected", func(t *testing.T) {
		_, err := Encode(payload, FormatLinkFormat)
		assert.Error(t, err)
		assert.Error(t, Decode([]byte("</x>"), FormatLinkFormat, &payload))
	})
}

func TestDecodeBody(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		r := &Request{Body: []byte(`{"on": false}`)}
		m, err := DecodeBody(r)
		require.NoError(t, err)
		assert.Equal(t, false, m["on"])
	})

	t.Run("CBORKeysNormalized", func(t *testing.T) {
		body, err := cbor.Marshal(map[string]any{
			"input": map[string]any{"brightness": 10},
		})
		require.NoError(t, err)

		r := &Request{Body: body, Format: FormatCBOR}
		m, err := DecodeBody(r)
		require.NoError(t, err)

		inner, ok := m["input"].(map[string]any)
		require.True(t, ok, "nested CBOR maps must be string-keyed, got %T", m["input"])
		assert.NotNil(t, inner["brightness"])
	})

	t.Run("EmptyBody", func(t *testing.T) {
		_, err := DecodeBody(&Request{})
		assert.Error(t, err)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := DecodeBody(&Request{Body: []byte("{")})
		assert.Error(t, err)
	})
}

func TestNegotiation(t *testing.T) {
	t.Run("BodyDefaultsToJSON", func(t *testing.T) {
		assert.Equal(t, FormatJSON, (&Request{}).BodyFormat())
		assert.Equal(t, FormatCBOR, (&Request{Format: FormatCBOR}).BodyFormat())
	})

	t.Run("ResponseFollowsAccept", func(t *testing.T) {
		assert.Equal(t, FormatJSON, (&Request{}).ResponseFormat())
		assert.Equal(t, FormatCBOR, (&Request{Accept: FormatCBOR}).ResponseFormat())
		assert.Equal(t, FormatJSON, (&Request{Accept: FormatLinkFormat}).ResponseFormat())
	})
}
