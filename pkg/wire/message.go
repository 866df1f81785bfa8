package wire

// Method is the request method of the constrained transport.
type Method uint8

const (
	MethodGet Method = iota + 1
	MethodPost
	MethodPut
	MethodDelete
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodDelete:
		return "DELETE"
	}
	return "UNKNOWN"
}

// ContentFormat tags a payload encoding, numbered per the CoAP
// content-format registry.
type ContentFormat uint16

const (
	// FormatLinkFormat is application/link-format (discovery payloads).
	FormatLinkFormat ContentFormat = 40

	// FormatJSON is application/json, the default body encoding.
	FormatJSON ContentFormat = 50

	// FormatCBOR is application/cbor, selected by the request's
	// accept tag.
	FormatCBOR ContentFormat = 60
)

// Request is one inbound request as seen by the binding layer.
type Request struct {
	// Method is the request method.
	Method Method

	// Path is the full resource path, without a trailing separator.
	Path string

	// Body is the raw request payload, nil when absent.
	Body []byte

	// Format is the content format of Body.
	Format ContentFormat

	// Accept is the content format the client asked for; zero means
	// no preference (JSON is used).
	Accept ContentFormat

	// Scheme and Host describe how the client addressed the server,
	// used for base URI rendering in descriptions.
	Scheme string
	Host   string
}

// BodyFormat returns the request body's format, defaulting to JSON.
func (r *Request) BodyFormat() ContentFormat {
	if r.Format == 0 {
		return FormatJSON
	}
	return r.Format
}

// ResponseFormat returns the negotiated body format for the response.
func (r *Request) ResponseFormat() ContentFormat {
	if r.Accept == FormatCBOR {
		return FormatCBOR
	}
	return FormatJSON
}

// Response is the binding layer's answer to one Request.
type Response struct {
	// Status is one of the five response signals.
	Status Status

	// Format is the content format of Body; meaningless when Body
	// is empty.
	Format ContentFormat

	// Body is the serialized payload, nil for body-less signals.
	Body []byte
}
