package wire

// Status is one of the five response signals the binding layer emits.
// Transport adapters map these onto protocol status codes.
type Status uint8

const (
	// StatusContent is ok-with-body.
	StatusContent Status = iota + 1

	// StatusCreated is created-with-body.
	StatusCreated

	// StatusNoContent is success without a body.
	StatusNoContent

	// StatusBadRequest signals a validation failure; no mutation was
	// performed.
	StatusBadRequest

	// StatusNotFound signals an unknown thing, resource or path.
	StatusNotFound
)

// String returns the signal name.
func (s Status) String() string {
	switch s {
	case StatusContent:
		return "content"
	case StatusCreated:
		return "created"
	case StatusNoContent:
		return "no-content"
	case StatusBadRequest:
		return "bad-request"
	case StatusNotFound:
		return "not-found"
	}
	return "unknown"
}
