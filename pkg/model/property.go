package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coapthing/coapthing-go/pkg/schema"
)

// Property errors.
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrReadOnlyProperty = errors.New("property is read-only")
	ErrInvalidValue     = errors.New("invalid property value")
)

// ValueForwarder is invoked synchronously after a successful write so an
// embedder can push the new value to the underlying hardware.
type ValueForwarder func(value any)

// Property is a named mutable value on a Thing. Its metadata is a JSON
// Schema fragment used both for validating writes and for description
// rendering.
type Property struct {
	mu sync.RWMutex

	thing *Thing
	name  string

	metadata map[string]any
	value    any

	forwarder ValueForwarder
}

// NewProperty creates a property with the given name, initial value and
// metadata. The metadata map is used as-is; callers must not mutate it
// after registration.
func NewProperty(name string, value any, metadata map[string]any) *Property {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Property{
		name:     name,
		metadata: metadata,
		value:    value,
	}
}

// Name returns the property name.
func (p *Property) Name() string {
	return p.name
}

// Thing returns the owning Thing, or nil if the property is unregistered.
func (p *Property) Thing() *Thing {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.thing
}

// Metadata returns the property's schema fragment.
func (p *Property) Metadata() map[string]any {
	return p.metadata
}

// Href returns the property's path relative to the Thing root.
func (p *Property) Href() string {
	return "/properties/" + p.name
}

// Value returns the current value.
func (p *Property) Value() any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// ReadOnly reports whether the metadata declares the property read-only.
func (p *Property) ReadOnly() bool {
	ro, ok := p.metadata["readOnly"].(bool)
	return ok && ro
}

// SetForwarder sets the callback invoked after each successful write.
func (p *Property) SetForwarder(fn ValueForwarder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forwarder = fn
}

// SetValue validates and stores a new value, then invokes the forwarder.
// Thing subscribers are notified by the owning Thing, not here.
func (p *Property) SetValue(value any) error {
	if p.ReadOnly() {
		return ErrReadOnlyProperty
	}
	if !schema.Validate(p.metadata, value) {
		return fmt.Errorf("%w: %s=%v", ErrInvalidValue, p.name, value)
	}

	p.mu.Lock()
	p.value = value
	forwarder := p.forwarder
	p.mu.Unlock()

	if forwarder != nil {
		forwarder(value)
	}
	return nil
}

// setValueInternal stores a value bypassing the read-only check, for
// device-side updates of measured values. Validation still applies.
func (p *Property) setValueInternal(value any) error {
	if !schema.Validate(p.metadata, value) {
		return fmt.Errorf("%w: %s=%v", ErrInvalidValue, p.name, value)
	}

	p.mu.Lock()
	p.value = value
	forwarder := p.forwarder
	p.mu.Unlock()

	if forwarder != nil {
		forwarder(value)
	}
	return nil
}

// Description returns the property description: the metadata plus a
// links entry pointing at the property resource.
func (p *Property) Description(hrefPrefix string) map[string]any {
	desc := make(map[string]any, len(p.metadata)+1)
	for k, v := range p.metadata {
		desc[k] = v
	}
	desc["links"] = []map[string]any{
		{
			"rel":  "property",
			"href": hrefPrefix + p.Href(),
		},
	}
	return desc
}
