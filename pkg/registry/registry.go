// Package registry provides uniform addressing over one or many Things.
package registry

import (
	"errors"
	"strconv"

	"github.com/coapthing/coapthing-go/pkg/model"
)

// ErrThingNotFound reports an id or index that resolves to no Thing.
var ErrThingNotFound = errors.New("thing not found")

// Registry resolves transport-level thing identifiers to Things. The
// two implementations, SingleThing and MultipleThings, are the only
// externally visible topology variants.
type Registry interface {
	// Name is the name used for discovery advertisement.
	Name() string

	// Get resolves a Thing by index or id. SingleThing ignores the
	// argument.
	Get(id string) (*model.Thing, error)

	// Things returns all Things in registration order.
	Things() []*model.Thing

	// Single reports whether this registry addresses exactly one
	// Thing at the root.
	Single() bool
}

// SingleThing exposes exactly one Thing at the registry root.
type SingleThing struct {
	thing *model.Thing
}

// NewSingleThing wraps one Thing.
func NewSingleThing(t *model.Thing) *SingleThing {
	return &SingleThing{thing: t}
}

// Name returns the Thing's title.
func (s *SingleThing) Name() string {
	return s.thing.Title()
}

// Get returns the Thing regardless of the identifier.
func (s *SingleThing) Get(string) (*model.Thing, error) {
	return s.thing, nil
}

// Things returns the single Thing.
func (s *SingleThing) Things() []*model.Thing {
	return []*model.Thing{s.thing}
}

// Single reports true.
func (s *SingleThing) Single() bool {
	return true
}

// MultipleThings exposes an ordered sequence of Things, addressed by
// index or id, under a group name used for discovery advertisement.
type MultipleThings struct {
	things []*model.Thing
	name   string
}

// NewMultipleThings wraps an ordered sequence of Things.
func NewMultipleThings(things []*model.Thing, name string) *MultipleThings {
	return &MultipleThings{things: things, name: name}
}

// Name returns the group name.
func (m *MultipleThings) Name() string {
	return m.name
}

// Get resolves a Thing by numeric index, falling back to id match.
func (m *MultipleThings) Get(id string) (*model.Thing, error) {
	if idx, err := strconv.Atoi(id); err == nil {
		if idx < 0 || idx >= len(m.things) {
			return nil, ErrThingNotFound
		}
		return m.things[idx], nil
	}
	for _, t := range m.things {
		if t.ID() == id {
			return t, nil
		}
	}
	return nil, ErrThingNotFound
}

// Things returns all Things in registration order.
func (m *MultipleThings) Things() []*model.Thing {
	return m.things
}

// Single reports false.
func (m *MultipleThings) Single() bool {
	return false
}
