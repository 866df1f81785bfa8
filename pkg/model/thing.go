package model

import (
	"log/slog"
	"sync"

	"github.com/coapthing/coapthing-go/pkg/schema"
)

// DefaultContext is the JSON-LD context advertised in descriptions.
const DefaultContext = "https://webthings.io/schemas"

// availableAction is a catalog entry: the declared metadata (including
// an optional "input" schema) plus the constructor for its runner.
type availableAction struct {
	metadata  map[string]any
	generator ActionGenerator
}

// availableEvent is a catalog entry: metadata plus the subscribers
// registered for this specific event name.
type availableEvent struct {
	metadata    map[string]any
	subscribers []Subscriber
}

// Thing is the in-memory representation of one device: its identity,
// properties, action and event catalogs, live action instances, event
// log and subscribers. A Thing has no protocol awareness.
type Thing struct {
	mu sync.RWMutex

	id          string
	context     string
	title       string
	types       []string
	description string

	// hrefPrefix is assigned exactly once when the Thing is
	// registered with a server; it never changes afterwards.
	hrefPrefix string
	hrefSet    bool

	uiHref string

	properties    map[string]*Property
	propertyOrder []string

	availableActions map[string]*availableAction
	actionOrder      []string
	actions          map[string][]*Action

	availableEvents map[string]*availableEvent
	eventOrder      []string
	events          []*Event

	subscribers []Subscriber

	logger *slog.Logger
}

// NewThing creates a Thing with the given identity.
func NewThing(id, title string, types []string, description string) *Thing {
	return &Thing{
		id:               id,
		context:          DefaultContext,
		title:            title,
		types:            types,
		description:      description,
		properties:       make(map[string]*Property),
		availableActions: make(map[string]*availableAction),
		actions:          make(map[string][]*Action),
		availableEvents:  make(map[string]*availableEvent),
		logger:           slog.Default(),
	}
}

// SetLogger directs the Thing's notification logging. Nil is ignored.
func (t *Thing) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logger = logger
}

// ID returns the Thing's URI identifier.
func (t *Thing) ID() string {
	return t.id
}

// Context returns the JSON-LD context URI.
func (t *Thing) Context() string {
	return t.context
}

// SetContext overrides the JSON-LD context URI.
func (t *Thing) SetContext(context string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.context = context
}

// Title returns the human-readable title.
func (t *Thing) Title() string {
	return t.title
}

// Types returns the semantic type tags in declaration order.
func (t *Thing) Types() []string {
	return t.types
}

// Description returns the free-text description.
func (t *Thing) Description() string {
	return t.description
}

// HrefPrefix returns the registration-time href prefix, empty for the
// registry root.
func (t *Thing) HrefPrefix() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hrefPrefix
}

// SetHrefPrefix assigns the href prefix. The first assignment wins;
// later calls are ignored.
func (t *Thing) SetHrefPrefix(prefix string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hrefSet {
		return
	}
	t.hrefPrefix = prefix
	t.hrefSet = true
}

// Href returns the Thing's path: the href prefix, or "/" at the root.
func (t *Thing) Href() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.hrefPrefix == "" {
		return "/"
	}
	return t.hrefPrefix
}

// UIHref returns the alternate UI link, empty if unset.
func (t *Thing) UIHref() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.uiHref
}

// SetUIHref sets an alternate web UI link advertised in descriptions.
func (t *Thing) SetUIHref(href string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.uiHref = href
}

// AddProperty registers a property. Names are unique per Thing; a
// duplicate name replaces the entry but keeps its original position.
func (t *Thing) AddProperty(p *Property) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.properties[p.name]; !exists {
		t.propertyOrder = append(t.propertyOrder, p.name)
	}
	t.properties[p.name] = p
	p.mu.Lock()
	p.thing = t
	p.mu.Unlock()
}

// RemoveProperty removes a property by name.
func (t *Thing) RemoveProperty(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.properties[name]; !exists {
		return
	}
	delete(t.properties, name)
	for i, n := range t.propertyOrder {
		if n == name {
			t.propertyOrder = append(t.propertyOrder[:i], t.propertyOrder[i+1:]...)
			break
		}
	}
}

// Property returns a property by name, or nil.
func (t *Thing) Property(name string) *Property {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.properties[name]
}

// HasProperty reports whether a property is registered.
func (t *Thing) HasProperty(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, exists := t.properties[name]
	return exists
}

// PropertyNames returns property names in registration order.
func (t *Thing) PropertyNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, len(t.propertyOrder))
	copy(names, t.propertyOrder)
	return names
}

// Properties returns the full name to value mapping.
func (t *Thing) Properties() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	values := make(map[string]any, len(t.properties))
	for name, p := range t.properties {
		values[name] = p.Value()
	}
	return values
}

// GetProperty returns the current value of a property.
func (t *Thing) GetProperty(name string) (any, error) {
	p := t.Property(name)
	if p == nil {
		return nil, ErrPropertyNotFound
	}
	return p.Value(), nil
}

// SetProperty sets a property value. An unknown name is a silent no-op;
// a value rejected by the property's constraints returns an error and
// leaves the prior value unchanged. On success all Thing subscribers
// are notified.
func (t *Thing) SetProperty(name string, value any) error {
	p := t.Property(name)
	if p == nil {
		return nil
	}
	if err := p.SetValue(value); err != nil {
		return err
	}
	t.propertyNotify(name, value)
	return nil
}

// UpdateProperty stores a device-side value bypassing the read-only
// flag, for measured values. Subscribers are notified on success.
func (t *Thing) UpdateProperty(name string, value any) error {
	p := t.Property(name)
	if p == nil {
		return ErrPropertyNotFound
	}
	if err := p.setValueInternal(value); err != nil {
		return err
	}
	t.propertyNotify(name, value)
	return nil
}

// AddAvailableAction registers an action kind with its metadata and the
// generator that constructs its runner. Only registered names can
// produce instances.
func (t *Thing) AddAvailableAction(name string, metadata map[string]any, generator ActionGenerator) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, exists := t.availableActions[name]; !exists {
		t.actionOrder = append(t.actionOrder, name)
	}
	t.availableActions[name] = &availableAction{
		metadata:  metadata,
		generator: generator,
	}
	t.actions[name] = nil
}

// ActionNames returns registered action names in registration order.
func (t *Thing) ActionNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, len(t.actionOrder))
	copy(names, t.actionOrder)
	return names
}

// ActionMetadata returns the declared metadata of an action kind, or
// nil if the name is not registered.
func (t *Thing) ActionMetadata(name string) map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if entry, exists := t.availableActions[name]; exists {
		return entry.metadata
	}
	return nil
}

// PerformAction validates the input and creates a new action instance
// in the created state, notifying subscribers. It returns nil when the
// name is unknown or the input fails the declared schema. Execution is
// started separately by the caller.
func (t *Thing) PerformAction(name string, input any) *Action {
	t.mu.RLock()
	entry, exists := t.availableActions[name]
	t.mu.RUnlock()
	if !exists {
		return nil
	}

	if inputSchema, ok := entry.metadata["input"].(map[string]any); ok {
		if !schema.Validate(inputSchema, input) {
			return nil
		}
	}

	// Generators may call back into the Thing, so the lock is not held
	// while the runner is built.
	var run ActionRunner
	if entry.generator != nil {
		run = entry.generator(t, input)
	}

	action := newAction(t, name, input, run)
	t.mu.Lock()
	t.actions[name] = append(t.actions[name], action)
	t.mu.Unlock()

	t.actionNotify(action)
	return action
}

// Action returns a live action instance by name and id.
func (t *Thing) Action(name, id string) (*Action, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, a := range t.actions[name] {
		if a.id == id {
			return a, nil
		}
	}
	return nil, ErrActionNotFound
}

// RemoveAction cancels an in-flight action and removes it from the
// Thing. It returns ErrActionNotFound for an unknown instance.
func (t *Thing) RemoveAction(name, id string) error {
	t.mu.Lock()
	var target *Action
	instances := t.actions[name]
	for i, a := range instances {
		if a.id == id {
			target = a
			t.actions[name] = append(instances[:i], instances[i+1:]...)
			break
		}
	}
	t.mu.Unlock()

	if target == nil {
		return ErrActionNotFound
	}
	target.Cancel()
	return nil
}

// ActionDescriptions returns descriptions of live action instances. An
// empty name covers every registered action kind, in registration
// order; instances within a kind appear in creation order.
func (t *Thing) ActionDescriptions(name string) []map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var descriptions []map[string]any
	if name == "" {
		for _, n := range t.actionOrder {
			for _, a := range t.actions[n] {
				descriptions = append(descriptions, a.Description())
			}
		}
		return descriptions
	}
	for _, a := range t.actions[name] {
		descriptions = append(descriptions, a.Description())
	}
	return descriptions
}

// AddAvailableEvent registers an event kind. Only registered names can
// carry subscribers or appear in descriptions.
func (t *Thing) AddAvailableEvent(name string, metadata map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, exists := t.availableEvents[name]; !exists {
		t.eventOrder = append(t.eventOrder, name)
	}
	t.availableEvents[name] = &availableEvent{metadata: metadata}
}

// EventNames returns registered event names in registration order.
func (t *Thing) EventNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, len(t.eventOrder))
	copy(names, t.eventOrder)
	return names
}

// EventMetadata returns the declared metadata of an event kind, or nil.
func (t *Thing) EventMetadata(name string) map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if entry, exists := t.availableEvents[name]; exists {
		return entry.metadata
	}
	return nil
}

// AddEvent appends an event to the log unconditionally and notifies the
// subscribers registered for that event's name.
func (t *Thing) AddEvent(event *Event) {
	t.mu.Lock()
	t.events = append(t.events, event)
	logger := t.logger
	var subscribers []Subscriber
	if entry, exists := t.availableEvents[event.name]; exists {
		subscribers = make([]Subscriber, len(entry.subscribers))
		copy(subscribers, entry.subscribers)
	}
	t.mu.Unlock()

	notify(logger, subscribers, "event", event.Description())
}

// EventDescriptions returns the event log in append order, filtered to
// one event name when name is non-empty.
func (t *Thing) EventDescriptions(name string) []map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var descriptions []map[string]any
	for _, e := range t.events {
		if name == "" || e.name == name {
			descriptions = append(descriptions, e.Description())
		}
	}
	return descriptions
}

// AddSubscriber registers a Thing-wide subscriber for property and
// action status messages.
func (t *Thing) AddSubscriber(s Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers = append(t.subscribers, s)
}

// RemoveSubscriber removes a Thing-wide subscriber and drops it from
// every event subscriber set as well.
func (t *Thing) RemoveSubscriber(s Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, sub := range t.subscribers {
		if sub == s {
			t.subscribers = append(t.subscribers[:i], t.subscribers[i+1:]...)
			break
		}
	}
	for _, entry := range t.availableEvents {
		for i, sub := range entry.subscribers {
			if sub == s {
				entry.subscribers = append(entry.subscribers[:i], entry.subscribers[i+1:]...)
				break
			}
		}
	}
}

// AddEventSubscriber registers a subscriber for one event name. The
// name must be a registered event kind.
func (t *Thing) AddEventSubscriber(name string, s Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, exists := t.availableEvents[name]; exists {
		entry.subscribers = append(entry.subscribers, s)
	}
}

// RemoveEventSubscriber removes a subscriber from one event name.
func (t *Thing) RemoveEventSubscriber(name string, s Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.availableEvents[name]
	if !exists {
		return
	}
	for i, sub := range entry.subscribers {
		if sub == s {
			entry.subscribers = append(entry.subscribers[:i], entry.subscribers[i+1:]...)
			return
		}
	}
}

// propertyNotify fans a propertyStatus message out to all subscribers.
func (t *Thing) propertyNotify(name string, value any) {
	logger, subscribers := t.snapshotSubscribers()
	notify(logger, subscribers, "propertyStatus", map[string]any{name: value})
}

// actionNotify fans an actionStatus message out to all subscribers.
func (t *Thing) actionNotify(a *Action) {
	logger, subscribers := t.snapshotSubscribers()
	notify(logger, subscribers, "actionStatus", a.Description())
}

func (t *Thing) snapshotSubscribers() (*slog.Logger, []Subscriber) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	subscribers := make([]Subscriber, len(t.subscribers))
	copy(subscribers, t.subscribers)
	return t.logger, subscribers
}
