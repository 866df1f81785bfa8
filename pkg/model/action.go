package model

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrActionNotFound is returned for lookups of unknown action instances.
var ErrActionNotFound = errors.New("action not found")

// ActionStatus is the lifecycle state of an action instance.
type ActionStatus string

const (
	// ActionCreated is the state of a freshly dispatched action.
	ActionCreated ActionStatus = "created"

	// ActionPending is the state while the action's work is running.
	ActionPending ActionStatus = "pending"

	// ActionCompleted is the terminal state of a finished action.
	ActionCompleted ActionStatus = "completed"
)

// ActionRunner is the execute operation of an action kind. It runs on its
// own goroutine once the action is started and must honor ctx: after
// cancellation no further model mutation may be applied.
type ActionRunner func(ctx context.Context, a *Action) error

// ActionGenerator constructs the runner for one dispatch of an action
// kind. Generators are registered per action name on the Thing; the
// input has already passed schema validation when a generator is called.
type ActionGenerator func(thing *Thing, input any) ActionRunner

// Action is one requested instance of an action kind.
type Action struct {
	mu sync.Mutex

	id    string
	thing *Thing
	name  string
	input any

	status        ActionStatus
	timeRequested time.Time
	timeCompleted time.Time

	run    ActionRunner
	ctx    context.Context
	cancel context.CancelFunc
}

// newAction creates an action instance in the created state.
func newAction(thing *Thing, name string, input any, run ActionRunner) *Action {
	ctx, cancel := context.WithCancel(context.Background())
	return &Action{
		id:            uuid.NewString(),
		thing:         thing,
		name:          name,
		input:         input,
		status:        ActionCreated,
		timeRequested: time.Now().UTC(),
		run:           run,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// ID returns the instance identifier, stable for the action's lifetime.
func (a *Action) ID() string {
	return a.id
}

// Thing returns the owning Thing.
func (a *Action) Thing() *Thing {
	return a.thing
}

// Name returns the action name.
func (a *Action) Name() string {
	return a.name
}

// Input returns the input payload the action was dispatched with.
func (a *Action) Input() any {
	return a.input
}

// Status returns the current lifecycle state.
func (a *Action) Status() ActionStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Href returns the instance path relative to the Thing root.
func (a *Action) Href() string {
	return "/actions/" + a.name + "/" + a.id
}

// Start transitions the action to pending and runs its work on a new
// goroutine. Completion and cancellation race through the action's
// mutex: whichever happens first wins.
func (a *Action) Start() {
	a.mu.Lock()
	if a.status != ActionCreated || a.ctx.Err() != nil {
		a.mu.Unlock()
		return
	}
	a.status = ActionPending
	a.mu.Unlock()

	a.thing.actionNotify(a)

	go func() {
		if a.run != nil {
			_ = a.run(a.ctx, a)
		}
		a.finish()
	}()
}

// finish records completion and notifies, unless the action was
// cancelled first.
func (a *Action) finish() {
	a.mu.Lock()
	if a.ctx.Err() != nil || a.status == ActionCompleted {
		a.mu.Unlock()
		return
	}
	a.status = ActionCompleted
	a.timeCompleted = time.Now().UTC()
	a.mu.Unlock()

	a.thing.actionNotify(a)
}

// Cancel interrupts the action's outstanding work. A completed action
// is unaffected. After Cancel returns, the action will not apply any
// further mutation or completion notification.
func (a *Action) Cancel() {
	a.mu.Lock()
	if a.status == ActionCompleted {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	a.cancel()
}

// Description returns the action instance description keyed by name.
func (a *Action) Description() map[string]any {
	a.mu.Lock()
	status := a.status
	requested := a.timeRequested
	completed := a.timeCompleted
	a.mu.Unlock()

	inner := map[string]any{
		"href":          a.thing.HrefPrefix() + a.Href(),
		"timeRequested": requested.Format(time.RFC3339),
		"status":        string(status),
	}
	if a.input != nil {
		inner["input"] = a.input
	}
	if !completed.IsZero() {
		inner["timeCompleted"] = completed.Format(time.RFC3339)
	}
	return map[string]any{a.name: inner}
}
