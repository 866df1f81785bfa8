package model

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// recordingSubscriber captures every message it receives.
type recordingSubscriber struct {
	mu       sync.Mutex
	messages [][]byte
}

func (s *recordingSubscriber) Send(message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, append([]byte(nil), message...))
	return nil
}

func (s *recordingSubscriber) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *recordingSubscriber) last() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return nil
	}
	var m map[string]any
	_ = json.Unmarshal(s.messages[len(s.messages)-1], &m)
	return m
}

// failingSubscriber always fails.
type failingSubscriber struct{}

func (failingSubscriber) Send([]byte) error { return errors.New("sink closed") }

// captureHandler collects every emitted log record.
type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func testThing() *Thing {
	t := NewThing("urn:dev:test-1", "Test Thing", []string{"OnOffSwitch"}, "a test thing")
	t.AddProperty(NewProperty("on", true, map[string]any{
		"@type": "OnOffProperty",
		"title": "On/Off",
		"type":  "boolean",
	}))
	t.AddProperty(NewProperty("brightness", 50, map[string]any{
		"@type":   "BrightnessProperty",
		"title":   "Brightness",
		"type":    "integer",
		"minimum": 0,
		"maximum": 100,
	}))
	return t
}

func TestPropertyValidation(t *testing.T) {
	thing := testThing()

	t.Run("ValidValue", func(t *testing.T) {
		if err := thing.SetProperty("on", false); err != nil {
			t.Fatalf("SetProperty failed: %v", err)
		}
		value, err := thing.GetProperty("on")
		if err != nil {
			t.Fatalf("GetProperty failed: %v", err)
		}
		if value != false {
			t.Errorf("expected false, got %v", value)
		}
	})

	t.Run("InvalidTypeKeepsPriorValue", func(t *testing.T) {
		if err := thing.SetProperty("brightness", "dark"); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("expected ErrInvalidValue, got %v", err)
		}
		value, _ := thing.GetProperty("brightness")
		if value != 50 {
			t.Errorf("expected prior value 50, got %v", value)
		}
	})

	t.Run("OutOfRangeKeepsPriorValue", func(t *testing.T) {
		if err := thing.SetProperty("brightness", 200); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("expected ErrInvalidValue, got %v", err)
		}
		value, _ := thing.GetProperty("brightness")
		if value != 50 {
			t.Errorf("expected prior value 50, got %v", value)
		}
	})

	t.Run("UnknownNameIsNoOp", func(t *testing.T) {
		if err := thing.SetProperty("nope", 1); err != nil {
			t.Errorf("unknown property should be a silent no-op, got %v", err)
		}
	})

	t.Run("UnknownNameGet", func(t *testing.T) {
		if _, err := thing.GetProperty("nope"); !errors.Is(err, ErrPropertyNotFound) {
			t.Errorf("expected ErrPropertyNotFound, got %v", err)
		}
	})
}

func TestReadOnlyProperty(t *testing.T) {
	thing := NewThing("urn:dev:test-2", "Sensor", nil, "")
	thing.AddProperty(NewProperty("level", 12.5, map[string]any{
		"type":     "number",
		"readOnly": true,
	}))

	if err := thing.SetProperty("level", 50.0); !errors.Is(err, ErrReadOnlyProperty) {
		t.Fatalf("expected ErrReadOnlyProperty, got %v", err)
	}

	// Device-side updates bypass the read-only flag.
	if err := thing.UpdateProperty("level", 60.0); err != nil {
		t.Fatalf("UpdateProperty failed: %v", err)
	}
	value, _ := thing.GetProperty("level")
	if value != 60.0 {
		t.Errorf("expected 60.0, got %v", value)
	}
}

func TestPropertyForwarder(t *testing.T) {
	thing := testThing()

	var forwarded any
	thing.Property("on").SetForwarder(func(value any) { forwarded = value })

	if err := thing.SetProperty("on", false); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	if forwarded != false {
		t.Errorf("expected forwarder to see false, got %v", forwarded)
	}
}

func TestPropertyNotification(t *testing.T) {
	thing := testThing()
	sub := &recordingSubscriber{}
	thing.AddSubscriber(failingSubscriber{})
	thing.AddSubscriber(sub)

	if err := thing.SetProperty("brightness", 75); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}

	// The failing sink must not have blocked delivery.
	if sub.count() != 1 {
		t.Fatalf("expected 1 message, got %d", sub.count())
	}
	message := sub.last()
	if message["messageType"] != "propertyStatus" {
		t.Errorf("expected propertyStatus, got %v", message["messageType"])
	}
	data := message["data"].(map[string]any)
	if data["brightness"] != float64(75) {
		t.Errorf("expected brightness 75, got %v", data["brightness"])
	}
}

func TestPerformAction(t *testing.T) {
	thing := testThing()
	thing.AddAvailableAction("fade", map[string]any{
		"input": map[string]any{
			"type":     "object",
			"required": []any{"brightness"},
			"properties": map[string]any{
				"brightness": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			},
		},
	}, nil)

	t.Run("UnknownName", func(t *testing.T) {
		if a := thing.PerformAction("explode", nil); a != nil {
			t.Error("expected nil for unregistered action")
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		if a := thing.PerformAction("fade", map[string]any{"brightness": 200}); a != nil {
			t.Error("expected nil for input failing schema")
		}
		if a := thing.PerformAction("fade", map[string]any{}); a != nil {
			t.Error("expected nil for missing required input")
		}
	})

	t.Run("ValidInput", func(t *testing.T) {
		a := thing.PerformAction("fade", map[string]any{"brightness": 30})
		if a == nil {
			t.Fatal("expected action instance")
		}
		if a.Status() != ActionCreated {
			t.Errorf("expected created, got %s", a.Status())
		}
		if a.ID() == "" {
			t.Error("expected non-empty instance id")
		}
		if got, err := thing.Action("fade", a.ID()); err != nil || got != a {
			t.Errorf("expected instance lookup to return the action, got %v, %v", got, err)
		}
	})

	t.Run("CreatedNotifiesSubscribers", func(t *testing.T) {
		sub := &recordingSubscriber{}
		thing.AddSubscriber(sub)
		thing.PerformAction("fade", map[string]any{"brightness": 10})
		if sub.count() != 1 {
			t.Fatalf("expected 1 message, got %d", sub.count())
		}
		if sub.last()["messageType"] != "actionStatus" {
			t.Errorf("expected actionStatus, got %v", sub.last()["messageType"])
		}
	})
}

func TestSubscriberFailureLogging(t *testing.T) {
	thing := testThing()
	handler := &captureHandler{}
	thing.SetLogger(slog.New(handler))
	thing.AddSubscriber(failingSubscriber{})

	if err := thing.SetProperty("on", false); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}

	// The failed send is reported through the Thing's own logger.
	if handler.len() == 0 {
		t.Error("expected the send failure to reach the configured logger")
	}
}

func TestGeneratorReadsOwningThing(t *testing.T) {
	thing := testThing()

	// Generators parameterize runners from current state, so they may
	// call back into the Thing while the dispatch is in progress.
	var seen any
	thing.AddAvailableAction("calibrate", nil, func(owner *Thing, input any) ActionRunner {
		seen, _ = owner.GetProperty("brightness")
		return func(ctx context.Context, a *Action) error { return nil }
	})

	a := thing.PerformAction("calibrate", nil)
	if a == nil {
		t.Fatal("expected action instance")
	}
	if seen != 50 {
		t.Errorf("generator read %v, want 50", seen)
	}
}

func TestActionLifecycle(t *testing.T) {
	thing := testThing()
	done := make(chan struct{})
	thing.AddAvailableAction("pulse", nil, func(owner *Thing, input any) ActionRunner {
		return func(ctx context.Context, a *Action) error {
			defer close(done)
			return owner.SetProperty("on", false)
		}
	})

	a := thing.PerformAction("pulse", nil)
	if a == nil {
		t.Fatal("expected action instance")
	}
	a.Start()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("action did not run")
	}

	// Completion is recorded after the runner returns.
	deadline := time.Now().Add(time.Second)
	for a.Status() != ActionCompleted {
		if time.Now().After(deadline) {
			t.Fatalf("action stuck in %s", a.Status())
		}
		time.Sleep(time.Millisecond)
	}

	desc := a.Description()["pulse"].(map[string]any)
	if desc["status"] != "completed" {
		t.Errorf("expected completed status in description, got %v", desc["status"])
	}
	if desc["timeCompleted"] == nil {
		t.Error("expected timeCompleted in description")
	}
}

func TestActionCancelPreventsMutation(t *testing.T) {
	thing := testThing()
	thing.AddAvailableAction("fade", nil, func(owner *Thing, input any) ActionRunner {
		return func(ctx context.Context, a *Action) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(50 * time.Millisecond):
			}
			return owner.SetProperty("brightness", 0)
		}
	})

	a := thing.PerformAction("fade", nil)
	a.Start()

	if err := thing.RemoveAction("fade", a.ID()); err != nil {
		t.Fatalf("RemoveAction failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	value, _ := thing.GetProperty("brightness")
	if value != 50 {
		t.Errorf("cancelled action mutated brightness to %v", value)
	}
	if a.Status() == ActionCompleted {
		t.Error("cancelled action reported completed")
	}
}

func TestRemoveUnknownAction(t *testing.T) {
	thing := testThing()
	thing.AddAvailableAction("fade", nil, nil)

	if err := thing.RemoveAction("fade", "no-such-id"); !errors.Is(err, ErrActionNotFound) {
		t.Errorf("expected ErrActionNotFound, got %v", err)
	}
	if err := thing.RemoveAction("unknown", "x"); !errors.Is(err, ErrActionNotFound) {
		t.Errorf("expected ErrActionNotFound, got %v", err)
	}
}

func TestEvents(t *testing.T) {
	thing := testThing()
	thing.AddAvailableEvent("overheated", map[string]any{"type": "number"})
	thing.AddAvailableEvent("reset", nil)

	eventSub := &recordingSubscriber{}
	otherSub := &recordingSubscriber{}
	thingSub := &recordingSubscriber{}
	thing.AddEventSubscriber("overheated", eventSub)
	thing.AddEventSubscriber("reset", otherSub)
	thing.AddSubscriber(thingSub)

	thing.AddEvent(NewEvent(thing, "overheated", 104))

	if eventSub.count() != 1 {
		t.Fatalf("expected overheated subscriber to get 1 message, got %d", eventSub.count())
	}
	if otherSub.count() != 0 {
		t.Errorf("reset subscriber got %d messages", otherSub.count())
	}
	if thingSub.count() != 0 {
		t.Errorf("thing-wide subscriber got %d event messages", thingSub.count())
	}
	if eventSub.last()["messageType"] != "event" {
		t.Errorf("expected event message, got %v", eventSub.last()["messageType"])
	}

	t.Run("LogOrder", func(t *testing.T) {
		thing.AddEvent(NewEvent(thing, "reset", nil))
		thing.AddEvent(NewEvent(thing, "overheated", 110))

		all := thing.EventDescriptions("")
		if len(all) != 3 {
			t.Fatalf("expected 3 events, got %d", len(all))
		}
		filtered := thing.EventDescriptions("overheated")
		if len(filtered) != 2 {
			t.Fatalf("expected 2 overheated events, got %d", len(filtered))
		}
	})
}

func TestHrefPrefixWriteOnce(t *testing.T) {
	thing := testThing()
	thing.SetHrefPrefix("/0")
	thing.SetHrefPrefix("/9")

	if thing.HrefPrefix() != "/0" {
		t.Errorf("expected first assignment to win, got %s", thing.HrefPrefix())
	}
	if thing.Href() != "/0" {
		t.Errorf("expected href /0, got %s", thing.Href())
	}

	root := testThing()
	root.SetHrefPrefix("")
	if root.Href() != "/" {
		t.Errorf("expected root href /, got %s", root.Href())
	}
}

func TestRegistrationOrder(t *testing.T) {
	thing := NewThing("urn:dev:test-3", "Ordered", nil, "")
	thing.AddProperty(NewProperty("zeta", 1, map[string]any{"type": "integer"}))
	thing.AddProperty(NewProperty("alpha", 2, map[string]any{"type": "integer"}))
	thing.AddAvailableAction("z", nil, nil)
	thing.AddAvailableAction("a", nil, nil)

	props := thing.PropertyNames()
	if props[0] != "zeta" || props[1] != "alpha" {
		t.Errorf("property order not preserved: %v", props)
	}
	actions := thing.ActionNames()
	if actions[0] != "z" || actions[1] != "a" {
		t.Errorf("action order not preserved: %v", actions)
	}
}
