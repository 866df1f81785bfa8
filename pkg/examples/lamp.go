package examples

import (
	"context"
	"time"

	"github.com/coapthing/coapthing-go/pkg/model"
)

// Lamp returns a dimmable lamp Thing: a boolean on/off property, a
// 0-100 brightness property, a fade action and an overheated event.
func Lamp() *model.Thing {
	t := model.NewThing(
		"urn:dev:ops:my-lamp-1234",
		"My Lamp",
		[]string{"OnOffSwitch", "Light"},
		"A web connected lamp",
	)

	t.AddProperty(model.NewProperty("on", true, map[string]any{
		"@type":       "OnOffProperty",
		"title":       "On/Off",
		"type":        "boolean",
		"description": "Whether the lamp is turned on",
	}))

	t.AddProperty(model.NewProperty("brightness", 50, map[string]any{
		"@type":       "BrightnessProperty",
		"title":       "Brightness",
		"type":        "integer",
		"minimum":     0,
		"maximum":     100,
		"unit":        "percent",
		"description": "The level of light from 0-100",
	}))

	t.AddAvailableAction("fade", map[string]any{
		"title":       "Fade",
		"description": "Fade the lamp to a given level",
		"input": map[string]any{
			"type":     "object",
			"required": []any{"brightness", "duration"},
			"properties": map[string]any{
				"brightness": map[string]any{
					"type":    "integer",
					"minimum": 0,
					"maximum": 100,
					"unit":    "percent",
				},
				"duration": map[string]any{
					"type":    "integer",
					"minimum": 1,
					"unit":    "milliseconds",
				},
			},
		},
	}, fade)

	t.AddAvailableEvent("overheated", map[string]any{
		"description": "The lamp has exceeded its safe operating temperature",
		"type":        "number",
		"unit":        "degree celsius",
	})

	return t
}

// fade builds the runner for one fade dispatch: wait the requested
// duration, then apply the brightness. Cancellation during the wait
// leaves the lamp untouched.
func fade(t *model.Thing, input any) model.ActionRunner {
	return func(ctx context.Context, a *model.Action) error {
		params, _ := a.Input().(map[string]any)
		duration := intArg(params, "duration")
		brightness := intArg(params, "brightness")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(duration) * time.Millisecond):
		}

		if err := t.SetProperty("brightness", brightness); err != nil {
			return err
		}
		t.AddEvent(model.NewEvent(t, "overheated", 102))
		return nil
	}
}

// intArg reads a numeric argument that may arrive as any JSON/CBOR
// number type.
func intArg(params map[string]any, name string) int64 {
	switch n := params[name].(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
