package examples

import (
	"math/rand"
	"time"

	"github.com/coapthing/coapthing-go/pkg/model"
)

// HumiditySensor returns a sensor Thing with one read-only measured
// property.
func HumiditySensor() *model.Thing {
	t := model.NewThing(
		"urn:dev:ops:my-humidity-sensor-1234",
		"My Humidity Sensor",
		[]string{"MultiLevelSensor"},
		"A web connected humidity sensor",
	)

	t.AddProperty(model.NewProperty("level", 0.0, map[string]any{
		"@type":       "LevelProperty",
		"title":       "Humidity",
		"type":        "number",
		"minimum":     0,
		"maximum":     100,
		"unit":        "percent",
		"readOnly":    true,
		"description": "The current humidity in %",
	}))

	return t
}

// RunHumiditySensor feeds the sensor with simulated readings every
// interval until stop is closed. Writes go through UpdateProperty so
// the read-only flag does not block the device side.
func RunHumiditySensor(t *model.Thing, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			level := 50.0 + 10.0*rand.NormFloat64()
			if level < 0 {
				level = 0
			}
			if level > 100 {
				level = 100
			}
			_ = t.UpdateProperty("level", level)
		}
	}
}
