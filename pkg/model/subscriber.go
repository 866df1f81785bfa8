package model

import (
	"encoding/json"
	"log/slog"
)

// Subscriber is an opaque sink that accepts serialized status messages.
// Delivery is best-effort: a failing subscriber never blocks delivery to
// the rest and never surfaces to the operation that triggered the send.
type Subscriber interface {
	Send(message []byte) error
}

// notify serializes a status message and fans it out to the given
// subscribers. Failures are logged to the Thing's logger and swallowed.
func notify(logger *slog.Logger, subscribers []Subscriber, messageType string, data any) {
	if len(subscribers) == 0 {
		return
	}

	message, err := json.Marshal(map[string]any{
		"messageType": messageType,
		"data":        data,
	})
	if err != nil {
		logger.Warn("dropping unserializable notification", "messageType", messageType, "err", err)
		return
	}

	for _, s := range subscribers {
		if err := s.Send(message); err != nil {
			logger.Debug("subscriber send failed", "messageType", messageType, "err", err)
		}
	}
}
