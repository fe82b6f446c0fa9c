package ports

import "encoding/json"

// EventHandler receives one realtime event. Lifecycle events carry a nil
// payload.
type EventHandler func(event string, payload json.RawMessage)

// RealtimeChannel is the persistent push side of the backend. Subscribe
// returns a cancel func that removes the handler.
type RealtimeChannel interface {
	Subscribe(event string, h EventHandler) (cancel func())
	Close() error
}
