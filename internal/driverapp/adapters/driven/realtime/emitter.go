// Package realtime holds the handler registry shared by the realtime
// channel adapters.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/ports"
)

type Emitter struct {
	mu       sync.RWMutex
	next     int
	handlers map[string]map[int]ports.EventHandler
}

func NewEmitter() *Emitter {
	return &Emitter{
		handlers: make(map[string]map[int]ports.EventHandler),
	}
}

// Subscribe registers h for event and returns its removal func. Removal is
// idempotent.
func (e *Emitter) Subscribe(event string, h ports.EventHandler) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers[event] == nil {
		e.handlers[event] = make(map[int]ports.EventHandler)
	}
	id := e.next
	e.next++
	e.handlers[event][id] = h

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.handlers[event], id)
	}
}

// Emit calls every handler registered for event. Handlers run on the
// caller's goroutine, outside the registry lock.
func (e *Emitter) Emit(event string, payload json.RawMessage) {
	e.mu.RLock()
	snapshot := make([]ports.EventHandler, 0, len(e.handlers[event]))
	for _, h := range e.handlers[event] {
		snapshot = append(snapshot, h)
	}
	e.mu.RUnlock()

	for _, h := range snapshot {
		h(event, payload)
	}
}
