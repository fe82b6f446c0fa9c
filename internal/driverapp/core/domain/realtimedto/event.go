package realtimedto

import "encoding/json"

// Realtime event names
const (
	EventJobAssigned      = "JOB_ASSIGNED"
	EventJobStatusUpdated = "JOB_STATUS_UPDATED"

	// Legacy payload convention for the same events
	EventBookingAssigned      = "BOOKING_ASSIGNED"
	EventBookingStatusUpdated = "BOOKING_STATUS_UPDATED"

	// Transport lifecycle
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Canonical maps legacy booking event names onto the job event names.
func Canonical(name string) string {
	switch name {
	case EventBookingAssigned:
		return EventJobAssigned
	case EventBookingStatusUpdated:
		return EventJobStatusUpdated
	}
	return name
}

type AuthMessage struct {
	Token string `json:"token"`
}
