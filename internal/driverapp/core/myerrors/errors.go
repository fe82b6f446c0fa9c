package myerrors

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrLocationPermission = errors.New("location permission not granted")
	ErrChannelClosed      = errors.New("realtime channel closed")
)

// TransportError is a network/HTTP failure raised by the data channel.
// Body carries the raw response body when the backend sent one.
type TransportError struct {
	StatusCode int
	Body       []byte
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: status %d", e.StatusCode)
}

// Tag extracts a structured error tag from the body, if present. The
// backend reports business rejections as {"error": "..."} or {"code": "..."}.
func (e *TransportError) Tag() string {
	if len(e.Body) == 0 {
		return ""
	}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Code
}

// Message extracts the human-readable message from the body, if present.
func (e *TransportError) Message() string {
	if len(e.Body) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	return body.Message
}
