package model

import (
	"encoding/json"
	"fmt"
)

// APIError is a failed AWX API call. Payload is the raw response body.
type APIError struct {
	Op      string
	Status  int
	Payload json.RawMessage
}

func (e *APIError) Error() string {
	if len(e.Payload) == 0 {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, string(e.Payload))
}

// DetailPayload builds an AWX-style {"detail": msg} error body.
func DetailPayload(msg string) json.RawMessage {
	b, err := json.Marshal(map[string]string{"detail": msg})
	if err != nil {
		return json.RawMessage(`{"detail":"unknown error"}`)
	}
	return b
}
