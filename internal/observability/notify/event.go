package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// APIFailure captures an AWX API failure that ended a page resolution.
type APIFailure struct {
	Status     int // 0 when AWX was unreachable
	Detail     string
	Severity   string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of consuming API failure notifications.
type Sink interface {
	SendAPIFailure(ctx context.Context, failure APIFailure) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, failure APIFailure) error

// SendAPIFailure implements the Sink interface.
func (f SinkFunc) SendAPIFailure(ctx context.Context, failure APIFailure) error {
	if f == nil {
		return nil
	}
	return f(ctx, failure)
}
