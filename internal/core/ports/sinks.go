package ports

import (
	"context"

	"futurfounder/internal/core/domain"
)

// Sink receives forwarded events. Implementations must be fast and
// best-effort: the forwarder does not retry, does not wait for delivery and
// treats every call as at-most-once. A returned error is logged and ignored.
type Sink interface {
	Name() string
	Send(ctx context.Context, event domain.Event) error
}

// ConversionSink is implemented by sinks that accept conversion payloads.
// Conversions are only delivered to sinks that opt in; everything else sees
// nothing (the heatmap sink, for example, has no conversion concept).
type ConversionSink interface {
	Sink
	SendConversion(ctx context.Context, conv domain.Conversion) error
}

// ClosableSink is implemented by sinks that hold resources needing teardown
// on reconfiguration.
type ClosableSink interface {
	Close() error
}
