package ports

import (
	"context"
	"time"

	"futurfounder/internal/core/domain"
)

// Forwarder is the single choke point between producers and sinks. It never
// propagates a sink failure to the caller.
type Forwarder interface {
	ForwardEvent(ctx context.Context, event domain.Event)
	ForwardConversion(ctx context.Context, conv domain.Conversion)
	ForwardSample(ctx context.Context, sample domain.Sample)
}

type ExperimentService interface {
	GetVariant(ctx context.Context, visitorID domain.VisitorID, testID domain.TestID, candidates []domain.Variant) (domain.Assignment, error)
	TrackConversion(ctx context.Context, visitorID domain.VisitorID, testID domain.TestID, conversionType string) error
}

type PerformanceService interface {
	StartTiming(name string)
	EndTiming(ctx context.Context, name string) (time.Duration, bool)
	MeasureFunc(ctx context.Context, name string, fn func() error) error
	ObserveVital(ctx context.Context, visitorID domain.VisitorID, metric domain.Metric, value float64)
	Disconnect()
}
