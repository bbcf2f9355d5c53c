package services

import (
	"context"
	"sync"
	"time"

	"futurfounder/internal/core/domain"
	"futurfounder/internal/core/ports"
	"futurfounder/pkg/tracing"

	"go.uber.org/zap"
)

// ForwarderService fans every event out to the configured sinks. Delivery is
// at-most-once and best-effort: no queue, no retry, no backoff. A sink that
// fails or panics is logged and skipped; the remaining sinks still receive
// the event and the caller never sees the failure.
type ForwarderService struct {
	mu                 sync.RWMutex
	sinks              []ports.Sink
	ready              bool
	conversionTracking bool
	debug              bool

	logger *zap.SugaredLogger
}

func NewForwarderService(logger *zap.SugaredLogger) *ForwarderService {
	return &ForwarderService{
		logger: logger,
	}
}

// Configure replaces the sink set and gates. Called by the facade during
// (re)initialization; the ready flag is managed separately so that events
// arriving mid-reconfiguration are dropped, not half-delivered.
func (f *ForwarderService) Configure(sinks []ports.Sink, conversionTracking, debug bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = sinks
	f.conversionTracking = conversionTracking
	f.debug = debug
}

func (f *ForwarderService) SetReady(ready bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = ready
}

// Sinks returns the current sink set.
func (f *ForwarderService) Sinks() []ports.Sink {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]ports.Sink, len(f.sinks))
	copy(out, f.sinks)
	return out
}

func (f *ForwarderService) snapshot() (sinks []ports.Sink, ready, conversionTracking, debug bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sinks, f.ready, f.conversionTracking, f.debug
}

// ForwardEvent delivers one event to every sink. Events arriving before
// initialization completes are dropped, not queued: initialization is
// expected to finish before page-driven traffic starts, and dropping avoids
// unbounded buffering.
func (f *ForwarderService) ForwardEvent(ctx context.Context, event domain.Event) {
	sinks, ready, _, debug := f.snapshot()

	if !ready {
		if debug {
			f.logger.Debugw("dropping event, analytics not initialized",
				"action", event.Action,
				"category", event.Category,
			)
		}
		return
	}

	if !event.Valid() {
		f.logger.Debugw("dropping event without action or category",
			"action", event.Action,
			"category", event.Category,
		)
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, sink := range sinks {
		f.deliver(ctx, sink, event, debug)
	}
}

// ForwardConversion delivers a conversion to every sink that accepts
// conversions. No-op unless the conversion-tracking gate is enabled.
func (f *ForwarderService) ForwardConversion(ctx context.Context, conv domain.Conversion) {
	sinks, ready, conversionTracking, debug := f.snapshot()

	if !ready {
		if debug {
			f.logger.Debugw("dropping conversion, analytics not initialized", "name", conv.Name)
		}
		return
	}

	if !conversionTracking {
		if debug {
			f.logger.Debugw("conversion tracking disabled, dropping conversion", "name", conv.Name)
		}
		return
	}

	if !conv.Valid() {
		f.logger.Debugw("dropping conversion without name")
		return
	}

	if conv.Currency == "" {
		conv.Currency = domain.DefaultCurrency
	}
	if conv.Timestamp.IsZero() {
		conv.Timestamp = time.Now()
	}

	for _, sink := range sinks {
		cs, ok := sink.(ports.ConversionSink)
		if !ok {
			continue
		}
		f.deliverConversion(ctx, cs, conv, debug)
	}
}

// ForwardSample routes a performance sample through ForwardEvent as a
// generic event. Gating happens at the sampler, not here.
func (f *ForwarderService) ForwardSample(ctx context.Context, sample domain.Sample) {
	value := sample.Value
	f.ForwardEvent(ctx, domain.Event{
		Action:    string(sample.Metric),
		Category:  "performance",
		Label:     string(sample.Rating),
		Value:     &value,
		VisitorID: sample.VisitorID,
		Timestamp: sample.Timestamp,
		Params: domain.Params{
			"metric": domain.StringParam(string(sample.Metric)),
			"rating": domain.StringParam(string(sample.Rating)),
			"value":  domain.NumberParam(sample.Value),
		},
	})
}

// deliver invokes one sink with full fault isolation. A panicking or failing
// sink (blocked endpoint, network error) must never abort the fan-out.
func (f *ForwarderService) deliver(ctx context.Context, sink ports.Sink, event domain.Event, debug bool) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Errorw("sink panicked, event skipped",
				"sink", sink.Name(),
				"action", event.Action,
				"panic", r,
			)
		}
	}()

	ctx, span := tracing.TraceForward(ctx, sink.Name(), event.Action)
	defer span.End()

	if err := sink.Send(ctx, event); err != nil {
		tracing.RecordError(ctx, err)
		f.logger.Warnw("sink delivery failed",
			"sink", sink.Name(),
			"action", event.Action,
			"error", err,
		)
		return
	}

	if debug {
		f.logger.Debugw("event forwarded",
			"sink", sink.Name(),
			"action", event.Action,
			"category", event.Category,
		)
	}
}

func (f *ForwarderService) deliverConversion(ctx context.Context, sink ports.ConversionSink, conv domain.Conversion, debug bool) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Errorw("sink panicked, conversion skipped",
				"sink", sink.Name(),
				"conversion", conv.Name,
				"panic", r,
			)
		}
	}()

	if err := sink.SendConversion(ctx, conv); err != nil {
		f.logger.Warnw("conversion delivery failed",
			"sink", sink.Name(),
			"conversion", conv.Name,
			"error", err,
		)
		return
	}

	if debug {
		f.logger.Debugw("conversion forwarded", "sink", sink.Name(), "conversion", conv.Name)
	}
}
