package services

import (
	"context"
	"sync"
	"time"

	"futurfounder/internal/core/domain"
	"futurfounder/internal/core/ports"
	"futurfounder/pkg/config"

	"go.uber.org/zap"
)

// LifecycleState tracks facade initialization.
type LifecycleState int32

const (
	StateUninitialized LifecycleState = iota
	StateInitializing
	StateReady
)

// SinkBuilder constructs one sink from the analytics configuration. A
// builder may return (nil, nil) to signal that its sink is not configured
// (absent or placeholder identifier); that is not an error.
type SinkBuilder func(cfg config.AnalyticsConfig) (ports.Sink, error)

// AnalyticsService is the facade the rest of the system talks to. It owns
// the configuration, drives one-time initialization of the sinks and gates
// every feature before delegating. It is an explicit handle passed by
// reference, not a package-level global.
type AnalyticsService struct {
	mu       sync.Mutex
	state    LifecycleState
	cfg      config.AnalyticsConfig
	builders []SinkBuilder
	sinks    []ports.Sink

	forwarder   *ForwarderService
	experiments *ExperimentService
	performance *PerformanceService

	logger *zap.SugaredLogger
}

func NewAnalyticsService(
	cfg config.AnalyticsConfig,
	repo ports.AssignmentRepository,
	builders []SinkBuilder,
	logger *zap.SugaredLogger,
) *AnalyticsService {
	forwarder := NewForwarderService(logger)
	return &AnalyticsService{
		cfg:         cfg,
		builders:    builders,
		forwarder:   forwarder,
		experiments: NewExperimentService(repo, forwarder, logger),
		performance: NewPerformanceService(forwarder, cfg.MemorySampleInterval, logger),
		logger:      logger,
	}
}

// Initialize builds the configured sinks and marks the facade ready.
// Idempotent: a second call while ready is a no-op. A sink that fails to
// build is logged and skipped; partial initialization is expected (a blocked
// or misconfigured sink must never take the others down) and the facade
// still becomes ready.
func (a *AnalyticsService) Initialize() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateReady {
		return
	}
	a.initializeLocked()
}

func (a *AnalyticsService) initializeLocked() {
	a.state = StateInitializing

	sinks := make([]ports.Sink, 0, len(a.builders))
	for _, build := range a.builders {
		sink, err := build(a.cfg)
		if err != nil {
			a.logger.Warnw("sink initialization failed, continuing without it", "error", err)
			continue
		}
		if sink == nil {
			continue
		}
		sinks = append(sinks, sink)
		a.logger.Infow("sink initialized", "sink", sink.Name())
	}
	a.sinks = sinks

	a.forwarder.Configure(sinks, a.cfg.ConversionTrackingEnabled, a.cfg.Debug)
	a.experiments.SetEnabled(a.cfg.ABTestingEnabled)
	a.performance.SetEnabled(a.cfg.PerformanceMonitoringEnabled)
	if a.cfg.PerformanceMonitoringEnabled {
		a.performance.AttachObservers(ObserverMemory)
	}

	a.state = StateReady
	a.forwarder.SetReady(true)

	a.logger.Infow("analytics initialized",
		"sinks", len(sinks),
		"conversion_tracking", a.cfg.ConversionTrackingEnabled,
		"performance_monitoring", a.cfg.PerformanceMonitoringEnabled,
		"ab_testing", a.cfg.ABTestingEnabled,
		"debug", a.cfg.Debug,
	)
}

// Reconfigure replaces the configuration and re-runs initialization.
// Previously registered sinks and observers are torn down first, so a config
// swap never leaves duplicate registrations behind.
func (a *AnalyticsService) Reconfigure(cfg config.AnalyticsConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.teardownLocked()
	a.cfg = cfg
	a.initializeLocked()
}

// Close tears the facade down. Events arriving afterwards are dropped.
func (a *AnalyticsService) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.teardownLocked()
}

func (a *AnalyticsService) teardownLocked() {
	a.forwarder.SetReady(false)
	a.performance.Disconnect()

	for _, sink := range a.sinks {
		closable, ok := sink.(ports.ClosableSink)
		if !ok {
			continue
		}
		if err := closable.Close(); err != nil {
			a.logger.Warnw("sink close failed", "sink", sink.Name(), "error", err)
		}
	}
	a.sinks = nil
	a.state = StateUninitialized
}

// State returns the current lifecycle state.
func (a *AnalyticsService) State() LifecycleState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Config returns the active analytics configuration.
func (a *AnalyticsService) Config() config.AnalyticsConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Forwarder exposes the event choke point.
func (a *AnalyticsService) Forwarder() ports.Forwarder { return a.forwarder }

// Experiments exposes variant assignment and conversion attribution.
func (a *AnalyticsService) Experiments() ports.ExperimentService { return a.experiments }

// Performance exposes the sampler and timing API.
func (a *AnalyticsService) Performance() ports.PerformanceService { return a.performance }

// TrackEvent forwards one discrete event.
func (a *AnalyticsService) TrackEvent(ctx context.Context, event domain.Event) {
	a.forwarder.ForwardEvent(ctx, event)
}

// TrackConversion forwards one conversion, subject to the gate.
func (a *AnalyticsService) TrackConversion(ctx context.Context, conv domain.Conversion) {
	a.forwarder.ForwardConversion(ctx, conv)
}

// TrackCTAClick records a call-to-action click as an engagement event plus a
// conversion.
func (a *AnalyticsService) TrackCTAClick(ctx context.Context, visitorID domain.VisitorID, name, location string, extra domain.Params) {
	params := domain.Params{
		"cta_location": domain.StringParam(location),
	}
	for k, v := range extra {
		params[k] = v
	}

	a.forwarder.ForwardEvent(ctx, domain.Event{
		Action:    "cta_click",
		Category:  "engagement",
		Label:     name,
		VisitorID: visitorID,
		Params:    params,
	})

	a.forwarder.ForwardConversion(ctx, domain.Conversion{
		Name:      "cta_click",
		VisitorID: visitorID,
		Params:    params,
	})
}

// TrackFormSubmission records a form submission; a successful one also
// counts as a conversion.
func (a *AnalyticsService) TrackFormSubmission(ctx context.Context, visitorID domain.VisitorID, formName string, success bool, extra domain.Params) {
	params := domain.Params{
		"form_name": domain.StringParam(formName),
		"success":   domain.BoolParam(success),
	}
	for k, v := range extra {
		params[k] = v
	}

	a.forwarder.ForwardEvent(ctx, domain.Event{
		Action:    "form_submission",
		Category:  "engagement",
		Label:     formName,
		VisitorID: visitorID,
		Params:    params,
	})

	if success {
		a.forwarder.ForwardConversion(ctx, domain.Conversion{
			Name:      "form_submission",
			VisitorID: visitorID,
			Params:    params,
		})
	}
}

// TrackScrollDepth records how far down the page a visitor has scrolled.
func (a *AnalyticsService) TrackScrollDepth(ctx context.Context, visitorID domain.VisitorID, percent int) {
	value := float64(percent)
	a.forwarder.ForwardEvent(ctx, domain.Event{
		Action:    "scroll_depth",
		Category:  "engagement",
		Value:     &value,
		VisitorID: visitorID,
		Params: domain.Params{
			"percent": domain.NumberParam(value),
		},
	})
}

// GetABTestVariant returns the stable variant assignment for a visitor.
func (a *AnalyticsService) GetABTestVariant(ctx context.Context, visitorID domain.VisitorID, testID domain.TestID, candidates []domain.Variant) (domain.Assignment, error) {
	return a.experiments.GetVariant(ctx, visitorID, testID, candidates)
}

// TrackABTestConversion attributes a conversion to an experiment assignment.
func (a *AnalyticsService) TrackABTestConversion(ctx context.Context, visitorID domain.VisitorID, testID domain.TestID, conversionType string) error {
	return a.experiments.TrackConversion(ctx, visitorID, testID, conversionType)
}

// StartTiming opens a named custom timer.
func (a *AnalyticsService) StartTiming(name string) {
	a.performance.StartTiming(name)
}

// EndTiming closes a named custom timer and reports its duration.
func (a *AnalyticsService) EndTiming(ctx context.Context, name string) (time.Duration, bool) {
	return a.performance.EndTiming(ctx, name)
}
