package services

import (
	"context"
	"runtime"
	"sync"
	"time"

	"futurfounder/internal/core/domain"
	"futurfounder/internal/core/ports"

	"go.uber.org/zap"
)

// PerformanceService produces rated performance samples. Web-vitals readings
// arrive from the page via ObserveVital; custom spans are measured with the
// explicit start/stop timer API. A periodic in-process memory observer can be
// attached alongside.
type PerformanceService struct {
	mu      sync.Mutex
	timers  map[string]time.Time
	enabled bool

	memInterval time.Duration
	stopMemory  chan struct{}
	memoryOn    bool

	forwarder ports.Forwarder
	logger    *zap.SugaredLogger

	now func() time.Time
}

const ObserverMemory = "memory"

func NewPerformanceService(forwarder ports.Forwarder, memInterval time.Duration, logger *zap.SugaredLogger) *PerformanceService {
	return &PerformanceService{
		timers:      make(map[string]time.Time),
		enabled:     true,
		memInterval: memInterval,
		forwarder:   forwarder,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEnabled flips the performance-monitoring gate. Disabled means no sample
// ever reaches the forwarder; timers still run so re-enabling mid-span works.
func (p *PerformanceService) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// AttachObservers registers passive observation sources. An observer kind the
// deployment does not support logs a warning and never fires; the remaining
// observers attach normally.
func (p *PerformanceService) AttachObservers(kinds ...string) {
	for _, kind := range kinds {
		switch kind {
		case ObserverMemory:
			p.attachMemoryObserver()
		default:
			p.logger.Warnw("unsupported performance observer, skipping", "kind", kind)
		}
	}
}

func (p *PerformanceService) attachMemoryObserver() {
	p.mu.Lock()
	if p.memoryOn {
		p.mu.Unlock()
		return
	}
	p.memoryOn = true
	p.stopMemory = make(chan struct{})
	stop := p.stopMemory
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(p.memInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				var ms runtime.MemStats
				runtime.ReadMemStats(&ms)
				heapMB := float64(ms.HeapAlloc) / (1024 * 1024)
				p.observe(context.Background(), "", domain.MetricMemory, heapMB)
			case <-stop:
				return
			}
		}
	}()
}

// Disconnect detaches all observers. Timers already running are unaffected.
func (p *PerformanceService) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.memoryOn {
		close(p.stopMemory)
		p.memoryOn = false
	}
}

// ObserveVital classifies one web-vitals reading and forwards it.
func (p *PerformanceService) ObserveVital(ctx context.Context, visitorID domain.VisitorID, metric domain.Metric, value float64) {
	p.observe(ctx, visitorID, metric, value)
}

func (p *PerformanceService) observe(ctx context.Context, visitorID domain.VisitorID, metric domain.Metric, value float64) {
	p.mu.Lock()
	enabled := p.enabled
	p.mu.Unlock()
	if !enabled {
		return
	}

	sample := domain.NewSample(metric, value)
	sample.VisitorID = visitorID
	sample.Timestamp = p.now()
	p.forwarder.ForwardSample(ctx, sample)
}

// StartTiming opens a named timer. A timer already running under the same
// name is silently overwritten: last start wins, there is no nesting.
func (p *PerformanceService) StartTiming(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timers[name] = p.now()
}

// EndTiming closes a named timer and forwards one custom sample. Without a
// matching start it reports nothing and returns false. Timers are one-shot: a
// second end for the same name reports nothing.
func (p *PerformanceService) EndTiming(ctx context.Context, name string) (time.Duration, bool) {
	p.mu.Lock()
	start, ok := p.timers[name]
	if ok {
		delete(p.timers, name)
	}
	p.mu.Unlock()

	if !ok {
		return 0, false
	}

	elapsed := p.now().Sub(start)
	p.observe(ctx, "", domain.CustomMetric(name), float64(elapsed.Milliseconds()))
	return elapsed, true
}

// MeasureFunc times fn under the given name. When fn returns an error or
// panics, the timer is released without reporting a sample and the failure
// propagates to the caller.
func (p *PerformanceService) MeasureFunc(ctx context.Context, name string, fn func() error) error {
	p.StartTiming(name)

	completed := false
	defer func() {
		if !completed {
			p.clearTimer(name)
		}
	}()

	if err := fn(); err != nil {
		return err
	}

	completed = true
	p.EndTiming(ctx, name)
	return nil
}

// MeasureAsyncFunc is MeasureFunc for context-aware functions.
func (p *PerformanceService) MeasureAsyncFunc(ctx context.Context, name string, fn func(context.Context) error) error {
	return p.MeasureFunc(ctx, name, func() error { return fn(ctx) })
}

func (p *PerformanceService) clearTimer(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.timers, name)
}

// TimerRunning reports whether a timer with this name is currently open.
func (p *PerformanceService) TimerRunning(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.timers[name]
	return ok
}
