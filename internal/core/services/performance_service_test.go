package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"futurfounder/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPerfService(fwd *captureForwarder) *PerformanceService {
	return NewPerformanceService(fwd, time.Minute, zap.NewNop().Sugar())
}

func TestEndTiming_WithoutStart(t *testing.T) {
	fwd := &captureForwarder{}
	svc := newPerfService(fwd)

	elapsed, ok := svc.EndTiming(context.Background(), "render")

	assert.False(t, ok)
	assert.Equal(t, time.Duration(0), elapsed)
	assert.Equal(t, 0, fwd.sampleCount(), "an unmatched end reports nothing")
}

func TestEndTiming_IsOneShot(t *testing.T) {
	fwd := &captureForwarder{}
	svc := newPerfService(fwd)

	svc.StartTiming("render")
	_, ok := svc.EndTiming(context.Background(), "render")
	require.True(t, ok)

	_, ok = svc.EndTiming(context.Background(), "render")
	assert.False(t, ok, "second end for the same name reports nothing")
	assert.Equal(t, 1, fwd.sampleCount())
}

func TestStartTiming_LastStartWins(t *testing.T) {
	fwd := &captureForwarder{}
	svc := newPerfService(fwd)

	base := time.Now()
	clock := base
	svc.now = func() time.Time { return clock }

	svc.StartTiming("render")
	clock = base.Add(10 * time.Second)
	svc.StartTiming("render")
	clock = base.Add(12 * time.Second)

	elapsed, ok := svc.EndTiming(context.Background(), "render")
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, elapsed, "duration measures from the second start")
	assert.Equal(t, 1, fwd.sampleCount())
}

func TestEndTiming_ForwardsCustomSample(t *testing.T) {
	fwd := &captureForwarder{}
	svc := newPerfService(fwd)

	svc.StartTiming("render")
	_, ok := svc.EndTiming(context.Background(), "render")
	require.True(t, ok)

	require.Equal(t, 1, fwd.sampleCount())
	sample := fwd.samples[0]
	assert.Equal(t, domain.CustomMetric("render"), sample.Metric)
	assert.True(t, sample.Metric.IsCustom())
	assert.Equal(t, domain.RatingGood, sample.Rating, "custom metrics carry no thresholds")
}

func TestMeasureFunc_ErrorReleasesTimerWithoutSample(t *testing.T) {
	fwd := &captureForwarder{}
	svc := newPerfService(fwd)

	wantErr := errors.New("boom")
	err := svc.MeasureFunc(context.Background(), "render", func() error { return wantErr })

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, fwd.sampleCount(), "failed spans are not reported")
	assert.False(t, svc.TimerRunning("render"), "the timer must be released")
}

func TestMeasureFunc_PanicReleasesTimer(t *testing.T) {
	fwd := &captureForwarder{}
	svc := newPerfService(fwd)

	func() {
		defer func() { recover() }()
		svc.MeasureFunc(context.Background(), "render", func() error { panic("boom") })
	}()

	assert.Equal(t, 0, fwd.sampleCount())
	assert.False(t, svc.TimerRunning("render"))
}

func TestMeasureFunc_Success(t *testing.T) {
	fwd := &captureForwarder{}
	svc := newPerfService(fwd)

	err := svc.MeasureFunc(context.Background(), "render", func() error { return nil })

	require.NoError(t, err)
	assert.Equal(t, 1, fwd.sampleCount())
}

func TestObserveVital_RatesAtThresholds(t *testing.T) {
	fwd := &captureForwarder{}
	svc := newPerfService(fwd)

	svc.ObserveVital(context.Background(), "v1", domain.MetricLCP, 2000)
	svc.ObserveVital(context.Background(), "v1", domain.MetricLCP, 3000)
	svc.ObserveVital(context.Background(), "v1", domain.MetricLCP, 5000)

	require.Equal(t, 3, fwd.sampleCount())
	assert.Equal(t, domain.RatingGood, fwd.samples[0].Rating)
	assert.Equal(t, domain.RatingNeedsImprovement, fwd.samples[1].Rating)
	assert.Equal(t, domain.RatingPoor, fwd.samples[2].Rating)
}

func TestObserveVital_DisabledGate(t *testing.T) {
	fwd := &captureForwarder{}
	svc := newPerfService(fwd)
	svc.SetEnabled(false)

	svc.ObserveVital(context.Background(), "v1", domain.MetricCLS, 0.5)

	assert.Equal(t, 0, fwd.sampleCount())
}

func TestAttachObservers_UnknownKindSkipped(t *testing.T) {
	fwd := &captureForwarder{}
	svc := newPerfService(fwd)

	// Must not panic, and the service stays usable.
	svc.AttachObservers("layout-shift-hardware")

	svc.ObserveVital(context.Background(), "v1", domain.MetricTTFB, 100)
	assert.Equal(t, 1, fwd.sampleCount())
}

func TestDisconnect_StopsMemoryObserver(t *testing.T) {
	fwd := &captureForwarder{}
	svc := NewPerformanceService(fwd, 5*time.Millisecond, zap.NewNop().Sugar())

	svc.AttachObservers(ObserverMemory)
	time.Sleep(20 * time.Millisecond)
	svc.Disconnect()

	// Let any in-flight tick drain before snapshotting the count.
	time.Sleep(10 * time.Millisecond)
	seen := fwd.sampleCount()
	assert.Greater(t, seen, 0, "memory observer should have sampled")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, seen, fwd.sampleCount(), "no samples after disconnect")
}
