package domain

import "testing"

func TestRate(t *testing.T) {
	tests := []struct {
		metric Metric
		value  float64
		want   Rating
	}{
		{MetricLCP, 2000, RatingGood},
		{MetricLCP, 2500, RatingGood},
		{MetricLCP, 3000, RatingNeedsImprovement},
		{MetricLCP, 4000, RatingNeedsImprovement},
		{MetricLCP, 5000, RatingPoor},

		{MetricFID, 100, RatingGood},
		{MetricFID, 150, RatingNeedsImprovement},
		{MetricFID, 301, RatingPoor},

		{MetricCLS, 0.05, RatingGood},
		{MetricCLS, 0.1, RatingGood},
		{MetricCLS, 0.15, RatingNeedsImprovement},
		{MetricCLS, 0.3, RatingPoor},

		{MetricFCP, 1800, RatingGood},
		{MetricFCP, 2500, RatingNeedsImprovement},
		{MetricFCP, 3500, RatingPoor},

		{MetricTTFB, 800, RatingGood},
		{MetricTTFB, 1000, RatingNeedsImprovement},
		{MetricTTFB, 2000, RatingPoor},

		{MetricINP, 200, RatingGood},
		{MetricINP, 400, RatingNeedsImprovement},
		{MetricINP, 600, RatingPoor},

		// No thresholds: memory and custom timers always rate good.
		{MetricMemory, 1e9, RatingGood},
		{CustomMetric("render"), 1e9, RatingGood},
	}

	for _, tt := range tests {
		if got := Rate(tt.metric, tt.value); got != tt.want {
			t.Errorf("Rate(%s, %v) = %s, want %s", tt.metric, tt.value, got, tt.want)
		}
	}
}

func TestMetricKinds(t *testing.T) {
	if !MetricLCP.IsWebVital() {
		t.Error("lcp should be a web vital")
	}
	if MetricMemory.IsWebVital() {
		t.Error("memory is not a web vital")
	}

	custom := CustomMetric("page_render")
	if !custom.IsCustom() {
		t.Errorf("%s should be custom", custom)
	}
	if custom.IsWebVital() {
		t.Errorf("%s should not be a web vital", custom)
	}
	if MetricLCP.IsCustom() {
		t.Error("lcp is not custom")
	}
}

func TestNewSample_RatesOnConstruction(t *testing.T) {
	s := NewSample(MetricLCP, 5000)
	if s.Rating != RatingPoor {
		t.Errorf("expected poor rating, got %s", s.Rating)
	}
	if s.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}
