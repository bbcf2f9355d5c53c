package domain

import (
	"strings"
	"time"
)

// Metric names follow the web-vitals vocabulary. Custom timers reported via
// the timing API are prefixed with "custom:".
type Metric string

const (
	MetricLCP    Metric = "lcp"  // largest contentful paint, ms
	MetricFID    Metric = "fid"  // first input delay, ms
	MetricCLS    Metric = "cls"  // cumulative layout shift, unitless score
	MetricFCP    Metric = "fcp"  // first contentful paint, ms
	MetricTTFB   Metric = "ttfb" // time to first byte, ms
	MetricINP    Metric = "inp"  // interaction to next paint, ms
	MetricMemory Metric = "memory"

	customMetricPrefix = "custom:"
)

func CustomMetric(name string) Metric {
	return Metric(customMetricPrefix + name)
}

func (m Metric) IsCustom() bool {
	return strings.HasPrefix(string(m), customMetricPrefix)
}

func (m Metric) IsWebVital() bool {
	switch m {
	case MetricLCP, MetricFID, MetricCLS, MetricFCP, MetricTTFB, MetricINP:
		return true
	}
	return false
}

type Rating string

const (
	RatingGood             Rating = "good"
	RatingNeedsImprovement Rating = "needs-improvement"
	RatingPoor             Rating = "poor"
)

// vitalThresholds holds the good/needs-improvement cutoffs per metric.
// Values above the second cutoff rate as poor.
var vitalThresholds = map[Metric][2]float64{
	MetricLCP:  {2500, 4000},
	MetricFID:  {100, 300},
	MetricCLS:  {0.1, 0.25},
	MetricFCP:  {1800, 3000},
	MetricTTFB: {800, 1800},
	MetricINP:  {200, 500},
}

// Rate classifies a metric value against the fixed thresholds. It is a pure
// function and is applied to every sample as it arrives; ratings are never
// cached. Metrics without thresholds (custom timers, memory) rate as good.
func Rate(metric Metric, value float64) Rating {
	t, ok := vitalThresholds[metric]
	if !ok {
		return RatingGood
	}
	if value <= t[0] {
		return RatingGood
	}
	if value <= t[1] {
		return RatingNeedsImprovement
	}
	return RatingPoor
}

// Sample is one rated performance reading.
type Sample struct {
	Metric    Metric
	Value     float64 // ms, or unitless for cls
	Rating    Rating
	VisitorID VisitorID
	Timestamp time.Time
}

func NewSample(metric Metric, value float64) Sample {
	return Sample{
		Metric:    metric,
		Value:     value,
		Rating:    Rate(metric, value),
		Timestamp: time.Now(),
	}
}
