package monitoring

import (
	"context"

	"futurfounder/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusSink mirrors the forwarded traffic into local Prometheus metrics
// so the beacon's own /metrics endpoint shows what the page is reporting.
// It registers into the default registry once; construct it a single time
// per process and reuse the instance across reconfigurations.
type PrometheusSink struct {
	eventsTotal      *prometheus.CounterVec
	conversionsTotal *prometheus.CounterVec
	conversionValue  prometheus.Counter

	vitalRatings  *prometheus.CounterVec
	customTimings prometheus.Histogram
}

func NewPrometheusSink() *PrometheusSink {
	return &PrometheusSink{
		eventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "futurfounder_events_total",
			Help: "Total number of analytics events forwarded, by category",
		}, []string{"category"}),

		conversionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "futurfounder_conversions_total",
			Help: "Total number of conversions forwarded, by name",
		}, []string{"name"}),

		conversionValue: promauto.NewCounter(prometheus.CounterOpts{
			Name: "futurfounder_conversion_value_total",
			Help: "Cumulative monetary value of forwarded conversions",
		}),

		vitalRatings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "futurfounder_web_vitals_total",
			Help: "Web vital observations by metric and rating",
		}, []string{"metric", "rating"}),

		customTimings: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "futurfounder_custom_timing_seconds",
			Help:    "Duration of custom timed operations",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
	}
}

func (p *PrometheusSink) Name() string { return "prometheus" }

func (p *PrometheusSink) Send(ctx context.Context, event domain.Event) error {
	p.eventsTotal.WithLabelValues(event.Category).Inc()

	if event.Category == "performance" {
		p.recordPerformance(event)
	}
	return nil
}

func (p *PrometheusSink) SendConversion(ctx context.Context, conv domain.Conversion) error {
	p.conversionsTotal.WithLabelValues(conv.Name).Inc()
	if conv.Value != nil {
		p.conversionValue.Add(*conv.Value)
	}
	return nil
}

func (p *PrometheusSink) recordPerformance(event domain.Event) {
	metricName, ok := paramString(event.Params, "metric")
	if !ok {
		return
	}

	metric := domain.Metric(metricName)
	if metric.IsWebVital() {
		rating, ok := paramString(event.Params, "rating")
		if !ok {
			return
		}
		p.vitalRatings.WithLabelValues(metricName, rating).Inc()
		return
	}

	if metric.IsCustom() && event.Value != nil {
		p.customTimings.Observe(*event.Value / 1000)
	}
}

func paramString(params domain.Params, key string) (string, bool) {
	p, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := p.Interface().(string)
	return s, ok
}
