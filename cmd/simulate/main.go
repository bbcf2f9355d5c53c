package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"futurfounder/internal/core/domain"
	"futurfounder/internal/core/ports"
	"futurfounder/internal/core/services"
	"futurfounder/internal/infrastructure/repositories/memory"
	"futurfounder/pkg/config"
	"futurfounder/pkg/logger"
	"futurfounder/pkg/utils"
)

// simulate embeds the analytics facade directly and drives synthetic visitor
// traffic through it. Useful for eyeballing the event stream without a
// browser: run with -debug to see every event in the log.
func main() {
	visitors := flag.Int("visitors", 25, "number of synthetic visitors")
	debug := flag.Bool("debug", true, "log every forwarded event")
	flag.Parse()

	log := logger.NewWithFormat("debug", "console").Sugar()
	defer log.Sync()

	cfg := config.DefaultConfig().Analytics
	cfg.Debug = *debug

	repo := memory.NewMemoryAssignmentRepository()

	builders := []services.SinkBuilder{
		func(ac config.AnalyticsConfig) (ports.Sink, error) {
			return newCountingSink(), nil
		},
	}

	analytics := services.NewAnalyticsService(cfg, repo, builders, log)
	analytics.Initialize()
	defer analytics.Close()

	ctx := context.Background()
	candidates := []domain.Variant{
		{ID: "control", Name: "Control"},
		{ID: "variant_b", Name: "Bold headline"},
	}

	variantCounts := map[domain.VariantID]int{}
	conversions := 0

	for i := 0; i < *visitors; i++ {
		visitorID := domain.VisitorID(utils.GenerateVisitorID())
		analytics.StartTiming("visitor_session")

		assignment, err := analytics.GetABTestVariant(ctx, visitorID, "hero_headline", candidates)
		if err != nil {
			log.Warnw("variant assignment failed", "error", err)
			continue
		}
		variantCounts[assignment.VariantID]++

		// Every visitor lands and reports vitals
		analytics.Performance().ObserveVital(ctx, visitorID, domain.MetricLCP, 1500+rand.Float64()*3000)
		analytics.Performance().ObserveVital(ctx, visitorID, domain.MetricCLS, rand.Float64()*0.3)

		analytics.TrackEvent(ctx, domain.Event{
			Action:    "section_view",
			Category:  "engagement",
			Label:     "hero",
			VisitorID: visitorID,
			Params:    domain.Params{"variant": domain.StringParam(string(assignment.VariantID))},
		})

		// Most visitors scroll at least halfway
		for _, pct := range []int{25, 50, 75, 100} {
			if rand.Float64() < 0.7 {
				analytics.TrackScrollDepth(ctx, visitorID, pct)
			}
		}

		// Some click the hero CTA and convert
		if rand.Float64() < 0.3 {
			analytics.TrackCTAClick(ctx, visitorID, "join_waitlist", "hero", nil)
			err := analytics.Performance().MeasureFunc(ctx, "waitlist_submit", func() error {
				analytics.TrackFormSubmission(ctx, visitorID, "waitlist", true, nil)
				return nil
			})
			if err != nil {
				log.Warnw("form submission failed", "error", err)
			}
			if err := analytics.TrackABTestConversion(ctx, visitorID, "hero_headline", "waitlist_signup"); err == nil {
				conversions++
			}
		}

		time.Sleep(10 * time.Millisecond)
		analytics.EndTiming(ctx, "visitor_session")
	}

	fmt.Printf("\nsimulated %d visitors, %d conversions\n", *visitors, conversions)
	for variant, count := range variantCounts {
		fmt.Printf("  %-12s %d\n", variant, count)
	}
}

// countingSink swallows events; the simulation only cares about the facade's
// behaviour, not delivery.
type countingSink struct {
	events      int
	conversions int
}

func newCountingSink() *countingSink { return &countingSink{} }

func (s *countingSink) Name() string { return "counting" }

func (s *countingSink) Send(ctx context.Context, event domain.Event) error {
	s.events++
	return nil
}

func (s *countingSink) SendConversion(ctx context.Context, conv domain.Conversion) error {
	s.conversions++
	return nil
}
