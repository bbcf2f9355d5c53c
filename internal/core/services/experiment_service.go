package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"futurfounder/internal/core/domain"
	"futurfounder/internal/core/ports"

	"go.uber.org/zap"
)

// ExperimentService hands out stable per-visitor variant assignments and
// attributes conversions to them. The whole assignment map for a visitor is
// read and written as one blob; racing writers overwrite each other
// last-write-wins, which is accepted for this domain.
type ExperimentService struct {
	repo      ports.AssignmentRepository
	forwarder ports.Forwarder
	logger    *zap.SugaredLogger

	mu      sync.Mutex
	enabled bool
	pick    func(n int) int
}

func NewExperimentService(repo ports.AssignmentRepository, forwarder ports.Forwarder, logger *zap.SugaredLogger) *ExperimentService {
	return &ExperimentService{
		repo:      repo,
		forwarder: forwarder,
		logger:    logger,
		enabled:   true,
		pick:      rand.Intn,
	}
}

func (s *ExperimentService) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

func (s *ExperimentService) isEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// GetVariant returns the assignment for (visitor, test). An existing
// assignment is returned unconditionally, even when the candidate list no
// longer contains its variant: stability over correctness. A new assignment
// is a uniform random pick, persisted before the assignment event is
// forwarded. With A/B testing disabled the first candidate is returned
// without persistence or events, so the page still renders one variant.
func (s *ExperimentService) GetVariant(ctx context.Context, visitorID domain.VisitorID, testID domain.TestID, candidates []domain.Variant) (domain.Assignment, error) {
	if len(candidates) == 0 {
		return domain.Assignment{}, domain.ErrNoVariants
	}

	if !s.isEnabled() {
		return domain.Assignment{
			TestID:      testID,
			VariantID:   candidates[0].ID,
			VariantName: candidates[0].Name,
		}, nil
	}

	assignments, err := s.repo.Get(ctx, visitorID)
	if err != nil {
		// Storage failure degrades to a fresh map; the visitor may be
		// re-assigned on a later request once storage recovers.
		s.logger.Warnw("failed to read assignments",
			"visitor_id", visitorID,
			"error", err,
		)
		assignments = domain.AssignmentMap{}
	}
	if assignments == nil {
		assignments = domain.AssignmentMap{}
	}

	if existing, ok := assignments[testID]; ok {
		return existing, nil
	}

	chosen := candidates[s.pick(len(candidates))]
	assignment := domain.Assignment{
		TestID:      testID,
		VariantID:   chosen.ID,
		VariantName: chosen.Name,
		AssignedAt:  time.Now(),
	}

	// The write is issued before the assignment event is forwarded; it is
	// not confirmed first.
	assignments[testID] = assignment
	if err := s.repo.Put(ctx, visitorID, assignments); err != nil {
		s.logger.Warnw("failed to persist assignment",
			"visitor_id", visitorID,
			"test_id", testID,
			"error", err,
		)
	}

	s.forwarder.ForwardEvent(ctx, domain.Event{
		Action:    "ab_test_assignment",
		Category:  "experiments",
		Label:     string(testID),
		VisitorID: visitorID,
		Params: domain.Params{
			"test_id":      domain.StringParam(string(testID)),
			"variant_id":   domain.StringParam(string(chosen.ID)),
			"variant_name": domain.StringParam(chosen.Name),
		},
	})

	return assignment, nil
}

// TrackConversion attributes a conversion to the visitor's assignment. A
// conversion for a test the visitor was never assigned into is a silent
// no-op: nothing to attribute, nothing forwarded.
func (s *ExperimentService) TrackConversion(ctx context.Context, visitorID domain.VisitorID, testID domain.TestID, conversionType string) error {
	if !s.isEnabled() {
		return nil
	}

	assignments, err := s.repo.Get(ctx, visitorID)
	if err != nil {
		s.logger.Warnw("failed to read assignments for conversion",
			"visitor_id", visitorID,
			"test_id", testID,
			"error", err,
		)
		return nil
	}

	assignment, ok := assignments[testID]
	if !ok {
		return nil
	}

	s.forwarder.ForwardEvent(ctx, domain.Event{
		Action:    "ab_test_conversion",
		Category:  "experiments",
		Label:     string(testID),
		VisitorID: visitorID,
		Params: domain.Params{
			"test_id":         domain.StringParam(string(testID)),
			"variant_id":      domain.StringParam(string(assignment.VariantID)),
			"conversion_type": domain.StringParam(conversionType),
		},
	})

	return nil
}
