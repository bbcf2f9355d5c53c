package memory

import (
	"context"
	"sync"

	"futurfounder/internal/core/domain"
	"futurfounder/internal/core/ports"
)

// MemoryAssignmentRepository keeps assignment maps in process memory. The
// whole map per visitor is read and written as a unit, mirroring the single
// storage blob the repository contract describes.
type MemoryAssignmentRepository struct {
	visitors map[domain.VisitorID]domain.AssignmentMap
	mu       sync.RWMutex
}

func NewMemoryAssignmentRepository() ports.AssignmentRepository {
	return &MemoryAssignmentRepository{
		visitors: make(map[domain.VisitorID]domain.AssignmentMap),
	}
}

func (r *MemoryAssignmentRepository) Get(ctx context.Context, visitorID domain.VisitorID) (domain.AssignmentMap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, exists := r.visitors[visitorID]
	if !exists {
		return domain.AssignmentMap{}, nil
	}

	// Copy so callers can mutate their map before writing it back.
	out := make(domain.AssignmentMap, len(stored))
	for testID, assignment := range stored {
		out[testID] = assignment
	}
	return out, nil
}

func (r *MemoryAssignmentRepository) Put(ctx context.Context, visitorID domain.VisitorID, assignments domain.AssignmentMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make(domain.AssignmentMap, len(assignments))
	for testID, assignment := range assignments {
		stored[testID] = assignment
	}
	r.visitors[visitorID] = stored
	return nil
}
