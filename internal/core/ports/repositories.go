package ports

import (
	"context"

	"futurfounder/internal/core/domain"
)

// AssignmentRepository persists the per-visitor experiment assignment map.
// The map is read and written as one unit; racing writers for the same
// visitor overwrite each other last-write-wins.
type AssignmentRepository interface {
	Get(ctx context.Context, visitorID domain.VisitorID) (domain.AssignmentMap, error)
	Put(ctx context.Context, visitorID domain.VisitorID, assignments domain.AssignmentMap) error
}
