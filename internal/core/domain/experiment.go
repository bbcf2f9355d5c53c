package domain

import "time"

// Assignment binds a test to the variant chosen for one visitor. Once
// persisted it is stable for the lifetime of the storage scope, even when the
// candidate list later changes shape.
type Assignment struct {
	TestID      TestID    `json:"testId"`
	VariantID   VariantID `json:"variantId"`
	VariantName string    `json:"variantName"`
	AssignedAt  time.Time `json:"assignedAt,omitempty"`
}

// AssignmentMap is the full per-visitor experiment surface, read and written
// as a single JSON blob. Concurrent writers race last-write-wins; accepted.
type AssignmentMap map[TestID]Assignment

type Variant struct {
	ID   VariantID
	Name string
}
