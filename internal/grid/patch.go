package grid

import "aeroops/internal/models"

// Patch is the caller-supplied partial field set for one update. Fields are
// explicit and typed on purpose: the merge/diff in Service.Update stays
// exhaustive instead of walking an open string map. A nil field is "leave
// as is"; AssignedTo set to 0 clears the assignment.
type Patch struct {
	Status         *models.AssetStatus `json:"status,omitempty"`
	CompletedCount *int                `json:"completedCount,omitempty"`
	AssignedTo     *uint               `json:"assignedToUserId,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.CompletedCount == nil && p.AssignedTo == nil
}

func (p Patch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Status != nil && !p.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown status value"}
	}
	if p.CompletedCount != nil && *p.CompletedCount < 0 {
		return &ValidationError{Field: "completedCount", Reason: "must be >= 0"}
	}
	return nil
}
