package grid

import (
	"errors"
	"fmt"

	"aeroops/internal/models"
)

var (
	// ErrNotFound: the referenced asset does not exist.
	ErrNotFound = errors.New("grid asset not found")

	// ErrEmptyPatch: the patch declares no fields.
	ErrEmptyPatch = errors.New("patch contains no fields")

	// ErrAssigneeNotFound: the patch assigns the asset to an unknown user.
	ErrAssigneeNotFound = errors.New("assignee user not found")
)

// VersionConflictError means the caller's expectedVersion is stale. Current
// carries the authoritative record so the caller can reconcile without a
// second round trip. The service never retries on the caller's behalf.
type VersionConflictError struct {
	Expected int
	Current  models.GridAsset
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on asset %d: expected %d, current %d",
		e.Current.ID, e.Expected, e.Current.Version)
}

// ValidationError rejects a malformed patch before any DB work.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid patch field %q: %s", e.Field, e.Reason)
}
