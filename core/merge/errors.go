package merge

import (
	"fmt"

	"scene-merge/core/compare"
)

// PreconditionError reports self-contradictory merge input: the two
// comparison results cannot both have been computed against the same
// base graph. It indicates a bug in how the comparisons were produced,
// not a user-facing merge conflict.
type PreconditionError struct {
	// EntityName is the offending entity, if the violation is tied to one.
	EntityName string

	// SourceKind and TargetKind are the two conflicting difference kinds.
	SourceKind compare.EntityKind
	TargetKind compare.EntityKind

	// Reason describes the violated precondition.
	Reason string
}

func (e *PreconditionError) Error() string {
	if e.EntityName == "" {
		return "merge precondition violated: " + e.Reason
	}
	if e.SourceKind == "" && e.TargetKind == "" {
		return fmt.Sprintf("merge precondition violated for entity %q: %s", e.EntityName, e.Reason)
	}
	return fmt.Sprintf("merge precondition violated for entity %q: %s (%s in source, %s in target)",
		e.EntityName, e.Reason, e.SourceKind, e.TargetKind)
}

// incompatibleKinds builds the error for a fatal cell of the entity
// kind compatibility table.
func incompatibleKinds(name string, sourceKind, targetKind compare.EntityKind, reason string) *PreconditionError {
	return &PreconditionError{
		EntityName: name,
		SourceKind: sourceKind,
		TargetKind: targetKind,
		Reason:     reason,
	}
}
