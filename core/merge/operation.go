package merge

import (
	"scene-merge/core/compare"
	"scene-merge/core/scene"
)

// Operation is one completed three-way reconciliation pass. It holds
// non-owning references to the three graphs (the caller manages their
// lifetime) and the resulting ordered action list.
//
// An Operation must not be used concurrently with structural mutation
// of any of the three graphs; there is no internal locking.
type Operation struct {
	base   *scene.Graph
	source *scene.Graph
	target *scene.Graph

	actions []Action

	// Accepted but currently without effect, matching the established
	// behavior of the merge configuration surface.
	mergeSelectionGroups bool
	mergeLayers          bool
}

// Summary provides aggregate counts over an operation's action list.
type Summary struct {
	// Total is the number of emitted actions.
	Total int `json:"total"`

	// Conflicts is the number of conflict-wrapping actions.
	Conflicts int `json:"conflicts"`

	// ByKind counts actions per kind.
	ByKind map[ActionKind]int `json:"by_kind"`
}

// ApplyOptions controls how an operation's action list is applied.
type ApplyOptions struct {
	// AcceptConflicts accepts the source side of every conflict that
	// has no explicit decision yet.
	AcceptConflicts bool
}

// NewOperation reconciles two comparison results sharing the same base
// graph into an ordered action list. baseToSource describes the branch
// being merged in, baseToTarget the branch receiving the merge.
//
// A *PreconditionError is returned when the input is self-contradictory
// (mismatched base graphs, or difference pairs that could not both stem
// from the shared base); in that case no operation and no action list
// is produced.
func NewOperation(baseToSource, baseToTarget *compare.Result) (*Operation, error) {
	if baseToSource.Base != baseToTarget.Base {
		return nil, &PreconditionError{Reason: "the base graph of both comparison results must be identical"}
	}

	op := &Operation{
		base:   baseToSource.Base,
		source: baseToSource.Other,
		target: baseToTarget.Other,
	}

	if err := op.processEntityDifferences(baseToSource.Entities, baseToTarget.Entities); err != nil {
		return nil, err
	}
	return op, nil
}

// Actions returns the ordered action list. The slice must be treated
// as read-only.
func (o *Operation) Actions() []Action {
	return o.actions
}

// Target returns the graph receiving the merge.
func (o *Operation) Target() *scene.Graph {
	return o.target
}

// Summarize aggregates the action list into per-kind counts.
func (o *Operation) Summarize() Summary {
	s := Summary{ByKind: make(map[ActionKind]int)}
	for _, a := range o.actions {
		s.Total++
		s.ByKind[a.Kind()]++
		if IsConflict(a) {
			s.Conflicts++
		}
	}
	return s
}

// SetMergeSelectionGroups toggles merging of selection groups.
// The flag is recorded but currently has no effect.
func (o *Operation) SetMergeSelectionGroups(enabled bool) {
	o.mergeSelectionGroups = enabled
}

// SetMergeLayers toggles merging of layer memberships.
// The flag is recorded but currently has no effect.
func (o *Operation) SetMergeLayers(enabled bool) {
	o.mergeLayers = enabled
}

// Apply executes the action list against the target graph in emitted
// order. Conflict actions without a decision are accepted when
// opts.AcceptConflicts is set and skipped otherwise; rejected conflicts
// are skipped as well. It returns the number of applied and skipped
// actions.
func (o *Operation) Apply(opts ApplyOptions) (applied, skipped int, err error) {
	for _, action := range o.actions {
		if conflict, ok := action.(ConflictAction); ok {
			if conflict.Decision() == DecisionPending && opts.AcceptConflicts {
				conflict.SetDecision(DecisionAccepted)
			}
			if conflict.Decision() != DecisionAccepted {
				skipped++
				continue
			}
		}
		if err := action.Apply(o.target); err != nil {
			return applied, skipped, err
		}
		applied++
	}
	return applied, skipped, nil
}

// addAction appends an action to the operation's ordered list.
func (o *Operation) addAction(a Action) {
	o.actions = append(o.actions, a)
}

// processEntityDifferences runs the reconciliation pass. The lookup
// indices built here are transient and discarded when the pass ends.
func (o *Operation) processEntityDifferences(sourceDiffs, targetDiffs []compare.EntityDifference) error {
	targetByName := make(map[string]*compare.EntityDifference, len(targetDiffs))
	for i := range targetDiffs {
		targetByName[targetDiffs[i].EntityName] = &targetDiffs[i]
	}

	// Index all entities currently in the target graph in a single pass.
	targetEntities := make(map[string]scene.NodeID)
	o.target.EachEntity(func(n *scene.Node) bool {
		targetEntities[n.Name] = n.ID
		return true
	})

	// Walk each difference from base to source. Differences for
	// entities untouched in the target are accepted outright; the rest
	// are resolved against the target's own difference.
	for i := range sourceDiffs {
		sourceDiff := &sourceDiffs[i]

		targetDiff, inTarget := targetByName[sourceDiff.EntityName]
		if !inTarget {
			if err := o.acceptEntityDifference(sourceDiff, targetEntities); err != nil {
				return err
			}
			continue
		}

		switch sourceDiff.Kind {
		case compare.EntityAdded:
			// The target cannot remove or modify an entity that the
			// source diff says was absent from the shared base.
			if targetDiff.Kind == compare.EntityRemoved || targetDiff.Kind == compare.EntityModified {
				return incompatibleKinds(sourceDiff.EntityName, sourceDiff.Kind, targetDiff.Kind,
					"entity marked as added in source cannot be removed or modified in target")
			}

			// Both branches added this entity. Identical fingerprints
			// mean the adds converged; otherwise the source version is
			// re-added and wins.
			if sourceDiff.Fingerprint != targetDiff.Fingerprint {
				o.addAction(NewAddEntityAction(o.source, sourceDiff.Node, sourceDiff.EntityName))
			}

		case compare.EntityRemoved:
			// The target cannot add an entity the source diff says was
			// already present in the shared base.
			if targetDiff.Kind == compare.EntityAdded {
				return incompatibleKinds(sourceDiff.EntityName, sourceDiff.Kind, targetDiff.Kind,
					"entity marked as removed in source cannot be added in target")
			}

			// Removed on both branches, nothing left to do.
			if targetDiff.Kind == compare.EntityRemoved {
				continue
			}

			// Removed in source but modified in target: a genuine
			// conflict, wrapped for explicit resolution.
			o.addAction(NewEntityConflictAction(targetDiff.Node, sourceDiff.EntityName,
				NewRemoveEntityAction(targetDiff.Node, sourceDiff.EntityName)))

		case compare.EntityModified:
			if err := o.processEntityModification(sourceDiff, targetDiff); err != nil {
				return err
			}
		}
	}
	return nil
}

// acceptEntityDifference maps a source difference with no competing
// target difference directly onto actions.
func (o *Operation) acceptEntityDifference(diff *compare.EntityDifference, targetEntities map[string]scene.NodeID) error {
	switch diff.Kind {
	case compare.EntityRemoved:
		entity, ok := targetEntities[diff.EntityName]
		if !ok {
			// The target reported no difference for this entity, so it
			// must still hold the base version.
			return &PreconditionError{
				EntityName: diff.EntityName,
				SourceKind: diff.Kind,
				Reason:     "entity is absent from the target graph but the target comparison reported no removal",
			}
		}
		o.addAction(NewRemoveEntityAction(entity, diff.EntityName))

	case compare.EntityAdded:
		o.addAction(NewAddEntityAction(o.source, diff.Node, diff.EntityName))

	case compare.EntityModified:
		entity, ok := targetEntities[diff.EntityName]
		if !ok {
			return &PreconditionError{
				EntityName: diff.EntityName,
				SourceKind: diff.Kind,
				Reason:     "entity is absent from the target graph but the target comparison reported no removal",
			}
		}
		for _, kvDiff := range diff.KeyValues {
			o.addAction(o.actionForKeyValueDiff(kvDiff, entity, diff.EntityName))
		}
		targetChildren := o.target.ChildFingerprints(entity)
		for _, childDiff := range diff.Children {
			o.addChildDiffActions(childDiff, entity, diff.EntityName, targetChildren)
		}
	}
	return nil
}

// processEntityModification resolves an entity modified in the source
// against the target's competing difference for the same entity.
func (o *Operation) processEntityModification(sourceDiff, targetDiff *compare.EntityDifference) error {
	// The target cannot add an entity that the source diff modified,
	// since modification implies presence in the shared base.
	if targetDiff.Kind == compare.EntityAdded {
		return incompatibleKinds(sourceDiff.EntityName, sourceDiff.Kind, targetDiff.Kind,
			"entity marked as modified in source cannot be added in target")
	}

	// Modified in source but removed in target: a conflict. The target
	// no longer holds the node, so accepting re-expresses the source's
	// state as an add.
	if targetDiff.Kind == compare.EntityRemoved {
		o.addAction(NewEntityConflictAction(scene.InvalidNode, sourceDiff.EntityName,
			NewAddEntityAction(o.source, sourceDiff.Node, sourceDiff.EntityName)))
		return nil
	}

	// Both branches modified this entity; reconcile the nested
	// differences one by one against the target's current state.
	entity := targetDiff.Node
	targetChildren := o.target.ChildFingerprints(entity)

	for _, childDiff := range sourceDiff.Children {
		o.addChildDiffActions(childDiff, entity, sourceDiff.EntityName, targetChildren)
	}

	for _, sourceKV := range sourceDiff.KeyValues {
		targetKV, found := findKeyValueDiff(targetDiff.KeyValues, sourceKV.Key)
		if !found {
			// The target did not touch this key, accept the change.
			o.addAction(o.actionForKeyValueDiff(sourceKV, entity, sourceDiff.EntityName))
			continue
		}

		// Both sides made the very same change, nothing to do.
		if sourceKV.Equal(targetKV) {
			continue
		}

		if !KeyValueConflict(sourceKV, targetKV) {
			o.addAction(o.actionForKeyValueDiff(sourceKV, entity, sourceDiff.EntityName))
			continue
		}

		o.addAction(NewKeyValueConflictAction(entity, sourceDiff.EntityName,
			o.actionForKeyValueDiff(sourceKV, entity, sourceDiff.EntityName),
			o.actionForKeyValueDiff(targetKV, entity, sourceDiff.EntityName)))
	}
	return nil
}

// addChildDiffActions maps one primitive difference onto actions,
// guarded by the target entity's current child fingerprints: adds are
// skipped when the content is already present (independently converged
// adds), removals are skipped when the content is already gone.
func (o *Operation) addChildDiffActions(diff compare.PrimitiveDifference, entity scene.NodeID, entityName string, targetChildren map[string]scene.NodeID) {
	targetNode, present := targetChildren[diff.Fingerprint]

	switch diff.Kind {
	case compare.PrimitiveAdded:
		if !present {
			o.addAction(NewAddChildAction(o.source, diff.Node, entity, entityName))
		}
	case compare.PrimitiveRemoved:
		if present {
			o.addAction(NewRemoveChildAction(targetNode, entityName))
		}
	}
}

// actionForKeyValueDiff maps a key value difference onto its matching
// action against the given target entity.
func (o *Operation) actionForKeyValueDiff(diff compare.KeyValueDifference, entity scene.NodeID, entityName string) Action {
	switch diff.Kind {
	case compare.KeyValueAdded:
		return NewAddKeyValueAction(entity, entityName, diff.Key, diff.Value)
	case compare.KeyValueRemoved:
		return NewRemoveKeyValueAction(entity, entityName, diff.Key)
	default:
		return NewChangeKeyValueAction(entity, entityName, diff.Key, diff.Value)
	}
}
