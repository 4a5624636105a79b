package merge

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"scene-merge/core/scene"
)

// ActionKind identifies the type of a merge action.
type ActionKind string

const (
	// ActionAddEntity adds an entity from the source graph to the target.
	ActionAddEntity ActionKind = "add_entity"
	// ActionRemoveEntity removes an entity from the target graph.
	ActionRemoveEntity ActionKind = "remove_entity"
	// ActionAddChild adds a source primitive to a target entity.
	ActionAddChild ActionKind = "add_child"
	// ActionRemoveChild removes a primitive from a target entity.
	ActionRemoveChild ActionKind = "remove_child"
	// ActionAddKeyValue adds a key to a target entity.
	ActionAddKeyValue ActionKind = "add_key_value"
	// ActionChangeKeyValue changes a key on a target entity.
	ActionChangeKeyValue ActionKind = "change_key_value"
	// ActionRemoveKeyValue removes a key from a target entity.
	ActionRemoveKeyValue ActionKind = "remove_key_value"
	// ActionEntityConflict wraps one competing entity-level edit.
	ActionEntityConflict ActionKind = "entity_conflict"
	// ActionKeyValueConflict wraps two competing edits of the same key.
	ActionKeyValueConflict ActionKind = "key_value_conflict"
)

// Decision is the accept/reject state of a conflict action.
type Decision string

const (
	// DecisionPending means no decision has been made yet.
	DecisionPending Decision = "pending"
	// DecisionAccepted applies the source side's change.
	DecisionAccepted Decision = "accepted"
	// DecisionRejected keeps the target as it is.
	DecisionRejected Decision = "rejected"
)

// ErrUndecided is returned when a conflict action is applied before an
// accept/reject decision has been set.
var ErrUndecided = errors.New("conflict action has no accept/reject decision")

// Action is a single executable merge edit. Actions are inert values:
// nothing is mutated until Apply is invoked against the target graph.
type Action interface {
	// ID is a unique identifier for addressing this action externally.
	ID() string
	// Kind is the action type tag.
	Kind() ActionKind
	// Describe returns a human-readable summary of the action's effect.
	Describe() string
	// Apply performs the corresponding mutation on the target graph.
	Apply(target *scene.Graph) error
}

// ConflictAction is a merge action wrapping competing edits. It must
// receive a decision before it can be applied.
type ConflictAction interface {
	Action
	// Decision returns the current accept/reject state.
	Decision() Decision
	// SetDecision records the caller's accept/reject choice.
	SetDecision(d Decision)
}

// actionID holds the generated identifier shared by all action types.
type actionID struct {
	id string
}

func newActionID() actionID {
	return actionID{id: uuid.NewString()}
}

func (a actionID) ID() string {
	return a.id
}

// AddEntityAction imports an entity subtree from the source graph under
// the target root.
type AddEntityAction struct {
	actionID

	// Source is the graph owning the node to import.
	Source *scene.Graph
	// SourceNode is the entity subtree to import.
	SourceNode scene.NodeID
	// EntityName is the name of the imported entity.
	EntityName string
}

// NewAddEntityAction creates an action importing the source entity into
// the target graph.
func NewAddEntityAction(source *scene.Graph, sourceNode scene.NodeID, entityName string) *AddEntityAction {
	return &AddEntityAction{actionID: newActionID(), Source: source, SourceNode: sourceNode, EntityName: entityName}
}

func (a *AddEntityAction) Kind() ActionKind { return ActionAddEntity }

func (a *AddEntityAction) Describe() string {
	return fmt.Sprintf("add entity %q", a.EntityName)
}

func (a *AddEntityAction) Apply(target *scene.Graph) error {
	// Re-adding replaces any existing entity of the same name.
	if existing, ok := target.FindEntity(a.EntityName); ok {
		if err := target.Remove(existing); err != nil {
			return fmt.Errorf("failed to replace entity %q: %w", a.EntityName, err)
		}
	}
	if _, err := target.Import(a.Source, a.SourceNode, target.Root()); err != nil {
		return fmt.Errorf("failed to add entity %q: %w", a.EntityName, err)
	}
	return nil
}

// RemoveEntityAction removes an entity subtree from the target graph.
type RemoveEntityAction struct {
	actionID

	// TargetNode is the entity to remove.
	TargetNode scene.NodeID
	// EntityName is the name of the removed entity.
	EntityName string
}

// NewRemoveEntityAction creates an action removing the target entity.
func NewRemoveEntityAction(targetNode scene.NodeID, entityName string) *RemoveEntityAction {
	return &RemoveEntityAction{actionID: newActionID(), TargetNode: targetNode, EntityName: entityName}
}

func (a *RemoveEntityAction) Kind() ActionKind { return ActionRemoveEntity }

func (a *RemoveEntityAction) Describe() string {
	return fmt.Sprintf("remove entity %q", a.EntityName)
}

func (a *RemoveEntityAction) Apply(target *scene.Graph) error {
	if err := target.Remove(a.TargetNode); err != nil {
		return fmt.Errorf("failed to remove entity %q: %w", a.EntityName, err)
	}
	return nil
}

// AddChildAction imports a primitive from the source graph into a
// target entity.
type AddChildAction struct {
	actionID

	// Source is the graph owning the primitive to import.
	Source *scene.Graph
	// SourceNode is the primitive to import.
	SourceNode scene.NodeID
	// TargetParent is the receiving entity in the target graph.
	TargetParent scene.NodeID
	// EntityName is the name of the receiving entity.
	EntityName string
}

// NewAddChildAction creates an action importing a source primitive into
// the target entity.
func NewAddChildAction(source *scene.Graph, sourceNode, targetParent scene.NodeID, entityName string) *AddChildAction {
	return &AddChildAction{actionID: newActionID(), Source: source, SourceNode: sourceNode, TargetParent: targetParent, EntityName: entityName}
}

func (a *AddChildAction) Kind() ActionKind { return ActionAddChild }

func (a *AddChildAction) Describe() string {
	return fmt.Sprintf("add primitive to entity %q", a.EntityName)
}

func (a *AddChildAction) Apply(target *scene.Graph) error {
	if _, err := target.Import(a.Source, a.SourceNode, a.TargetParent); err != nil {
		return fmt.Errorf("failed to add primitive to entity %q: %w", a.EntityName, err)
	}
	return nil
}

// RemoveChildAction removes a primitive from a target entity.
type RemoveChildAction struct {
	actionID

	// TargetNode is the primitive to remove.
	TargetNode scene.NodeID
	// EntityName is the name of the owning entity.
	EntityName string
}

// NewRemoveChildAction creates an action removing the target primitive.
func NewRemoveChildAction(targetNode scene.NodeID, entityName string) *RemoveChildAction {
	return &RemoveChildAction{actionID: newActionID(), TargetNode: targetNode, EntityName: entityName}
}

func (a *RemoveChildAction) Kind() ActionKind { return ActionRemoveChild }

func (a *RemoveChildAction) Describe() string {
	return fmt.Sprintf("remove primitive from entity %q", a.EntityName)
}

func (a *RemoveChildAction) Apply(target *scene.Graph) error {
	if err := target.Remove(a.TargetNode); err != nil {
		return fmt.Errorf("failed to remove primitive from entity %q: %w", a.EntityName, err)
	}
	return nil
}

// keyValueAction carries the shared fields of the three key actions.
type keyValueAction struct {
	actionID

	// TargetEntity is the affected entity in the target graph.
	TargetEntity scene.NodeID
	// EntityName is the name of the affected entity.
	EntityName string
	// Key is the affected key.
	Key string
	// Value is the value to set. Unused for removals.
	Value string
}

// AddKeyValueAction sets a previously absent key on a target entity.
type AddKeyValueAction struct {
	keyValueAction
}

// NewAddKeyValueAction creates an action adding a key to the target entity.
func NewAddKeyValueAction(targetEntity scene.NodeID, entityName, key, value string) *AddKeyValueAction {
	return &AddKeyValueAction{keyValueAction{actionID: newActionID(), TargetEntity: targetEntity, EntityName: entityName, Key: key, Value: value}}
}

func (a *AddKeyValueAction) Kind() ActionKind { return ActionAddKeyValue }

func (a *AddKeyValueAction) Describe() string {
	return fmt.Sprintf("add key %q = %q to entity %q", a.Key, a.Value, a.EntityName)
}

func (a *AddKeyValueAction) Apply(target *scene.Graph) error {
	if err := target.SetKeyValue(a.TargetEntity, a.Key, a.Value); err != nil {
		return fmt.Errorf("failed to add key %q on entity %q: %w", a.Key, a.EntityName, err)
	}
	return nil
}

// ChangeKeyValueAction changes an existing key on a target entity.
type ChangeKeyValueAction struct {
	keyValueAction
}

// NewChangeKeyValueAction creates an action changing a key on the
// target entity.
func NewChangeKeyValueAction(targetEntity scene.NodeID, entityName, key, value string) *ChangeKeyValueAction {
	return &ChangeKeyValueAction{keyValueAction{actionID: newActionID(), TargetEntity: targetEntity, EntityName: entityName, Key: key, Value: value}}
}

func (a *ChangeKeyValueAction) Kind() ActionKind { return ActionChangeKeyValue }

func (a *ChangeKeyValueAction) Describe() string {
	return fmt.Sprintf("change key %q to %q on entity %q", a.Key, a.Value, a.EntityName)
}

func (a *ChangeKeyValueAction) Apply(target *scene.Graph) error {
	if err := target.SetKeyValue(a.TargetEntity, a.Key, a.Value); err != nil {
		return fmt.Errorf("failed to change key %q on entity %q: %w", a.Key, a.EntityName, err)
	}
	return nil
}

// RemoveKeyValueAction removes a key from a target entity.
type RemoveKeyValueAction struct {
	keyValueAction
}

// NewRemoveKeyValueAction creates an action removing a key from the
// target entity.
func NewRemoveKeyValueAction(targetEntity scene.NodeID, entityName, key string) *RemoveKeyValueAction {
	return &RemoveKeyValueAction{keyValueAction{actionID: newActionID(), TargetEntity: targetEntity, EntityName: entityName, Key: key}}
}

func (a *RemoveKeyValueAction) Kind() ActionKind { return ActionRemoveKeyValue }

func (a *RemoveKeyValueAction) Describe() string {
	return fmt.Sprintf("remove key %q from entity %q", a.Key, a.EntityName)
}

func (a *RemoveKeyValueAction) Apply(target *scene.Graph) error {
	if err := target.RemoveKeyValue(a.TargetEntity, a.Key); err != nil {
		return fmt.Errorf("failed to remove key %q from entity %q: %w", a.Key, a.EntityName, err)
	}
	return nil
}

// decisionSlot holds the accept/reject state shared by the conflict
// wrappers.
type decisionSlot struct {
	decision Decision
}

func (d *decisionSlot) Decision() Decision {
	if d.decision == "" {
		return DecisionPending
	}
	return d.decision
}

func (d *decisionSlot) SetDecision(decision Decision) {
	d.decision = decision
}

// EntityConflictAction wraps one competing entity-level edit that needs
// an explicit decision before it may be applied. Accepting applies the
// wrapped source-derived edit; rejecting keeps the target untouched.
type EntityConflictAction struct {
	actionID
	decisionSlot

	// ConflictingEntity is the affected entity in the target graph.
	// InvalidNode when the target no longer holds the entity.
	ConflictingEntity scene.NodeID
	// EntityName is the name of the affected entity.
	EntityName string
	// Wrapped is the competing source-derived edit.
	Wrapped Action
}

// NewEntityConflictAction wraps a competing entity-level edit.
func NewEntityConflictAction(conflictingEntity scene.NodeID, entityName string, wrapped Action) *EntityConflictAction {
	return &EntityConflictAction{actionID: newActionID(), ConflictingEntity: conflictingEntity, EntityName: entityName, Wrapped: wrapped}
}

func (a *EntityConflictAction) Kind() ActionKind { return ActionEntityConflict }

func (a *EntityConflictAction) Describe() string {
	return fmt.Sprintf("conflict on entity %q: %s", a.EntityName, a.Wrapped.Describe())
}

func (a *EntityConflictAction) Apply(target *scene.Graph) error {
	switch a.Decision() {
	case DecisionAccepted:
		return a.Wrapped.Apply(target)
	case DecisionRejected:
		return nil
	default:
		return fmt.Errorf("entity %q: %w", a.EntityName, ErrUndecided)
	}
}

// KeyValueConflictAction wraps two competing edits of the same key on
// one entity. Accepting applies the source-derived edit; rejecting
// keeps the target's state.
type KeyValueConflictAction struct {
	actionID
	decisionSlot

	// ConflictingEntity is the affected entity in the target graph.
	ConflictingEntity scene.NodeID
	// EntityName is the name of the affected entity.
	EntityName string
	// SourceAction is the edit derived from the source difference.
	SourceAction Action
	// TargetAction is the edit derived from the target difference.
	TargetAction Action
}

// NewKeyValueConflictAction wraps the two competing key edits.
func NewKeyValueConflictAction(conflictingEntity scene.NodeID, entityName string, sourceAction, targetAction Action) *KeyValueConflictAction {
	return &KeyValueConflictAction{
		actionID:          newActionID(),
		ConflictingEntity: conflictingEntity,
		EntityName:        entityName,
		SourceAction:      sourceAction,
		TargetAction:      targetAction,
	}
}

func (a *KeyValueConflictAction) Kind() ActionKind { return ActionKeyValueConflict }

func (a *KeyValueConflictAction) Describe() string {
	return fmt.Sprintf("conflict on entity %q: %s vs %s",
		a.EntityName, a.SourceAction.Describe(), a.TargetAction.Describe())
}

func (a *KeyValueConflictAction) Apply(target *scene.Graph) error {
	switch a.Decision() {
	case DecisionAccepted:
		return a.SourceAction.Apply(target)
	case DecisionRejected:
		return nil
	default:
		return fmt.Errorf("entity %q: %w", a.EntityName, ErrUndecided)
	}
}

// IsConflict reports whether the action is one of the two
// conflict-wrapping variants.
func IsConflict(a Action) bool {
	_, ok := a.(ConflictAction)
	return ok
}
