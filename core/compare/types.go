// Package compare defines the data model of a two-way comparison
// between a base graph and one edited graph.
//
// Results are produced by external comparison tooling and consumed by
// the merge engine; this package does not compute diffs itself.
package compare

import (
	"strings"

	"scene-merge/core/scene"
)

// EntityKind classifies how an entity differs from the base graph.
type EntityKind string

const (
	// EntityAdded marks an entity present in the edited graph but
	// absent from the base.
	EntityAdded EntityKind = "added"
	// EntityRemoved marks an entity present in the base but absent
	// from the edited graph.
	EntityRemoved EntityKind = "removed"
	// EntityModified marks an entity present on both sides with
	// differing content.
	EntityModified EntityKind = "modified"
)

// KeyValueKind classifies how a single key differs from the base graph.
type KeyValueKind string

const (
	// KeyValueAdded marks a key absent from the base.
	KeyValueAdded KeyValueKind = "added"
	// KeyValueChanged marks a key whose value differs from the base.
	KeyValueChanged KeyValueKind = "changed"
	// KeyValueRemoved marks a key removed from the edited graph.
	KeyValueRemoved KeyValueKind = "removed"
)

// PrimitiveKind classifies how a child primitive differs from the base.
type PrimitiveKind string

const (
	// PrimitiveAdded marks a primitive absent from the base.
	PrimitiveAdded PrimitiveKind = "added"
	// PrimitiveRemoved marks a primitive removed from the edited graph.
	PrimitiveRemoved PrimitiveKind = "removed"
)

// KeyValueDifference is one key change on an entity. Keys are matched
// case-insensitively.
type KeyValueDifference struct {
	// Key is the affected key. The spelling of the edited graph is kept.
	Key string

	// Value is the value in the edited graph. Irrelevant for removals.
	Value string

	// Kind is the change type relative to the base.
	Kind KeyValueKind
}

// SameKey reports whether this difference targets the given key,
// matched case-insensitively.
func (d KeyValueDifference) SameKey(key string) bool {
	return strings.EqualFold(d.Key, key)
}

// Equal reports whether two key value differences describe the same
// change: same key (case-insensitively), same kind, and same value.
// The value is ignored for removals.
func (d KeyValueDifference) Equal(other KeyValueDifference) bool {
	if !d.SameKey(other.Key) || d.Kind != other.Kind {
		return false
	}
	if d.Kind == KeyValueRemoved {
		return true
	}
	return d.Value == other.Value
}

// PrimitiveDifference is one child primitive change on an entity.
// Primitives are identified by exact content fingerprint.
type PrimitiveDifference struct {
	// Fingerprint is the content identity of the primitive.
	Fingerprint string

	// Node references the primitive in the edited graph.
	// Only set for additions.
	Node scene.NodeID

	// Kind is the change type relative to the base.
	Kind PrimitiveKind
}

// EntityDifference is one entry per entity name in a comparison result.
// At most one difference exists per name.
type EntityDifference struct {
	// EntityName is the unique key of this difference within one result.
	EntityName string

	// Kind is the change type relative to the base.
	Kind EntityKind

	// Node references the entity in the edited graph.
	// Not set for removals.
	Node scene.NodeID

	// Fingerprint is the content hash of the entity subtree at
	// comparison time. Used only to detect convergent adds.
	Fingerprint string

	// KeyValues holds the nested key changes, in comparison order.
	KeyValues []KeyValueDifference

	// Children holds the nested primitive changes, in comparison order.
	Children []PrimitiveDifference
}

// Result is a complete two-way comparison of a base graph against one
// edited graph.
type Result struct {
	// Base is the common ancestor the differences were computed against.
	Base *scene.Graph

	// Other is the edited graph the differences describe.
	Other *scene.Graph

	// Entities holds the per-entity differences in comparison order.
	// Callers must treat the order as deterministic but not
	// semantically significant.
	Entities []EntityDifference
}
