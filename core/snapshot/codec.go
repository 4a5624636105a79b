package snapshot

import (
	"encoding/json"
	"fmt"
	"io"

	"scene-merge/core/compare"
	"scene-merge/core/fingerprint"
	"scene-merge/core/scene"
)

// Document is one graph snapshot in the tooling's JSON form.
type Document struct {
	// Name identifies the snapshot (e.g. the map name and revision).
	Name string `json:"name"`

	// Entities holds the snapshot's entities in graph order.
	Entities []Entity `json:"entities"`
}

// Entity is one entity of a snapshot document.
type Entity struct {
	// Name is the unique entity name.
	Name string `json:"name"`

	// KeyValues holds the entity's key/value pairs in order.
	KeyValues []scene.KeyValue `json:"key_values,omitempty"`

	// Primitives holds the entity's child primitives in order.
	Primitives []Primitive `json:"primitives,omitempty"`

	// Fingerprint is the precomputed content hash of the entity
	// subtree. Stamped with the reference implementation when empty.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Primitive is one child primitive of a snapshot entity.
type Primitive struct {
	// Content is the free-form primitive payload.
	Content string `json:"content"`

	// Fingerprint is the precomputed content hash.
	// Stamped with the reference implementation when empty.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Decode reads a snapshot document from JSON.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot document: %w", err)
	}
	return &doc, nil
}

// Encode writes the document as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode snapshot document: %w", err)
	}
	return nil
}

// Build constructs the scene graph described by the document and
// stamps any missing fingerprints.
func (d *Document) Build() (*scene.Graph, error) {
	g := scene.NewGraph()
	for _, entity := range d.Entities {
		id, err := g.AddEntity(g.Root(), entity.Name)
		if err != nil {
			return nil, fmt.Errorf("snapshot %q: %w", d.Name, err)
		}
		for _, kv := range entity.KeyValues {
			if err := g.SetKeyValue(id, kv.Key, kv.Value); err != nil {
				return nil, fmt.Errorf("snapshot %q entity %q: %w", d.Name, entity.Name, err)
			}
		}
		for _, prim := range entity.Primitives {
			if _, err := g.AddPrimitive(id, prim.Content, prim.Fingerprint); err != nil {
				return nil, fmt.Errorf("snapshot %q entity %q: %w", d.Name, entity.Name, err)
			}
		}
		if entity.Fingerprint != "" {
			node, _ := g.Node(id)
			node.Fingerprint = entity.Fingerprint
		}
	}

	if err := fingerprint.Stamp(g, nil); err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", d.Name, err)
	}
	return g, nil
}

// FromGraph converts a graph back into its document form, carrying the
// graph's fingerprints along.
func FromGraph(name string, g *scene.Graph) *Document {
	doc := &Document{Name: name}
	g.EachEntity(func(n *scene.Node) bool {
		entity := Entity{
			Name:        n.Name,
			KeyValues:   append([]scene.KeyValue(nil), n.KeyValues...),
			Fingerprint: n.Fingerprint,
		}
		for _, childID := range n.Children {
			child, ok := g.Node(childID)
			if !ok || child.Kind != scene.KindPrimitive {
				continue
			}
			entity.Primitives = append(entity.Primitives, Primitive{
				Content:     child.Content,
				Fingerprint: child.Fingerprint,
			})
		}
		doc.Entities = append(doc.Entities, entity)
		return true
	})
	return doc
}

// Comparison is one precomputed two-way comparison in JSON form.
// Entity references are by name, primitive references by fingerprint;
// Resolve binds them against the actual graphs.
type Comparison struct {
	// Base names the snapshot the differences were computed against.
	Base string `json:"base"`

	// Other names the edited snapshot the differences describe.
	Other string `json:"other"`

	// Entities holds the per-entity differences in comparison order.
	Entities []EntityDiff `json:"entities"`
}

// EntityDiff is one entity difference of a comparison document.
type EntityDiff struct {
	Name        string             `json:"name"`
	Kind        compare.EntityKind `json:"kind"`
	Fingerprint string             `json:"fingerprint,omitempty"`
	KeyValues   []KeyValueDiff     `json:"key_values,omitempty"`
	Primitives  []PrimitiveDiff    `json:"primitives,omitempty"`
}

// KeyValueDiff is one key difference of a comparison document.
type KeyValueDiff struct {
	Key   string               `json:"key"`
	Value string               `json:"value,omitempty"`
	Kind  compare.KeyValueKind `json:"kind"`
}

// PrimitiveDiff is one primitive difference of a comparison document.
type PrimitiveDiff struct {
	Fingerprint string                `json:"fingerprint"`
	Kind        compare.PrimitiveKind `json:"kind"`
}

// DecodeComparison reads a comparison document from JSON.
func DecodeComparison(r io.Reader) (*Comparison, error) {
	var doc Comparison
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode comparison document: %w", err)
	}
	return &doc, nil
}

// Resolve binds the comparison's by-name and by-fingerprint references
// against the base and edited graphs, yielding the result the merge
// engine consumes.
func (c *Comparison) Resolve(base, other *scene.Graph) (*compare.Result, error) {
	result := &compare.Result{Base: base, Other: other}

	for _, diff := range c.Entities {
		entityDiff := compare.EntityDifference{
			EntityName:  diff.Name,
			Kind:        diff.Kind,
			Fingerprint: diff.Fingerprint,
		}

		// Removed entities have no node in the edited graph.
		if diff.Kind != compare.EntityRemoved {
			id, ok := other.FindEntity(diff.Name)
			if !ok {
				return nil, fmt.Errorf("comparison %q..%q references entity %q missing from the edited snapshot",
					c.Base, c.Other, diff.Name)
			}
			entityDiff.Node = id

			if entityDiff.Fingerprint == "" {
				if node, ok := other.Node(id); ok {
					entityDiff.Fingerprint = node.Fingerprint
				}
			}
		}

		for _, kv := range diff.KeyValues {
			entityDiff.KeyValues = append(entityDiff.KeyValues, compare.KeyValueDifference{
				Key:   kv.Key,
				Value: kv.Value,
				Kind:  kv.Kind,
			})
		}

		for _, prim := range diff.Primitives {
			primDiff := compare.PrimitiveDifference{
				Fingerprint: prim.Fingerprint,
				Kind:        prim.Kind,
			}
			if prim.Kind == compare.PrimitiveAdded {
				node, ok := other.ChildFingerprints(entityDiff.Node)[prim.Fingerprint]
				if !ok {
					return nil, fmt.Errorf("comparison %q..%q references primitive %s missing from entity %q",
						c.Base, c.Other, prim.Fingerprint, diff.Name)
				}
				primDiff.Node = node
			}
			entityDiff.Children = append(entityDiff.Children, primDiff)
		}

		result.Entities = append(result.Entities, entityDiff)
	}
	return result, nil
}
