package scene

import (
	"fmt"
	"strings"
)

// NodeID is a stable identifier addressing a node within one graph's arena.
// The zero value is never a valid node.
type NodeID int

// InvalidNode is the NodeID used when no node applies.
const InvalidNode NodeID = 0

// Kind identifies the type of a node. The set of kinds is closed.
type Kind string

const (
	// KindRoot is the single top-level node of a graph.
	KindRoot Kind = "root"
	// KindEntity is a named node with key values and primitive children.
	KindEntity Kind = "entity"
	// KindPrimitive is a leaf node identified by its content fingerprint.
	KindPrimitive Kind = "primitive"
)

// KeyValue is a single key/value pair on an entity.
// Keys are compared case-insensitively; the stored spelling is preserved.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Node is one entry in a graph's arena.
type Node struct {
	// ID is the stable identifier of this node within its graph.
	ID NodeID

	// Kind is the node type (root, entity, primitive).
	Kind Kind

	// Name is the entity name. Empty for non-entity nodes.
	Name string

	// KeyValues is the ordered key/value store of an entity.
	KeyValues []KeyValue

	// Content is the free-form payload of a primitive.
	Content string

	// Fingerprint is the content-derived identity of this node's subtree.
	Fingerprint string

	// Parent is the ID of the owning node (InvalidNode for the root).
	Parent NodeID

	// Children holds the IDs of owned nodes in insertion order.
	Children []NodeID
}

// Graph is an arena of nodes forming one scene snapshot.
// It is not safe for concurrent mutation.
type Graph struct {
	nodes map[NodeID]*Node
	root  NodeID
	next  NodeID
}

// NewGraph creates an empty graph containing only the root node.
func NewGraph() *Graph {
	g := &Graph{
		nodes: make(map[NodeID]*Node),
		next:  1,
	}
	g.root = g.insert(&Node{Kind: KindRoot})
	return g
}

// insert assigns the next free ID and stores the node.
func (g *Graph) insert(n *Node) NodeID {
	n.ID = g.next
	g.next++
	g.nodes[n.ID] = n
	return n.ID
}

// Root returns the ID of the graph's root node.
func (g *Graph) Root() NodeID {
	return g.root
}

// Node returns the node with the given ID, or false if it does not exist.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes in the arena, including the root.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddEntity creates a new entity under the given parent (usually the root).
func (g *Graph) AddEntity(parent NodeID, name string) (NodeID, error) {
	p, ok := g.nodes[parent]
	if !ok {
		return InvalidNode, fmt.Errorf("parent node %d does not exist", parent)
	}
	id := g.insert(&Node{Kind: KindEntity, Name: name, Parent: parent})
	p.Children = append(p.Children, id)
	return id, nil
}

// AddPrimitive creates a new primitive under the given entity.
func (g *Graph) AddPrimitive(parent NodeID, content, fingerprint string) (NodeID, error) {
	p, ok := g.nodes[parent]
	if !ok {
		return InvalidNode, fmt.Errorf("parent node %d does not exist", parent)
	}
	if p.Kind != KindEntity {
		return InvalidNode, fmt.Errorf("node %d is not an entity", parent)
	}
	id := g.insert(&Node{Kind: KindPrimitive, Content: content, Fingerprint: fingerprint, Parent: parent})
	p.Children = append(p.Children, id)
	return id, nil
}

// Remove detaches the node from its parent and deletes its whole subtree.
// The root node cannot be removed.
func (g *Graph) Remove(id NodeID) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("node %d does not exist", id)
	}
	if n.Kind == KindRoot {
		return fmt.Errorf("cannot remove the root node")
	}
	if parent, ok := g.nodes[n.Parent]; ok {
		for i, child := range parent.Children {
			if child == id {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
				break
			}
		}
	}
	g.deleteSubtree(id)
	return nil
}

// deleteSubtree removes a node and all its descendants from the arena.
func (g *Graph) deleteSubtree(id NodeID) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for _, child := range n.Children {
		g.deleteSubtree(child)
	}
	delete(g.nodes, id)
}

// SetKeyValue sets a key on an entity. An existing key is replaced in
// place (matched case-insensitively, position preserved); a new key is
// appended.
func (g *Graph) SetKeyValue(id NodeID, key, value string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("node %d does not exist", id)
	}
	if n.Kind != KindEntity {
		return fmt.Errorf("node %d is not an entity", id)
	}
	for i := range n.KeyValues {
		if strings.EqualFold(n.KeyValues[i].Key, key) {
			n.KeyValues[i].Value = value
			return nil
		}
	}
	n.KeyValues = append(n.KeyValues, KeyValue{Key: key, Value: value})
	return nil
}

// KeyValue returns the value stored for the given key, matched
// case-insensitively.
func (g *Graph) KeyValue(id NodeID, key string) (string, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return "", false
	}
	for _, kv := range n.KeyValues {
		if strings.EqualFold(kv.Key, key) {
			return kv.Value, true
		}
	}
	return "", false
}

// RemoveKeyValue deletes a key from an entity, matched case-insensitively.
func (g *Graph) RemoveKeyValue(id NodeID, key string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("node %d does not exist", id)
	}
	for i, kv := range n.KeyValues {
		if strings.EqualFold(kv.Key, key) {
			n.KeyValues = append(n.KeyValues[:i], n.KeyValues[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("key %q not present on node %d", key, id)
}

// FindEntity returns the first entity with the given name.
func (g *Graph) FindEntity(name string) (NodeID, bool) {
	var found NodeID
	g.EachEntity(func(n *Node) bool {
		if n.Name == name {
			found = n.ID
			return false
		}
		return true
	})
	if found == InvalidNode {
		return InvalidNode, false
	}
	return found, true
}

// EachEntity visits every entity in the graph in insertion order.
// Returning false from fn stops the walk.
func (g *Graph) EachEntity(fn func(n *Node) bool) {
	g.walk(g.root, func(n *Node) bool {
		if n.Kind != KindEntity {
			return true
		}
		return fn(n)
	})
}

// walk visits the subtree under id depth-first in child order.
func (g *Graph) walk(id NodeID, fn func(n *Node) bool) bool {
	n, ok := g.nodes[id]
	if !ok {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !g.walk(child, fn) {
			return false
		}
	}
	return true
}

// ChildFingerprints indexes the primitive children of an entity by their
// content fingerprint.
func (g *Graph) ChildFingerprints(id NodeID) map[string]NodeID {
	index := make(map[string]NodeID)
	n, ok := g.nodes[id]
	if !ok {
		return index
	}
	for _, child := range n.Children {
		c, ok := g.nodes[child]
		if !ok || c.Kind != KindPrimitive {
			continue
		}
		index[c.Fingerprint] = c.ID
	}
	return index
}

// Import deep-copies the subtree rooted at src's node id into this graph
// under the given parent, returning the new subtree root's ID.
func (g *Graph) Import(src *Graph, id, parent NodeID) (NodeID, error) {
	n, ok := src.nodes[id]
	if !ok {
		return InvalidNode, fmt.Errorf("source node %d does not exist", id)
	}
	p, ok := g.nodes[parent]
	if !ok {
		return InvalidNode, fmt.Errorf("parent node %d does not exist", parent)
	}

	clone := &Node{
		Kind:        n.Kind,
		Name:        n.Name,
		Content:     n.Content,
		Fingerprint: n.Fingerprint,
		Parent:      parent,
		KeyValues:   append([]KeyValue(nil), n.KeyValues...),
	}
	newID := g.insert(clone)
	p.Children = append(p.Children, newID)

	for _, child := range n.Children {
		if _, err := g.Import(src, child, newID); err != nil {
			return InvalidNode, err
		}
	}
	return newID, nil
}
