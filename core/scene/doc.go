// Package scene provides the arena-based scene graph model.
//
// A Graph owns a flat arena of nodes addressed by stable NodeIDs.
// Parent/child relations are stored as ID pairs instead of pointers,
// which keeps the structure free of ownership cycles and makes deep
// copies between graphs cheap and explicit.
//
// # Node Kinds
//
// The set of node kinds is closed:
//
//   - Root: the single top-level node of a graph.
//   - Entity: a named node carrying an ordered, case-insensitive
//     key/value store and any number of primitive children.
//   - Primitive: a leaf node identified by its content fingerprint.
//
// # Fingerprints
//
// Nodes carry a content-derived fingerprint stamped by the comparison
// tooling (see core/fingerprint). The graph itself never computes
// fingerprints; it only stores and indexes them.
package scene
