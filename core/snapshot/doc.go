// Package snapshot defines the JSON documents the merge tooling
// consumes: graph snapshots and precomputed two-way comparisons.
//
// These documents are the tool's exchange format with the comparison
// tooling that computes diffs and fingerprints. They are not a map
// file format; the editor's own persistence stays outside this tool.
//
// # Documents
//
// A Document is one scene snapshot: entities with key values and
// primitive contents, optionally carrying precomputed fingerprints.
// Missing fingerprints are stamped with the reference implementation
// from core/fingerprint when the graph is built.
//
// A Comparison is one precomputed base-vs-other difference set. It
// references entities by name and primitives by fingerprint; Resolve
// binds those references against the actual graphs.
//
// # Loading
//
// Loader fetches documents from object storage; the file helpers read
// them from disk. CachedLoader adds a TTL cache with singleflight
// stampede protection for the merge API, where the same snapshot is
// typically requested by several sessions in a row.
package snapshot
