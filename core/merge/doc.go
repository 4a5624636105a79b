// Package merge implements the three-way structural merge engine.
//
// Given two comparison results sharing the same base graph (base vs.
// source and base vs. target), the engine reconciles both difference
// sets into a single ordered list of merge actions applicable to the
// target graph. Divergent edits of the same entity or key are never
// resolved silently: they are wrapped in conflict actions that require
// an explicit accept/reject decision before they can be applied.
//
// # Operation
//
// NewOperation builds the reconciliation pass in one synchronous sweep:
//
//  1. Index both comparison results' entity differences by name.
//  2. Index the target graph's entities by name.
//  3. Walk the source differences in comparison order, resolve each
//     against any same-named target difference, and emit actions.
//
// Entities changed only in the target are never visited; the target's
// own edits have nothing to reconcile against.
//
// # Errors
//
// Self-contradictory input (mismatched base graphs, or difference pairs
// that could not both have been computed against the same base) is a
// precondition violation: NewOperation fails with a *PreconditionError
// and produces no action list. Genuine divergence is never an error.
//
// # Applying
//
// Actions are inert values until applied. Applying mutates the target
// graph and is a separately-sequenced step; the engine only guarantees
// that the emitted order is the intended application order whenever two
// actions touch the same entity or key.
package merge
