// Package model holds the canonical component dependency graph.
//
// # Overview
//
// A [Model] owns an ordered sequence of [Component] values and the
// [Relation] edges derived from their requires links. It is populated once
// by [Model.Import] from an [ExternalGraph] and then queried repeatedly by
// the layout engine, the view controller and the detail panel.
//
// Components are immutable after import. Layout engines never write
// positions or children onto them; they build their own side tables keyed
// by label instead, so any number of views can share one Model.
//
// # Ordering
//
// Node order is an explicit property: [Model.AllNodes] returns components
// in the order the [ExternalGraph] listed them, and [Component.Index] is the
// position in that sequence. The JSON decoder for ExternalGraph preserves
// document key order so this holds for files as well as for graphs built in
// code.
//
// # Invariants
//
// After a successful import:
//
//   - every label is unique and equal to the node's name in the input
//   - B is in A.Requires() iff A is in B.RequiredBy()
//   - AllEdges() is exactly the set of (A, B) with B in A.Requires()
//
// [Model.Validate] re-checks these and is used by tests.
//
// # Lookups
//
// An unknown label is a normal outcome. [Model.Node] returns (nil, false)
// and [Model.Neighborhood] returns ok == false; callers are expected to
// render an explicit "unknown component" state.
//
// # Concurrency
//
// A Model is safe for concurrent readers. Import takes the write lock and
// swaps the whole node set at once; it is a stop-the-world reset and the
// view layer tears down its derived state afterwards.
package model
