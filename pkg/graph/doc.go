// Package graph provides the wire documents exchanged between the backend
// and the view layer.
//
// # Documents
//
//   - [Document]: a presentation graph, the response to a neighborhood
//     fetch. Nodes carry `_id`, `caption` and an optional `root` flag;
//     edges carry `_source`, `_target` and a relation `type`.
//   - [Detail]: the response to a component detail fetch, with the
//     component's direct requires and required-by lists.
//
// Both are built from a [model.Model] on the serving side ([Present],
// [Describe]) and decoded on the consuming side ([ReadDocument],
// [ReadDetail]).
//
// # Not Found
//
// An unknown label is not a transport failure. [Describe] returns a Detail
// with Found == false, and the server sends it with a 404 status; the
// client decodes it like any other detail.
//
// # Constants
//
// [TypeRequires] is the only relation type the model produces:
//
//	graph.TypeRequires // "sw:requires"
package graph
