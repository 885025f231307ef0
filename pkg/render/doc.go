// Package render keeps a retained visual scene in sync with the visible
// part of the component graph.
//
// # Overview
//
// A [Scene] is the vector surface: a set of node glyphs, edge lines and
// free-standing text elements, each with a stable [uuid.UUID]. A [Binder]
// maps entity identity (component label for nodes, source/target pair for
// edges) to scene elements and reconciles that mapping on every update:
//
//	b := render.NewBinder(scene)
//	diff := b.Bind(nodes, edges)   // create / keep / remove
//	b.Reposition(result.Positions) // move everything into place
//
// # Object Constancy
//
// Elements whose entity stays visible across Bind calls are kept, not
// recreated, so a UI animating transforms never sees them jump. New node
// elements are created with their geometry built around the local origin
// and a (0,0) transform; only the transform changes afterwards. Edge
// elements are recreated whenever one of their endpoint nodes enters or
// leaves.
//
// # Operations
//
// Every mutation is published as an [Op]. Subscribers (the websocket
// stream, tests) observe the scene as a change log. Reposition emits ops
// only for values that actually change, so repeating it with the same
// positions is a no-op.
//
// # Output
//
// [sink.RenderSVG] serializes a scene snapshot to SVG.
//
// [sink.RenderSVG]: github.com/matzehuels/depview/pkg/render/sink.RenderSVG
package render
