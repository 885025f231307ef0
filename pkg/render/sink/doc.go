// Package sink serializes a render scene.
//
// [RenderSVG] writes a snapshot of a [render.Scene] as a standalone SVG
// document. Everything is drawn inside a margin group so glyphs at the
// canvas edge are not clipped; node groups are translated by their
// transform and draw their circle and caption around the local origin,
// exactly as the live surface does.
//
//	svg := sink.RenderSVG(scene, sink.WithStyle(sink.Outline{}))
//
// Styles implement [Style]. [Simple] fills nodes; [Outline] draws rings
// and dashed edges.
package sink
