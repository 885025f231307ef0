// Package layout computes 2D positions for a subset of the component graph.
//
// # Strategies
//
// Three strategies implement [Strategy], selected by [Kind]:
//
//   - [KindForce]: a damped physics simulation (all-pairs repulsion, springs
//     along edges, a pull toward the canvas center) run for a fixed number
//     of steps. Nodes without a prior position start at the canvas center;
//     nodes with one start there.
//   - [KindTree]: a tidy layered tree. Depth maps to y; subtrees are packed
//     left to right without overlap and parents sit centered over their
//     children.
//   - [KindCluster]: a dendrogram. All leaves share the bottom row and each
//     parent sits one level above its highest child, at the mean x of its
//     children.
//
// Tree and Cluster need exactly one node flagged Root in the input and fail
// with a LAYOUT_ERROR otherwise. Children are taken from the edges in the
// input according to a [Direction]: edge targets for DirRequires, edge
// sources for DirRequiredBy. Each node is placed once under the first parent
// that reaches it breadth-first; nodes the root cannot reach are reported
// in [Result.Unplaced] and get no position.
//
// # Side Tables
//
// Strategies never touch model components. Input is a plain description
// of nodes and edges and the output is a [Positions] map keyed by node ID.
//
// # Stepping
//
// [Force.Compute] runs the whole step budget at once. Callers that animate
// use [Simulation] directly: [Simulation.Init] builds the starting
// [State] and [Simulation.Step] is a pure state transition, so the driver
// decides when to yield between steps.
//
// # Degraded Mode
//
// [SelectDirection] maps neighborhood bounds to a Direction for the rooted
// strategies. Asking for both directions at once is allowed but degraded:
// requires wins and the caller should warn the user.
package layout
