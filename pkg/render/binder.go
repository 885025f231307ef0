package render

import (
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/depview/pkg/layout"
)

// NodeDatum is a visible component to bind.
type NodeDatum struct {
	ID      string
	Caption string
}

// EdgeDatum is a visible relation to bind.
type EdgeDatum struct {
	Source string
	Target string
}

type edgeKey struct{ source, target string }

// Diff reports what one Bind call did, by node label and edge count.
type Diff struct {
	Created []string
	Kept    []string
	Removed []string

	EdgesCreated int
	EdgesKept    int
	EdgesRemoved int
}

// Empty reports whether the bind changed nothing.
func (d Diff) Empty() bool {
	return len(d.Created) == 0 && len(d.Removed) == 0 && d.EdgesCreated == 0 && d.EdgesRemoved == 0
}

// Binder keeps the identity mapping from graph entities to scene elements.
// It is not safe for concurrent use; the view controller drives it from a
// single goroutine.
type Binder struct {
	scene *Scene
	nodes map[string]uuid.UUID
	edges map[edgeKey]uuid.UUID
}

// NewBinder creates a binder drawing into scene.
func NewBinder(scene *Scene) *Binder {
	return &Binder{
		scene: scene,
		nodes: make(map[string]uuid.UUID),
		edges: make(map[edgeKey]uuid.UUID),
	}
}

// Scene returns the scene the binder draws into.
func (b *Binder) Scene() *Scene { return b.scene }

// NodeElement returns the element bound to the component label.
func (b *Binder) NodeElement(label string) (uuid.UUID, bool) {
	id, ok := b.nodes[label]
	return id, ok
}

// EdgeElement returns the element bound to the relation source -> target.
func (b *Binder) EdgeElement(source, target string) (uuid.UUID, bool) {
	id, ok := b.edges[edgeKey{source, target}]
	return id, ok
}

// Bound returns the number of bound nodes and edges.
func (b *Binder) Bound() (nodes, edges int) { return len(b.nodes), len(b.edges) }

// Bind reconciles the scene with a new visible set.
//
// Node elements for labels no longer visible are removed, those still
// visible are kept as they are, and new labels get a fresh element at
// (0,0). Edge elements are matched by (source, target) but are also
// recreated when either endpoint node entered or left in this pass. Edges
// whose endpoints are not both visible are not drawn. Duplicate nodes or
// edges in the input are bound once.
func (b *Binder) Bind(nodes []NodeDatum, edges []EdgeDatum) Diff {
	var d Diff

	visible := make(map[string]NodeDatum, len(nodes))
	for _, n := range nodes {
		if _, dup := visible[n.ID]; !dup {
			visible[n.ID] = n
		}
	}
	changed := make(map[string]bool)

	for label, id := range b.nodes {
		if _, ok := visible[label]; !ok {
			b.scene.Remove(id)
			delete(b.nodes, label)
			changed[label] = true
			d.Removed = append(d.Removed, label)
		}
	}
	slices.Sort(d.Removed)

	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		if id, ok := b.nodes[n.ID]; ok {
			b.scene.SetText(id, n.Caption)
			d.Kept = append(d.Kept, n.ID)
			continue
		}
		b.nodes[n.ID] = b.scene.addNode(n.ID, n.Caption)
		changed[n.ID] = true
		d.Created = append(d.Created, n.ID)
	}

	wanted := make(map[edgeKey]bool, len(edges))
	for _, e := range edges {
		if _, ok := visible[e.Source]; !ok {
			continue
		}
		if _, ok := visible[e.Target]; !ok {
			continue
		}
		wanted[edgeKey{e.Source, e.Target}] = true
	}

	for k, id := range b.edges {
		if !wanted[k] || changed[k.source] || changed[k.target] {
			b.scene.Remove(id)
			delete(b.edges, k)
			d.EdgesRemoved++
		}
	}

	for _, e := range edges {
		k := edgeKey{e.Source, e.Target}
		if !wanted[k] {
			continue
		}
		if _, ok := b.edges[k]; ok {
			if !changed[k.source] && !changed[k.target] {
				d.EdgesKept++
			}
			continue
		}
		b.edges[k] = b.scene.addEdge(k.source, k.target, b.line(k))
		d.EdgesCreated++
	}
	return d
}

// line draws an edge between the current transforms of its endpoints.
func (b *Binder) line(k edgeKey) Line {
	var from, to layout.Point
	if e, ok := b.scene.Element(b.nodes[k.source]); ok {
		from = e.Transform
	}
	if e, ok := b.scene.Element(b.nodes[k.target]); ok {
		to = e.Transform
	}
	return Line{X1: from.X, Y1: from.Y, X2: to.X, Y2: to.Y}
}

// Reposition writes positions to node transforms and edge endpoints.
// Nodes without a position keep their transform. It returns the number of
// elements that changed; a second call with the same positions returns 0.
func (b *Binder) Reposition(pos layout.Positions) int {
	changed := 0
	for label, id := range b.nodes {
		if p, ok := pos[label]; ok && b.scene.SetTransform(id, p) {
			changed++
		}
	}
	for k, id := range b.edges {
		from, okF := pos[k.source]
		to, okT := pos[k.target]
		if !okF || !okT {
			continue
		}
		if b.scene.SetLine(id, Line{X1: from.X, Y1: from.Y, X2: to.X, Y2: to.Y}) {
			changed++
		}
	}
	return changed
}

// Reset removes every bound element and forgets all bindings.
func (b *Binder) Reset() {
	for label, id := range b.nodes {
		b.scene.Remove(id)
		delete(b.nodes, label)
	}
	for k, id := range b.edges {
		b.scene.Remove(id)
		delete(b.edges, k)
	}
}
