package model

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	derrors "github.com/matzehuels/depview/pkg/errors"
)

var (
	// ErrEmptyNodeName is the cause of an import failure when a node has an
	// empty name.
	ErrEmptyNodeName = errors.New("node name must not be empty")

	// ErrDuplicateNode is the cause of an import failure when two nodes share
	// a name.
	ErrDuplicateNode = errors.New("duplicate node name")

	// ErrUnknownSourceNode is the cause of an import failure when an edge's
	// source is not a defined node.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is the cause of an import failure when an edge's
	// target is not a defined node.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrBrokenInverse is returned by Validate when requires and required_by
	// disagree.
	ErrBrokenInverse = errors.New("requires/required_by are not inverses")

	// ErrEdgeMismatch is returned by Validate when the edge list differs from
	// the edges reconstructed from requires.
	ErrEdgeMismatch = errors.New("edge list does not match requires links")
)

// Model is the canonical set of components and their relations.
//
// The zero value is an empty, usable model. Only Import mutates it.
type Model struct {
	mu         sync.RWMutex
	nodes      []*Component
	byLabel    map[string]*Component
	edges      []Relation
	generation uint64
}

// New creates an empty model.
func New() *Model { return &Model{} }

// FromExternal creates a model and imports g into it.
func FromExternal(g ExternalGraph) (*Model, error) {
	m := New()
	if err := m.Import(g); err != nil {
		return nil, err
	}
	return m, nil
}

// Import replaces the entire node and edge set with the contents of g.
//
// Every node gets a label equal to its name in g and an index equal to its
// position in g.Nodes. Each edge (s, t) appends t to s.Requires() and s to
// t.RequiredBy(); a repeated (s, t) pair is recorded once.
//
// Import fails with an IMPORT_ERROR when a node name is empty or repeated
// or when an edge references an undefined node. On failure the model keeps
// its previous contents.
func (m *Model) Import(g ExternalGraph) error {
	nodes := make([]*Component, 0, len(g.Nodes))
	byLabel := make(map[string]*Component, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.Name == "" {
			return derrors.Import(ErrEmptyNodeName, "node #%d", i)
		}
		if _, dup := byLabel[n.Name]; dup {
			return derrors.Import(ErrDuplicateNode, "node %q", n.Name)
		}
		c := &Component{label: n.Name, index: i, attrs: n.Attrs}
		nodes = append(nodes, c)
		byLabel[n.Name] = c
	}

	edges := make([]Relation, 0, len(g.Edges))
	seen := make(map[EdgeKey]bool, len(g.Edges))
	for _, e := range g.Edges {
		src, ok := byLabel[e.Source]
		if !ok {
			return derrors.Import(ErrUnknownSourceNode, "edge %q references %q", e.Name, e.Source)
		}
		dst, ok := byLabel[e.Target]
		if !ok {
			return derrors.Import(ErrUnknownTargetNode, "edge %q references %q", e.Name, e.Target)
		}
		key := EdgeKey{From: src.label, To: dst.label}
		if seen[key] {
			continue
		}
		seen[key] = true
		edges = append(edges, Relation{Source: src, Target: dst})
		src.requires = append(src.requires, dst)
		dst.requiredBy = append(dst.requiredBy, src)
	}

	m.mu.Lock()
	m.nodes, m.byLabel, m.edges = nodes, byLabel, edges
	m.generation++
	m.mu.Unlock()
	return nil
}

// Generation returns the number of successful imports. Derived state built
// from an older generation is stale.
func (m *Model) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// AllNodes returns every component in node-sequence order.
func (m *Model) AllNodes() []*Component {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.nodes)
}

// AllEdges returns every relation in import order.
func (m *Model) AllEdges() []Relation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.edges)
}

// Len returns the number of components.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// EdgeCount returns the number of relations.
func (m *Model) EdgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges)
}

// Node returns the component with the given label and true, or nil and
// false when no such component exists.
func (m *Model) Node(label string) (*Component, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byLabel[label]
	return c, ok
}

// Roots returns components no other component requires, in node order.
func (m *Model) Roots() []*Component {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var roots []*Component
	for _, c := range m.nodes {
		if c.Root() {
			roots = append(roots, c)
		}
	}
	return roots
}

// ReconstructEdges derives the edge list from the requires links, walking
// nodes in order.
func (m *Model) ReconstructEdges() []Relation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Relation
	for _, c := range m.nodes {
		for _, t := range c.requires {
			out = append(out, Relation{Source: c, Target: t})
		}
	}
	return out
}

// Export converts the model back into an ExternalGraph. Importing the
// result yields an equivalent model.
func (m *Model) Export() ExternalGraph {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g := ExternalGraph{
		Nodes: make([]NodeEntry, 0, len(m.nodes)),
		Edges: make([]EdgeEntry, 0, len(m.edges)),
	}
	for _, c := range m.nodes {
		g.AddNode(c.label, c.Attrs())
	}
	for _, e := range m.edges {
		g.AddEdge(fmt.Sprintf("%s -> %s", e.Source.label, e.Target.label), e.Source.label, e.Target.label)
	}
	return g
}

// Validate checks the inverse and round-trip invariants.
func (m *Model) Validate() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.nodes {
		if m.byLabel[c.label] != c {
			return fmt.Errorf("%w: %q", ErrDuplicateNode, c.label)
		}
		for _, t := range c.requires {
			if !slices.Contains(t.requiredBy, c) {
				return fmt.Errorf("%w: %s requires %s", ErrBrokenInverse, c.label, t.label)
			}
		}
		for _, s := range c.requiredBy {
			if !slices.Contains(s.requires, c) {
				return fmt.Errorf("%w: %s required by %s", ErrBrokenInverse, c.label, s.label)
			}
		}
	}

	want := make(map[EdgeKey]int, len(m.edges))
	for _, e := range m.edges {
		want[e.Key()]++
	}
	n := 0
	for _, c := range m.nodes {
		for _, t := range c.requires {
			k := EdgeKey{From: c.label, To: t.label}
			if want[k] == 0 {
				return fmt.Errorf("%w: %s -> %s missing from edges", ErrEdgeMismatch, k.From, k.To)
			}
			want[k]--
			n++
		}
	}
	if n != len(m.edges) {
		return fmt.Errorf("%w: %d edges, %d requires links", ErrEdgeMismatch, len(m.edges), n)
	}
	return nil
}
