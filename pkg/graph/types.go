package graph

// =============================================================================
// Constants
// =============================================================================

// TypeRequires is the relation type of a "source requires target" edge.
const TypeRequires = "sw:requires"

// =============================================================================
// Document - Presentation Graph
// =============================================================================

// Document is a presentation graph: the nodes and edges of one
// neighborhood, ready to bind to visual elements.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one component in a presentation graph.
type Node struct {
	ID      string         `json:"_id"`
	Caption string         `json:"caption"`
	Root    bool           `json:"root,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Edge is one relation in a presentation graph.
type Edge struct {
	Source string `json:"_source"`
	Target string `json:"_target"`
	Type   string `json:"type"`
}

// RootID returns the ID of the single root-flagged node. ok is false when
// zero or several nodes carry the flag.
func (d Document) RootID() (id string, ok bool) {
	n := 0
	for _, node := range d.Nodes {
		if node.Root {
			id = node.ID
			n++
		}
	}
	if n != 1 {
		return "", false
	}
	return id, true
}

// Node returns the node with the given ID.
func (d Document) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// =============================================================================
// Detail - Component Detail
// =============================================================================

// Detail describes one component and its direct relations.
type Detail struct {
	Label      string `json:"label"`
	Found      bool   `json:"found"`
	Caption    string `json:"caption,omitempty"`
	Requires   []Ref  `json:"requires"`
	RequiredBy []Ref  `json:"required_by"`
}

// Ref names a related component.
type Ref struct {
	Label string `json:"label"`
}
