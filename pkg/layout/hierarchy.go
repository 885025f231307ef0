package layout

import derrors "github.com/matzehuels/depview/pkg/errors"

// hierarchy is the spanning tree a rooted layout places.
type hierarchy struct {
	root     string
	order    []string // breadth-first
	children map[string][]string
	depth    map[string]int
	links    []Edge
	unplaced []string
}

// findRoot returns the single root-flagged node ID.
func findRoot(nodes []Node) (string, error) {
	var roots []string
	for _, n := range nodes {
		if n.Root {
			roots = append(roots, n.ID)
		}
	}
	switch len(roots) {
	case 0:
		return "", derrors.Layout(ErrNoRoot, "rooted layout needs exactly one root, found none among %d nodes", len(nodes))
	case 1:
		return roots[0], nil
	default:
		return "", derrors.Layout(ErrMultipleRoots, "rooted layout needs exactly one root, found %d: %v", len(roots), roots)
	}
}

// buildHierarchy checks the root precondition and spans the input from the
// root along dir. Children keep edge order; the first parent to reach a
// node breadth-first keeps it, which also breaks cycles.
func buildHierarchy(in Input) (*hierarchy, error) {
	root, err := findRoot(in.Nodes)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(in.Nodes))
	for _, n := range in.Nodes {
		present[n.ID] = true
	}

	adj := make(map[string][]string)
	if dir := in.Direction; dir != DirNone {
		for _, e := range in.Edges {
			if !present[e.From] || !present[e.To] {
				continue
			}
			if dir == DirRequires {
				adj[e.From] = append(adj[e.From], e.To)
			} else {
				adj[e.To] = append(adj[e.To], e.From)
			}
		}
	}

	h := &hierarchy{
		root:     root,
		children: make(map[string][]string),
		depth:    map[string]int{root: 0},
	}
	queue := []string{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		h.order = append(h.order, id)
		for _, c := range adj[id] {
			if _, seen := h.depth[c]; seen {
				continue
			}
			h.depth[c] = h.depth[id] + 1
			h.children[id] = append(h.children[id], c)
			if in.Direction == DirRequires {
				h.links = append(h.links, Edge{From: id, To: c})
			} else {
				h.links = append(h.links, Edge{From: c, To: id})
			}
			queue = append(queue, c)
		}
	}

	for _, n := range in.Nodes {
		if _, placed := h.depth[n.ID]; !placed {
			h.unplaced = append(h.unplaced, n.ID)
		}
	}
	return h, nil
}

func (h *hierarchy) maxDepth() int {
	m := 0
	for _, d := range h.depth {
		if d > m {
			m = d
		}
	}
	return m
}

// scaleX maps abstract x coordinates onto [0, width], keeping half a slot
// of margin on either side.
func scaleX(xs map[string]float64, width float64) map[string]float64 {
	lo, hi := 0.0, 0.0
	first := true
	for _, x := range xs {
		if first || x < lo {
			lo = x
		}
		if first || x > hi {
			hi = x
		}
		first = false
	}
	out := make(map[string]float64, len(xs))
	span := hi - lo + 1
	for id, x := range xs {
		out[id] = (x - lo + 0.5) / span * width
	}
	return out
}
