package model

// Neighborhood is a bounded-hop subgraph around a focus component.
type Neighborhood struct {
	Focus *Component
	// Nodes holds the focus and every component within reach, deduplicated
	// by label, in model node order.
	Nodes []*Component
	// Edges holds every model relation whose endpoints are both in Nodes.
	Edges []Relation
	// Depth maps each label to the fewest hops from the focus along the
	// direction(s) that reached it. The focus has depth 0.
	Depth map[string]int
}

// Len returns the number of components in the neighborhood.
func (n Neighborhood) Len() int { return len(n.Nodes) }

// Contains reports whether label is part of the neighborhood.
func (n Neighborhood) Contains(label string) bool {
	_, ok := n.Depth[label]
	return ok
}

// ByLabel returns the neighborhood as a label-keyed map.
func (n Neighborhood) ByLabel() map[string]*Component {
	out := make(map[string]*Component, len(n.Nodes))
	for _, c := range n.Nodes {
		out[c.label] = c
	}
	return out
}

// Neighborhood expands breadth-first from focus, following requires links
// up to maxRequires hops and required_by links up to maxRequiredBy hops,
// and returns the union of both expansions with the focus itself.
//
// Negative bounds are treated as zero. With both bounds zero the result is
// just the focus. ok is false when focus is not a known label.
func (m *Model) Neighborhood(focus string, maxRequires, maxRequiredBy int) (Neighborhood, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start, ok := m.byLabel[focus]
	if !ok {
		return Neighborhood{}, false
	}

	depth := map[string]int{start.label: 0}
	expand(start, maxRequires, func(c *Component) []*Component { return c.requires }, depth)
	expand(start, maxRequiredBy, func(c *Component) []*Component { return c.requiredBy }, depth)

	nb := Neighborhood{Focus: start, Depth: depth}
	for _, c := range m.nodes {
		if _, in := depth[c.label]; in {
			nb.Nodes = append(nb.Nodes, c)
		}
	}
	for _, e := range m.edges {
		_, s := depth[e.Source.label]
		_, t := depth[e.Target.label]
		if s && t {
			nb.Edges = append(nb.Edges, e)
		}
	}
	return nb, true
}

// expand runs one directional BFS, recording the smallest hop count per
// label into depth.
func expand(start *Component, limit int, next func(*Component) []*Component, depth map[string]int) {
	if limit <= 0 {
		return
	}
	visited := map[string]bool{start.label: true}
	frontier := []*Component{start}
	for hop := 1; hop <= limit && len(frontier) > 0; hop++ {
		var following []*Component
		for _, c := range frontier {
			for _, n := range next(c) {
				if visited[n.label] {
					continue
				}
				visited[n.label] = true
				following = append(following, n)
				if d, ok := depth[n.label]; !ok || hop < d {
					depth[n.label] = hop
				}
			}
		}
		frontier = following
	}
}

// Subgraph returns the relations whose endpoints are both in labels, in
// import order.
func (m *Model) Subgraph(labels map[string]bool) []Relation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Relation
	for _, e := range m.edges {
		if labels[e.Source.label] && labels[e.Target.label] {
			out = append(out, e)
		}
	}
	return out
}
