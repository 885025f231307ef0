package model

// BackEdges returns the relations that close a requires cycle, found by a
// depth-first walk from the roots and then from any component not yet
// visited. The graph is acyclic exactly when the result is empty.
func (m *Model) BackEdges() []Relation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	const (
		white = iota
		gray
		black
	)
	color := make(map[*Component]int, len(m.nodes))
	var back []Relation

	var visit func(c *Component)
	visit = func(c *Component) {
		color[c] = gray
		for _, dep := range c.requires {
			switch color[dep] {
			case white:
				visit(dep)
			case gray:
				back = append(back, Relation{Source: c, Target: dep})
			}
		}
		color[c] = black
	}

	for _, c := range m.nodes {
		if c.Root() && color[c] == white {
			visit(c)
		}
	}
	for _, c := range m.nodes {
		if color[c] == white {
			visit(c)
		}
	}
	return back
}
