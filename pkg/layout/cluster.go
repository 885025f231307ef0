package layout

// Cluster is the dendrogram strategy.
type Cluster struct{}

// Kind returns KindCluster.
func (Cluster) Kind() Kind { return KindCluster }

// Compute places leaves in consecutive slots along the bottom edge in
// depth-first order. Each parent sits at the mean x of its children, one
// level above the highest of them; the root is at the top.
func (Cluster) Compute(in Input) (Result, error) {
	h, err := buildHierarchy(in)
	if err != nil {
		return Result{}, err
	}

	xs := make(map[string]float64, len(h.depth))
	height := make(map[string]int, len(h.depth))
	slot := 0.0
	var walk func(id string)
	walk = func(id string) {
		kids := h.children[id]
		if len(kids) == 0 {
			xs[id] = slot
			slot++
			height[id] = 0
			return
		}
		sum, top := 0.0, 0
		for _, c := range kids {
			walk(c)
			sum += xs[c]
			top = max(top, height[c])
		}
		xs[id] = sum / float64(len(kids))
		height[id] = top + 1
	}
	walk(h.root)

	scaled := scaleX(xs, in.Bounds.Width)
	rootHeight := height[h.root]
	pos := make(Positions, len(xs))
	for id, x := range scaled {
		y := 0.0
		if rootHeight > 0 {
			y = (1 - float64(height[id])/float64(rootHeight)) * in.Bounds.Height
		}
		pos[id] = Point{X: x, Y: y}
	}
	return Result{Positions: pos, Links: h.links, Unplaced: h.unplaced}, nil
}
