package layout

// Tree is the tidy layered tree strategy.
type Tree struct{}

// Kind returns KindTree.
func (Tree) Kind() Kind { return KindTree }

// Compute places the hierarchy spanned from the single root. y grows with
// depth; x packs sibling subtrees as tightly as their contours allow with
// one slot between neighbours, and centres each parent over its first and
// last child.
func (Tree) Compute(in Input) (Result, error) {
	h, err := buildHierarchy(in)
	if err != nil {
		return Result{}, err
	}

	xs := make(map[string]float64, len(h.depth))
	tidy(h, h.root, xs)
	// tidy leaves each subtree relative to its own root; resolve offsets.
	abs := make(map[string]float64, len(xs))
	var place func(id string, offset float64)
	place = func(id string, offset float64) {
		abs[id] = xs[id] + offset
		for _, c := range h.children[id] {
			place(c, abs[id])
		}
	}
	place(h.root, 0)

	scaled := scaleX(abs, in.Bounds.Width)
	maxDepth := h.maxDepth()
	pos := make(Positions, len(abs))
	for id, x := range scaled {
		y := 0.0
		if maxDepth > 0 {
			y = float64(h.depth[id]) / float64(maxDepth) * in.Bounds.Height
		}
		pos[id] = Point{X: x, Y: y}
	}
	return Result{Positions: pos, Links: h.links, Unplaced: h.unplaced}, nil
}

// contour records the leftmost and rightmost x of a subtree per depth
// level below its root, relative to the root.
type contour struct {
	left  []float64
	right []float64
}

// tidy lays out the subtree at id. It stores each child's x relative to
// its parent in xs and returns the subtree contour relative to id.
func tidy(h *hierarchy, id string, xs map[string]float64) contour {
	kids := h.children[id]
	if len(kids) == 0 {
		xs[id] = 0
		return contour{left: []float64{0}, right: []float64{0}}
	}

	// Place child subtrees left to right, each shifted just far enough to
	// clear the accumulated right contour.
	offsets := make([]float64, len(kids))
	var acc contour
	for i, c := range kids {
		sub := tidy(h, c, xs)
		if i == 0 {
			acc = sub
			continue
		}
		shift := 0.0
		for lvl := 0; lvl < len(sub.left) && lvl < len(acc.right); lvl++ {
			if need := acc.right[lvl] - sub.left[lvl] + 1; need > shift {
				shift = need
			}
		}
		offsets[i] = shift
		acc = merge(acc, sub, shift)
	}

	mid := (offsets[0] + offsets[len(kids)-1]) / 2
	for i, c := range kids {
		xs[c] = offsets[i] - mid
	}

	out := contour{left: []float64{0}, right: []float64{0}}
	for lvl := range acc.left {
		out.left = append(out.left, acc.left[lvl]-mid)
		out.right = append(out.right, acc.right[lvl]-mid)
	}
	return out
}

// merge combines acc with sub shifted right by shift.
func merge(acc, sub contour, shift float64) contour {
	n := max(len(acc.left), len(sub.left))
	out := contour{left: make([]float64, n), right: make([]float64, n)}
	for lvl := 0; lvl < n; lvl++ {
		switch {
		case lvl < len(acc.left) && lvl < len(sub.left):
			out.left[lvl] = acc.left[lvl]
			out.right[lvl] = sub.right[lvl] + shift
		case lvl < len(acc.left):
			out.left[lvl] = acc.left[lvl]
			out.right[lvl] = acc.right[lvl]
		default:
			out.left[lvl] = sub.left[lvl] + shift
			out.right[lvl] = sub.right[lvl] + shift
		}
	}
	return out
}
