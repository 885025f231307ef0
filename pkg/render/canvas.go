package render

import "github.com/matzehuels/depview/pkg/layout"

// DefaultNodeRadius is the radius of a node glyph.
const DefaultNodeRadius = 20

// Canvas describes the drawing surface.
type Canvas struct {
	Width      float64
	Height     float64
	NodeRadius float64
}

// DefaultCanvas returns an 960x600 canvas with the default node radius.
func DefaultCanvas() Canvas {
	return Canvas{Width: 960, Height: 600, NodeRadius: DefaultNodeRadius}
}

// Margin is the inset keeping glyphs at the edge from being clipped.
func (c Canvas) Margin() float64 { return c.radius() + 2 }

// Inner returns the layout bounds inside the margin.
func (c Canvas) Inner() layout.Bounds {
	m := c.Margin()
	return layout.Bounds{
		Width:  max(0, c.Width-2*m),
		Height: max(0, c.Height-2*m),
	}
}

// Center returns the center of the inner bounds.
func (c Canvas) Center() layout.Point { return c.Inner().Center() }

func (c Canvas) radius() float64 {
	if c.NodeRadius <= 0 {
		return DefaultNodeRadius
	}
	return c.NodeRadius
}
