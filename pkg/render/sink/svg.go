package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/depview/pkg/render"
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style    Style
	showText bool
}

func WithStyle(s Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithoutText omits free-standing text such as the loading indicator.
func WithoutText() SVGOption { return func(r *svgRenderer) { r.showText = false } }

// RenderSVG writes the current scene as an SVG document. Edges are drawn
// beneath nodes.
func RenderSVG(scene *render.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{style: Simple{}, showText: true}
	for _, opt := range opts {
		opt(&r)
	}

	c := scene.Canvas()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		c.Width, c.Height, c.Width, c.Height)
	r.style.RenderDefs(&buf)
	fmt.Fprintf(&buf, `  <g transform="translate(%.0f,%.0f)">`+"\n", c.Margin(), c.Margin())

	for _, e := range scene.Elements() {
		switch e.Kind {
		case render.KindEdge:
			r.style.RenderEdge(&buf, e)
		case render.KindNode:
			r.style.RenderNode(&buf, e)
		case render.KindText:
			if r.showText {
				r.style.RenderText(&buf, e)
			}
		}
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}
