package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/depview/pkg/render"
)

// Style defines the visual appearance of scene elements.
type Style interface {
	// RenderDefs writes <defs> and <style> content.
	RenderDefs(buf *bytes.Buffer)
	// RenderNode writes a node group translated by its transform.
	RenderNode(buf *bytes.Buffer, e render.Element)
	// RenderEdge writes an edge line.
	RenderEdge(buf *bytes.Buffer, e render.Element)
	// RenderText writes a free-standing text element.
	RenderText(buf *bytes.Buffer, e render.Element)
}

// Simple draws filled circles and solid edges.
type Simple struct{}

func (Simple) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <style>
    .link { stroke: #999; stroke-width: 1.5; }
    .node circle { fill: #4a90d9; stroke: #fff; stroke-width: 1.5; }
    .node text { font: 12px sans-serif; }
    .loading { font: 20px sans-serif; fill: #666; }
  </style>
`)
}

func (Simple) RenderNode(buf *bytes.Buffer, e render.Element) {
	renderNode(buf, e)
}

func (Simple) RenderEdge(buf *bytes.Buffer, e render.Element) {
	renderEdge(buf, e, "link")
}

func (Simple) RenderText(buf *bytes.Buffer, e render.Element) {
	renderText(buf, e)
}

// Outline draws rings and dashed edges, for printing.
type Outline struct{}

func (Outline) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <style>
    .link { stroke: #333; stroke-width: 1; stroke-dasharray: 4 3; }
    .node circle { fill: #fff; stroke: #333; stroke-width: 2; }
    .node text { font: 12px serif; }
    .loading { font: italic 20px serif; }
  </style>
`)
}

func (Outline) RenderNode(buf *bytes.Buffer, e render.Element) {
	renderNode(buf, e)
}

func (Outline) RenderEdge(buf *bytes.Buffer, e render.Element) {
	renderEdge(buf, e, "link")
}

func (Outline) RenderText(buf *bytes.Buffer, e render.Element) {
	renderText(buf, e)
}

// StyleByName returns the named style, falling back to Simple.
func StyleByName(name string) Style {
	if name == "outline" {
		return Outline{}
	}
	return Simple{}
}

func renderNode(buf *bytes.Buffer, e render.Element) {
	fmt.Fprintf(buf, `  <g class="node" id="node-%s" transform="translate(%.2f,%.2f)">`+"\n",
		escape(e.Key), e.Transform.X, e.Transform.Y)
	fmt.Fprintf(buf, `    <circle r="%.0f"/>`+"\n", e.Radius)
	fmt.Fprintf(buf, `    <text dx="%.0f" dy=".35em">%s</text>`+"\n", e.Radius, escape(e.Text))
	buf.WriteString("  </g>\n")
}

func renderEdge(buf *bytes.Buffer, e render.Element, class string) {
	fmt.Fprintf(buf, `  <line class="%s" data-source="%s" data-target="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
		class, escape(e.Source), escape(e.Target), e.Line.X1, e.Line.Y1, e.Line.X2, e.Line.Y2)
}

func renderText(buf *bytes.Buffer, e render.Element) {
	fmt.Fprintf(buf, `  <text class="loading" x="%.2f" y="%.2f" dy=".35em" text-anchor="middle">%s</text>`+"\n",
		e.Transform.X, e.Transform.Y, escape(e.Text))
}

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
