package sink

import (
	"strings"
	"testing"

	"github.com/matzehuels/depview/pkg/layout"
	"github.com/matzehuels/depview/pkg/render"
)

func testScene() *render.Scene {
	scene := render.NewScene(render.Canvas{Width: 200, Height: 100, NodeRadius: 10})
	b := render.NewBinder(scene)
	b.Bind(
		[]render.NodeDatum{{ID: "a", Caption: "A & co"}, {ID: "b", Caption: "B"}},
		[]render.EdgeDatum{{Source: "a", Target: "b"}},
	)
	b.Reposition(layout.Positions{"a": {X: 10, Y: 20}, "b": {X: 30, Y: 40}})
	scene.ShowText("loading", "Loading a", scene.Canvas().Center())
	return scene
}

func TestRenderSVG(t *testing.T) {
	out := string(RenderSVG(testScene()))

	for _, want := range []string{
		`viewBox="0 0 200.0 100.0"`,
		`<g transform="translate(12,12)">`,
		`<g class="node" id="node-a" transform="translate(10.00,20.00)">`,
		`<circle r="10"/>`,
		`A &amp; co`,
		`x1="10.00" y1="20.00" x2="30.00" y2="40.00"`,
		`Loading a`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q\n%s", want, out)
		}
	}
	if strings.Index(out, "<line") > strings.Index(out, `class="node"`) {
		t.Error("edges should be drawn beneath nodes")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	out := string(RenderSVG(testScene(), WithStyle(Outline{}), WithoutText()))
	if strings.Contains(out, "Loading a") {
		t.Error("WithoutText kept the loading text")
	}
	if !strings.Contains(out, "stroke-dasharray") {
		t.Error("Outline style not applied")
	}
}

func TestStyleByName(t *testing.T) {
	if _, ok := StyleByName("outline").(Outline); !ok {
		t.Error("outline")
	}
	if _, ok := StyleByName("anything").(Simple); !ok {
		t.Error("fallback")
	}
}
