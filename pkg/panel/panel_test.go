package panel

import (
	"slices"
	"testing"

	"github.com/matzehuels/depview/pkg/graph"
	"github.com/matzehuels/depview/pkg/model"
)

func chain(t *testing.T) *model.Model {
	t.Helper()
	var g model.ExternalGraph
	g.AddNode("A", nil)
	g.AddNode("B", model.Attrs{"label": "Bee"})
	g.AddNode("C", nil)
	g.AddEdge("", "A", "B")
	g.AddEdge("", "B", "C")
	m, err := model.FromExternal(g)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestDescribe(t *testing.T) {
	m := chain(t)
	tests := []struct {
		label      string
		found      bool
		requires   []string
		requiredBy []string
	}{
		{"A", true, []string{"B"}, []string{}},
		{"B", true, []string{"C"}, []string{"A"}},
		{"C", true, []string{}, []string{"B"}},
		{"Z", false, []string{}, []string{}},
	}
	for _, tt := range tests {
		d := Describe(m, tt.label)
		if d.Name != tt.label || d.Found != tt.found {
			t.Errorf("%s: name=%q found=%v", tt.label, d.Name, d.Found)
		}
		if !slices.Equal(d.Requires, tt.requires) || !slices.Equal(d.RequiredBy, tt.requiredBy) {
			t.Errorf("%s: requires=%v required_by=%v", tt.label, d.Requires, d.RequiredBy)
		}
	}
}

func TestFromDocumentIgnoresListsWhenNotFound(t *testing.T) {
	d := FromDocument(graph.Detail{Label: "Z", Requires: []graph.Ref{{Label: "stale"}}})
	if d.Found || len(d.Requires) != 0 {
		t.Errorf("not-found detail carried data: %+v", d)
	}
}

func TestLinks(t *testing.T) {
	d := Describe(chain(t), "B")
	if got := d.Links(); !slices.Equal(got, []string{"C", "A"}) {
		t.Errorf("Links = %v", got)
	}
}

func TestFormat(t *testing.T) {
	m := chain(t)
	tests := []struct {
		label string
		want  string
	}{
		{"B", "B (Bee)\nRequires:\n  - C\nRequired by:\n  - A\n"},
		{"C", "C\nRequires:\n  none\nRequired by:\n  - B\n"},
		{"Z", "Z (unknown component)\nRequires:\n  none\nRequired by:\n  none\n"},
	}
	for _, tt := range tests {
		if got := Format(Describe(m, tt.label)); got != tt.want {
			t.Errorf("Format(%s) =\n%q\nwant\n%q", tt.label, got, tt.want)
		}
	}
}
