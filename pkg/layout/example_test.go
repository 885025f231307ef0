package layout_test

import (
	"fmt"

	"github.com/matzehuels/depview/pkg/layout"
)

func ExampleTree() {
	in := layout.Input{
		Nodes:     []layout.Node{{ID: "A", Root: true}, {ID: "B"}, {ID: "C"}},
		Edges:     []layout.Edge{{From: "A", To: "B"}, {From: "B", To: "C"}},
		Bounds:    layout.Bounds{Width: 200, Height: 100},
		Direction: layout.DirRequires,
	}
	res, _ := layout.Tree{}.Compute(in)
	for _, id := range []string{"A", "B", "C"} {
		fmt.Println(id, res.Positions[id])
	}
	// Output:
	// A {100 0}
	// B {100 50}
	// C {100 100}
}

func ExampleSelectDirection() {
	dir, degraded := layout.SelectDirection(2, 1)
	fmt.Println(dir, degraded)
	if degraded {
		fmt.Println(layout.DegradedWarning(layout.KindCluster))
	}
	// Output:
	// requires true
	// cannot show both 'requires' and 'required-by' when cluster layout is used
}
