package layout

import (
	"math"
	"testing"
)

func TestSimulationInit(t *testing.T) {
	in := chainInput("")
	sim := NewSimulation(in, DefaultParams())
	st := sim.Init(Positions{"B": {X: 10, Y: 20}})

	pos := sim.Positions(st)
	if pos["B"] != (Point{10, 20}) {
		t.Errorf("prior position lost: %v", pos["B"])
	}
	for _, id := range []string{"A", "C"} {
		if pos[id] != canvas.Center() {
			t.Errorf("%s starts at %v, want center", id, pos[id])
		}
	}
	if st.Step != 0 || st.Alpha != DefaultParams().Alpha {
		t.Errorf("initial state = step %d alpha %v", st.Step, st.Alpha)
	}
}

func TestSimulationStepIsPure(t *testing.T) {
	sim := NewSimulation(chainInput(""), DefaultParams())
	st := sim.Init(nil)
	before := append([]Point(nil), st.Pos...)

	next := sim.Step(st)
	for i := range before {
		if st.Pos[i] != before[i] {
			t.Fatal("Step mutated its input state")
		}
	}
	if next.Step != 1 {
		t.Errorf("Step = %d, want 1", next.Step)
	}
	if next.Alpha >= st.Alpha {
		t.Error("alpha did not decay")
	}

	again := sim.Step(st)
	for i := range next.Pos {
		if next.Pos[i] != again.Pos[i] {
			t.Error("Step is not deterministic")
		}
	}
}

func TestForceSeparatesCoincidentNodes(t *testing.T) {
	res, err := (&Force{Steps: 50}).Compute(chainInput(""))
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps != 50 {
		t.Errorf("Steps = %d, want 50", res.Steps)
	}
	p := res.Positions
	for _, pair := range [][2]string{{"A", "B"}, {"B", "C"}, {"A", "C"}} {
		if d := p[pair[0]].Sub(p[pair[1]]).Len(); d < 1 {
			t.Errorf("%s and %s still coincide (%.3f)", pair[0], pair[1], d)
		}
	}
	for id, pt := range p {
		if !canvas.Contains(pt) || math.IsNaN(pt.X) || math.IsNaN(pt.Y) {
			t.Errorf("%s at %v", id, pt)
		}
	}
	if len(res.Links) != 2 {
		t.Errorf("links = %d", len(res.Links))
	}
}

func TestForceDefaultStepBudget(t *testing.T) {
	res, _ := (&Force{}).Compute(chainInput(""))
	if res.Steps != DefaultSteps {
		t.Errorf("Steps = %d, want %d", res.Steps, DefaultSteps)
	}
}

func TestForceIgnoresForeignEdges(t *testing.T) {
	in := chainInput("")
	in.Edges = append(in.Edges, Edge{From: "A", To: "elsewhere"})
	sim := NewSimulation(in, DefaultParams())
	if len(sim.Edges()) != 2 {
		t.Errorf("edges = %d, want 2", len(sim.Edges()))
	}
}

func TestForceKeepsSettledLayoutStable(t *testing.T) {
	f := &Force{Steps: 300}
	first, _ := f.Compute(chainInput(""))

	in := chainInput("")
	in.Prior = first.Positions
	second, _ := f.Compute(in)

	for id, p := range first.Positions {
		if d := second.Positions[id].Sub(p).Len(); d > 50 {
			t.Errorf("%s jumped %.1fpx when restarting from its prior position", id, d)
		}
	}
}
