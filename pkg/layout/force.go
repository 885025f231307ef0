package layout

import (
	"math"
	"slices"
)

// DefaultSteps is the force simulation step budget.
const DefaultSteps = 300

// Params tunes the force simulation.
type Params struct {
	// Charge scales the all-pairs repulsion. Displacement per step is
	// alpha*Charge/distance.
	Charge float64
	// LinkDistance is the rest length of edge springs.
	LinkDistance float64
	// LinkStrength scales spring correction.
	LinkStrength float64
	// Gravity scales the pull toward the canvas center.
	Gravity float64
	// Friction is the fraction of velocity kept each step.
	Friction float64
	// Alpha is the starting temperature; every force is scaled by it.
	Alpha float64
	// AlphaDecay is the per-step multiplier applied to alpha.
	AlphaDecay float64
}

// DefaultParams returns parameters tuned for a few dozen nodes.
func DefaultParams() Params {
	return Params{
		Charge:       400,
		LinkDistance: 60,
		LinkStrength: 1,
		Gravity:      0.1,
		Friction:     0.9,
		Alpha:        0.1,
		AlphaDecay:   0.99,
	}
}

// State is a snapshot of the simulation. Pos and Vel are indexed like the
// simulation's node IDs.
type State struct {
	Pos   []Point
	Vel   []Point
	Alpha float64
	Step  int
}

// Simulation holds the fixed inputs of a force layout: node order, edge
// springs and canvas. It carries no mutable state; every step takes a State
// and returns a new one.
type Simulation struct {
	params Params
	bounds Bounds
	ids    []string
	index  map[string]int
	links  [][2]int
	edges  []Edge
}

// NewSimulation prepares a simulation over in's nodes and the edges whose
// endpoints are both present.
func NewSimulation(in Input, p Params) *Simulation {
	s := &Simulation{
		params: p,
		bounds: in.Bounds,
		ids:    make([]string, 0, len(in.Nodes)),
		index:  make(map[string]int, len(in.Nodes)),
	}
	for _, n := range in.Nodes {
		if _, dup := s.index[n.ID]; dup {
			continue
		}
		s.index[n.ID] = len(s.ids)
		s.ids = append(s.ids, n.ID)
	}
	for _, e := range in.Edges {
		a, okA := s.index[e.From]
		b, okB := s.index[e.To]
		if !okA || !okB {
			continue
		}
		s.links = append(s.links, [2]int{a, b})
		s.edges = append(s.edges, e)
	}
	return s
}

// IDs returns the node IDs in state index order.
func (s *Simulation) IDs() []string { return slices.Clone(s.ids) }

// Edges returns the edges the simulation springs act on.
func (s *Simulation) Edges() []Edge { return slices.Clone(s.edges) }

// Init returns the starting state: nodes in prior keep their position,
// every other node starts at the canvas center. Velocities are zero.
func (s *Simulation) Init(prior Positions) State {
	st := State{
		Pos:   make([]Point, len(s.ids)),
		Vel:   make([]Point, len(s.ids)),
		Alpha: s.params.Alpha,
	}
	center := s.bounds.Center()
	for i, id := range s.ids {
		if p, ok := prior[id]; ok {
			st.Pos[i] = p
		} else {
			st.Pos[i] = center
		}
	}
	return st
}

// Step advances st by one tick and returns the new state. st is not
// modified.
func (s *Simulation) Step(st State) State {
	n := len(s.ids)
	pos := slices.Clone(st.Pos)
	vel := slices.Clone(st.Vel)
	alpha := st.Alpha
	p := s.params

	// Springs pull linked nodes toward the rest length, split evenly.
	for _, l := range s.links {
		a, b := l[0], l[1]
		if a == b {
			continue
		}
		d := pos[b].Sub(pos[a])
		dist := d.Len()
		if dist == 0 {
			continue
		}
		k := alpha * p.LinkStrength * (dist - p.LinkDistance) / dist * 0.5
		vel[a] = vel[a].Add(d.Scale(k))
		vel[b] = vel[b].Sub(d.Scale(k))
	}

	center := s.bounds.Center()
	for i := 0; i < n; i++ {
		vel[i] = vel[i].Add(center.Sub(pos[i]).Scale(alpha * p.Gravity))
	}

	// All-pairs repulsion. Coincident nodes are pushed apart along a
	// fixed, pair-dependent direction so results stay deterministic.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := pos[j].Sub(pos[i])
			l2 := d.X*d.X + d.Y*d.Y
			if l2 < 1e-9 {
				d = separation(i, j)
				l2 = 1
			}
			k := alpha * p.Charge / l2
			vel[i] = vel[i].Sub(d.Scale(k))
			vel[j] = vel[j].Add(d.Scale(k))
		}
	}

	for i := 0; i < n; i++ {
		vel[i] = vel[i].Scale(p.Friction)
		pos[i] = s.bounds.clamp(pos[i].Add(vel[i]))
	}

	return State{Pos: pos, Vel: vel, Alpha: alpha * p.AlphaDecay, Step: st.Step + 1}
}

// separation returns a unit vector for the coincident pair (i, j), spread
// around the circle by the golden angle.
func separation(i, j int) Point {
	const golden = 2.399963229728653
	a := golden * float64(i*31+j)
	return Point{math.Cos(a), math.Sin(a)}
}

// Positions converts st into a Positions side table.
func (s *Simulation) Positions(st State) Positions {
	out := make(Positions, len(s.ids))
	for i, id := range s.ids {
		out[id] = st.Pos[i]
	}
	return out
}

// Force is the force-directed strategy.
type Force struct {
	Steps  int
	Params Params
}

// Kind returns KindForce.
func (f *Force) Kind() Kind { return KindForce }

// Compute runs the simulation for the full step budget.
func (f *Force) Compute(in Input) (Result, error) {
	steps := f.Steps
	if steps <= 0 {
		steps = DefaultSteps
	}
	params := f.Params
	if params == (Params{}) {
		params = DefaultParams()
	}

	sim := NewSimulation(in, params)
	st := sim.Init(in.Prior)
	for st.Step < steps {
		st = sim.Step(st)
	}
	return Result{
		Positions: sim.Positions(st),
		Links:     sim.Edges(),
		Steps:     st.Step,
	}, nil
}
