package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"

	derrors "github.com/matzehuels/depview/pkg/errors"
)

var (
	// ErrNoRoot is the cause of a layout failure when no input node is
	// flagged as root.
	ErrNoRoot = errors.New("no root node")

	// ErrMultipleRoots is the cause of a layout failure when more than one
	// input node is flagged as root.
	ErrMultipleRoots = errors.New("multiple root nodes")
)

// =============================================================================
// Geometry
// =============================================================================

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p * k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the Euclidean length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Positions maps node IDs to canvas positions.
type Positions map[string]Point

// Clone returns a copy of p.
func (p Positions) Clone() Positions {
	out := make(Positions, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Bounds is the drawable canvas size.
type Bounds struct {
	Width  float64
	Height float64
}

// Center returns the middle of the canvas.
func (b Bounds) Center() Point { return Point{b.Width / 2, b.Height / 2} }

// Contains reports whether p lies inside the canvas.
func (b Bounds) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= b.Width && p.Y <= b.Height
}

func (b Bounds) clamp(p Point) Point {
	return Point{
		X: math.Max(0, math.Min(b.Width, p.X)),
		Y: math.Max(0, math.Min(b.Height, p.Y)),
	}
}

// =============================================================================
// Input and Result
// =============================================================================

// Node is one node to lay out.
type Node struct {
	ID   string
	Root bool
}

// Edge is a "From requires To" relation between two input nodes.
type Edge struct {
	From string
	To   string
}

// Input is everything a strategy needs for one pass.
type Input struct {
	Nodes  []Node
	Edges  []Edge
	Bounds Bounds
	// Prior holds positions from the previous pass. Only Force uses it.
	Prior Positions
	// Direction selects children for Tree and Cluster.
	Direction Direction
}

// Result is the output of one layout pass.
type Result struct {
	Positions Positions
	// Links are the edges to draw: the subgraph edges for Force, the
	// parent/child links for Tree and Cluster (in relation direction).
	Links []Edge
	// Unplaced lists input nodes a rooted layout could not reach.
	Unplaced []string
	// Steps is the number of simulation steps run (Force only).
	Steps int
}

// =============================================================================
// Direction
// =============================================================================

// Direction selects which relation a rooted layout follows for children.
type Direction int

const (
	// DirNone gives every node no children; only the root is placed.
	DirNone Direction = iota
	// DirRequires takes a node's dependencies as its children.
	DirRequires
	// DirRequiredBy takes a node's dependents as its children.
	DirRequiredBy
)

func (d Direction) String() string {
	switch d {
	case DirRequires:
		return "requires"
	case DirRequiredBy:
		return "required_by"
	default:
		return "none"
	}
}

// SelectDirection picks the children direction for Tree and Cluster from
// neighborhood bounds: requires if maxRequires > 0, else required_by if
// maxRequiredBy > 0, else none. degraded is true when both bounds are
// nonzero; the required_by expansion is then not shown as a hierarchy.
func SelectDirection(maxRequires, maxRequiredBy int) (dir Direction, degraded bool) {
	degraded = maxRequires > 0 && maxRequiredBy > 0
	switch {
	case maxRequires > 0:
		return DirRequires, degraded
	case maxRequiredBy > 0:
		return DirRequiredBy, degraded
	default:
		return DirNone, false
	}
}

// DegradedWarning is the message shown for a degraded rooted layout.
func DegradedWarning(k Kind) string {
	return fmt.Sprintf("cannot show both 'requires' and 'required-by' when %s layout is used", k)
}

// =============================================================================
// Strategies
// =============================================================================

// Kind enumerates the layout strategies.
type Kind int

const (
	KindForce Kind = iota
	KindTree
	KindCluster
)

var kindNames = map[Kind]string{
	KindForce:   "force",
	KindTree:    "tree",
	KindCluster: "cluster",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Rooted reports whether the strategy needs a single root.
func (k Kind) Rooted() bool { return k == KindTree || k == KindCluster }

// ParseKind converts a strategy name to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return 0, derrors.New(derrors.ErrCodeInvalidLayout, "unknown layout %q (want force, tree or cluster)", s)
}

// Strategy computes positions for one input.
type Strategy interface {
	Kind() Kind
	Compute(in Input) (Result, error)
}

// Option configures a strategy built by New.
type Option func(*options)

type options struct {
	steps  int
	params Params
}

// WithSteps sets the force simulation step budget.
func WithSteps(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.steps = n
		}
	}
}

// WithParams sets the force simulation parameters.
func WithParams(p Params) Option {
	return func(o *options) { o.params = p }
}

// New returns the strategy for kind.
func New(kind Kind, opts ...Option) (Strategy, error) {
	o := options{steps: DefaultSteps, params: DefaultParams()}
	for _, opt := range opts {
		opt(&o)
	}
	switch kind {
	case KindForce:
		return &Force{Steps: o.steps, Params: o.params}, nil
	case KindTree:
		return Tree{}, nil
	case KindCluster:
		return Cluster{}, nil
	default:
		return nil, derrors.New(derrors.ErrCodeInvalidLayout, "unknown layout %v", kind)
	}
}

// Compute is a shorthand for New(kind).Compute(in).
func Compute(kind Kind, in Input) (Result, error) {
	s, err := New(kind)
	if err != nil {
		return Result{}, err
	}
	return s.Compute(in)
}
