package model

import (
	"maps"
	"slices"
)

// Attrs holds the presentation attributes a node carried in the external
// graph (for DOT input: label, shape, color, ...). They are opaque to the
// model.
type Attrs map[string]any

// Component is one unit of software in the dependency graph.
//
// Identity is the label: two components compare equal iff their labels are
// equal, and a Model never holds two components with the same label. The
// zero value is not usable; components are only created by Model.Import.
type Component struct {
	label      string
	index      int
	attrs      Attrs
	requires   []*Component
	requiredBy []*Component
}

// Label returns the unique component name.
func (c *Component) Label() string { return c.label }

// Index returns the component's position in the model's node sequence.
func (c *Component) Index() int { return c.index }

// Requires returns the components this component depends on, in edge
// insertion order. The returned slice is a copy.
func (c *Component) Requires() []*Component { return slices.Clone(c.requires) }

// RequiredBy returns the components that depend on this component, in edge
// insertion order. The returned slice is a copy.
func (c *Component) RequiredBy() []*Component { return slices.Clone(c.requiredBy) }

// Attrs returns a copy of the node's external attributes. Never nil.
func (c *Component) Attrs() Attrs {
	if c.attrs == nil {
		return Attrs{}
	}
	return maps.Clone(c.attrs)
}

// Caption returns the display caption: the "label" attribute when it is a
// non-empty string, otherwise the component label.
func (c *Component) Caption() string {
	if s, ok := c.attrs["label"].(string); ok && s != "" {
		return s
	}
	return c.label
}

// Root reports whether nothing in the model requires this component.
func (c *Component) Root() bool { return len(c.requiredBy) == 0 }

// Leaf reports whether this component requires nothing.
func (c *Component) Leaf() bool { return len(c.requires) == 0 }

// Relation is a derived "Source requires Target" edge.
type Relation struct {
	Source *Component
	Target *Component
}

// EdgeKey identifies a relation by its endpoint labels.
type EdgeKey struct {
	From string
	To   string
}

// Key returns the label pair identifying the relation.
func (r Relation) Key() EdgeKey {
	return EdgeKey{From: r.Source.label, To: r.Target.label}
}

// Labels extracts the label from each component in order.
func Labels(cs []*Component) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.label
	}
	return out
}
