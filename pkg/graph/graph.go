package graph

import (
	"encoding/json"
	"fmt"
	"io"

	derrors "github.com/matzehuels/depview/pkg/errors"
	"github.com/matzehuels/depview/pkg/model"
)

// =============================================================================
// Building Documents
// =============================================================================

// Present builds the presentation graph of focus's neighborhood. The focus
// node is flagged as root. ok is false when focus is unknown.
func Present(m *model.Model, focus string, maxRequires, maxRequiredBy int) (Document, bool) {
	nb, ok := m.Neighborhood(focus, maxRequires, maxRequiredBy)
	if !ok {
		return Document{}, false
	}
	return FromNeighborhood(nb), true
}

// FromNeighborhood converts a neighborhood to a presentation graph.
func FromNeighborhood(nb model.Neighborhood) Document {
	doc := Document{
		Nodes: make([]Node, 0, len(nb.Nodes)),
		Edges: make([]Edge, 0, len(nb.Edges)),
	}
	for _, c := range nb.Nodes {
		n := Node{ID: c.Label(), Caption: c.Caption(), Root: c == nb.Focus}
		if attrs := c.Attrs(); len(attrs) > 0 {
			n.Attrs = attrs
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	for _, e := range nb.Edges {
		doc.Edges = append(doc.Edges, Edge{
			Source: e.Source.Label(),
			Target: e.Target.Label(),
			Type:   TypeRequires,
		})
	}
	return doc
}

// Describe builds the detail document for label. Unknown labels produce a
// Detail with Found == false and empty relation lists.
func Describe(m *model.Model, label string) Detail {
	d := Detail{Label: label, Requires: []Ref{}, RequiredBy: []Ref{}}
	c, ok := m.Node(label)
	if !ok {
		return d
	}
	d.Found = true
	d.Caption = c.Caption()
	for _, r := range c.Requires() {
		d.Requires = append(d.Requires, Ref{Label: r.Label()})
	}
	for _, r := range c.RequiredBy() {
		d.RequiredBy = append(d.RequiredBy, Ref{Label: r.Label()})
	}
	return d
}

// =============================================================================
// Serialization
// =============================================================================

// Validate checks that every edge references a node in the document and
// that node IDs are unique.
func (d Document) Validate() error {
	ids := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID == "" {
			return derrors.New(derrors.ErrCodeInvalidFormat, "node with empty _id")
		}
		if ids[n.ID] {
			return derrors.New(derrors.ErrCodeInvalidFormat, "duplicate node %q", n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range d.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return derrors.New(derrors.ErrCodeInvalidFormat, "edge %s -> %s references unknown node", e.Source, e.Target)
		}
	}
	return nil
}

// WriteDocument encodes d as JSON to w.
func WriteDocument(d Document, w io.Writer) error {
	if err := json.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// ReadDocument decodes and validates a presentation graph.
func ReadDocument(r io.Reader) (Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

// WriteDetail encodes d as JSON to w.
func WriteDetail(d Detail, w io.Writer) error {
	if err := json.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("encode detail: %w", err)
	}
	return nil
}

// ReadDetail decodes a detail document. A document without a label is
// rejected.
func ReadDetail(r io.Reader) (Detail, error) {
	var d Detail
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Detail{}, fmt.Errorf("decode detail: %w", err)
	}
	if d.Label == "" {
		return Detail{}, derrors.New(derrors.ErrCodeInvalidFormat, "detail without label")
	}
	return d, nil
}
