package render

import (
	"fmt"

	"github.com/google/uuid"
)

// ElementKind distinguishes scene element types.
type ElementKind string

const (
	KindNode ElementKind = "node"
	KindEdge ElementKind = "edge"
	KindText ElementKind = "text"
)

// Line holds the endpoints of an edge element.
type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// OpKind names a scene mutation.
type OpKind string

const (
	OpCreate    OpKind = "create"
	OpRemove    OpKind = "remove"
	OpTransform OpKind = "transform"
	OpLine      OpKind = "line"
	OpText      OpKind = "text"
)

// Op is one scene mutation, as published to subscribers.
type Op struct {
	Seq     uint64      `json:"seq"`
	Kind    OpKind      `json:"op"`
	ID      uuid.UUID   `json:"id"`
	Element ElementKind `json:"element,omitempty"`
	Key     string      `json:"key,omitempty"`
	Text    string      `json:"text,omitempty"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	Radius  float64     `json:"r,omitempty"`
	Line    *Line       `json:"line,omitempty"`
}

func (o Op) String() string {
	switch o.Kind {
	case OpCreate:
		return fmt.Sprintf("create %s %q", o.Element, o.Key)
	case OpTransform:
		return fmt.Sprintf("transform %s (%.1f,%.1f)", o.ID, o.X, o.Y)
	default:
		return fmt.Sprintf("%s %s", o.Kind, o.ID)
	}
}
