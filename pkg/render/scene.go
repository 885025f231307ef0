package render

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/depview/pkg/layout"
)

// Element is one visual element of a scene.
type Element struct {
	ID   uuid.UUID
	Kind ElementKind
	// Key is the bound identity: the component label for nodes, the text
	// key for text elements. Edges use Source and Target.
	Key    string
	Source string
	Target string
	// Text is the caption of a node or the content of a text element.
	Text string
	// Radius is the node glyph radius, fixed at creation.
	Radius float64
	// Transform translates the element; node geometry is drawn around the
	// local origin.
	Transform layout.Point
	Line      Line
}

// Stats counts scene mutations since creation.
type Stats struct {
	Created int
	Removed int
	Ops     uint64
}

// Scene is a retained set of visual elements. It is safe for concurrent
// use; listeners run synchronously on the mutating goroutine and must not
// call back into the scene.
type Scene struct {
	mu        sync.Mutex
	canvas    Canvas
	elements  map[uuid.UUID]*Element
	listeners map[int]func(Op)
	nextSub   int
	stats     Stats
}

// NewScene creates an empty scene for canvas.
func NewScene(canvas Canvas) *Scene {
	return &Scene{
		canvas:    canvas,
		elements:  make(map[uuid.UUID]*Element),
		listeners: make(map[int]func(Op)),
	}
}

// Canvas returns the scene's canvas.
func (s *Scene) Canvas() Canvas { return s.canvas }

// Subscribe registers fn to receive every subsequent op. The returned
// function unregisters it.
func (s *Scene) Subscribe(fn func(Op)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// emit must be called with s.mu held.
func (s *Scene) emit(op Op) {
	s.stats.Ops++
	op.Seq = s.stats.Ops
	for _, fn := range s.listeners {
		fn(op)
	}
}

func createOp(e *Element) Op {
	op := Op{
		Kind:    OpCreate,
		ID:      e.ID,
		Element: e.Kind,
		Key:     e.Key,
		Text:    e.Text,
		X:       e.Transform.X,
		Y:       e.Transform.Y,
		Radius:  e.Radius,
	}
	if e.Kind == KindEdge {
		line := e.Line
		op.Key = e.Source + " -> " + e.Target
		op.Line = &line
	}
	return op
}

func (s *Scene) add(e *Element) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.New()
	s.elements[e.ID] = e
	s.stats.Created++
	s.emit(createOp(e))
	return e.ID
}

func (s *Scene) addNode(label, caption string) uuid.UUID {
	return s.add(&Element{Kind: KindNode, Key: label, Text: caption, Radius: s.canvas.radius()})
}

func (s *Scene) addEdge(source, target string, line Line) uuid.UUID {
	return s.add(&Element{Kind: KindEdge, Source: source, Target: target, Line: line})
}

// Remove deletes the element with id. It reports whether it existed.
func (s *Scene) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elements[id]; !ok {
		return false
	}
	delete(s.elements, id)
	s.stats.Removed++
	s.emit(Op{Kind: OpRemove, ID: id})
	return true
}

// SetTransform moves the element. An op is emitted only when the
// transform changes; the result reports whether it did.
func (s *Scene) SetTransform(id uuid.UUID, p layout.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elements[id]
	if !ok || e.Transform == p {
		return false
	}
	e.Transform = p
	s.emit(Op{Kind: OpTransform, ID: id, X: p.X, Y: p.Y})
	return true
}

// SetLine updates an edge's endpoints, emitting an op only on change.
func (s *Scene) SetLine(id uuid.UUID, l Line) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elements[id]
	if !ok || e.Kind != KindEdge || e.Line == l {
		return false
	}
	e.Line = l
	line := l
	s.emit(Op{Kind: OpLine, ID: id, Line: &line})
	return true
}

// SetText updates a node caption or text content, emitting an op only on
// change.
func (s *Scene) SetText(id uuid.UUID, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elements[id]
	if !ok || e.Text == text {
		return false
	}
	e.Text = text
	s.emit(Op{Kind: OpText, ID: id, Text: text})
	return true
}

// ShowText places a free-standing text element identified by key at p,
// replacing any previous text with the same key.
func (s *Scene) ShowText(key, text string, p layout.Point) uuid.UUID {
	s.HideText(key)
	return s.add(&Element{Kind: KindText, Key: key, Text: text, Transform: p})
}

// HideText removes the text element identified by key. It reports whether
// one was shown.
func (s *Scene) HideText(key string) bool {
	s.mu.Lock()
	var id uuid.UUID
	found := false
	for _, e := range s.elements {
		if e.Kind == KindText && e.Key == key {
			id, found = e.ID, true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return false
	}
	return s.Remove(id)
}

// Element returns a copy of the element with id.
func (s *Scene) Element(id uuid.UUID) (Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elements[id]
	if !ok {
		return Element{}, false
	}
	return *e, true
}

// Elements returns copies of all elements, edges first, then nodes, then
// text, each group ordered by key.
func (s *Scene) Elements() []Element {
	s.mu.Lock()
	out := make([]Element, 0, len(s.elements))
	for _, e := range s.elements {
		out = append(out, *e)
	}
	s.mu.Unlock()

	rank := map[ElementKind]int{KindEdge: 0, KindNode: 1, KindText: 2}
	slices.SortFunc(out, func(a, b Element) int {
		return cmp.Or(
			cmp.Compare(rank[a.Kind], rank[b.Kind]),
			cmp.Compare(a.Key, b.Key),
			cmp.Compare(a.Source, b.Source),
			cmp.Compare(a.Target, b.Target),
		)
	})
	return out
}

// Len returns the number of elements.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.elements)
}

// Stats returns mutation counters.
func (s *Scene) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Clear removes every element.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.elements {
		delete(s.elements, id)
		s.stats.Removed++
		s.emit(Op{Kind: OpRemove, ID: id})
	}
}
