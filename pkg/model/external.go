package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ExternalGraph is the adjacency form a graph is imported from: named nodes
// with attributes and named edges between node names.
//
// Slice order is significant. Nodes keep their order as the model's node
// sequence; edges keep theirs as the order of Requires/RequiredBy.
type ExternalGraph struct {
	Nodes []NodeEntry
	Edges []EdgeEntry
}

// NodeEntry is one node of an ExternalGraph.
type NodeEntry struct {
	Name  string
	Attrs Attrs
}

// EdgeEntry is one "Source requires Target" edge of an ExternalGraph.
type EdgeEntry struct {
	Name   string
	Source string
	Target string
}

// AddNode appends a node entry.
func (g *ExternalGraph) AddNode(name string, attrs Attrs) {
	g.Nodes = append(g.Nodes, NodeEntry{Name: name, Attrs: attrs})
}

// AddEdge appends an edge entry. An empty name is replaced by a generated
// one when the graph is encoded.
func (g *ExternalGraph) AddEdge(name, source, target string) {
	g.Edges = append(g.Edges, EdgeEntry{Name: name, Source: source, Target: target})
}

// edgeRecord is one element of an edge's value array:
//
//	"a -> b": [{"edge": ["a", "b"]}]
type edgeRecord struct {
	Edge []string `json:"edge"`
}

// UnmarshalJSON decodes the graph-AST adapter shape
//
//	{"nodes": {"name": {attrs}}, "edges": {"edge name": [{"edge": ["src", "dst"]}]}}
//
// preserving the document order of both objects. Unknown top-level keys are
// skipped.
func (g *ExternalGraph) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	var out ExternalGraph
	for dec.More() {
		key, err := nextKey(dec)
		if err != nil {
			return err
		}
		switch key {
		case "nodes":
			err = decodeObject(dec, func(name string) error {
				var attrs Attrs
				if err := dec.Decode(&attrs); err != nil {
					return fmt.Errorf("node %q: %w", name, err)
				}
				out.AddNode(name, attrs)
				return nil
			})
		case "edges":
			err = decodeObject(dec, func(name string) error {
				var recs []edgeRecord
				if err := dec.Decode(&recs); err != nil {
					return fmt.Errorf("edge %q: %w", name, err)
				}
				if len(recs) == 0 {
					return fmt.Errorf("edge %q: empty edge list", name)
				}
				for _, r := range recs {
					if len(r.Edge) != 2 {
						return fmt.Errorf("edge %q: want [source, target], got %d names", name, len(r.Edge))
					}
					out.AddEdge(name, r.Edge[0], r.Edge[1])
				}
				return nil
			})
		default:
			var skip json.RawMessage
			err = dec.Decode(&skip)
		}
		if err != nil {
			return err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}

	*g = out
	return nil
}

// MarshalJSON encodes the graph in the same ordered shape UnmarshalJSON reads.
func (g ExternalGraph) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"nodes":{`)
	for i, n := range g.Nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, n.Name, nonNilAttrs(n.Attrs)); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`},"edges":{`)
	seen := make(map[string]bool, len(g.Edges))
	for i, e := range g.Edges {
		if i > 0 {
			buf.WriteByte(',')
		}
		name := e.Name
		if name == "" || seen[name] {
			name = fmt.Sprintf("%s -> %s #%d", e.Source, e.Target, i)
		}
		seen[name] = true
		rec := []edgeRecord{{Edge: []string{e.Source, e.Target}}}
		if err := writeMember(&buf, name, rec); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

func nonNilAttrs(a Attrs) Attrs {
	if a == nil {
		return Attrs{}
	}
	return a
}

func writeMember(buf *bytes.Buffer, key string, v any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}

func decodeObject(dec *json.Decoder, member func(key string) error) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		key, err := nextKey(dec)
		if err != nil {
			return err
		}
		if err := member(key); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
