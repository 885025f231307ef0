package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/matzehuels/depview/pkg/cache"
	derrors "github.com/matzehuels/depview/pkg/errors"
	"github.com/matzehuels/depview/pkg/model"
)

// dotAttrs lists the node attributes carried over from DOT input.
var dotAttrs = []string{"label", "shape", "color", "fillcolor", "style", "tooltip", "URL"}

// ReadJSON decodes a graph in the adapter JSON shape from r.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (model.ExternalGraph, error) {
	var g model.ExternalGraph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return model.ExternalGraph{}, derrors.Import(err, "decode graph JSON")
	}
	return g, nil
}

// ReadDOT parses GraphViz DOT source from r.
//
// Nodes are listed in the order GraphViz enumerates them, which is
// declaration order for a freshly parsed graph. Every out-edge becomes an
// edge entry; anonymous edges are named "tail -> head".
func ReadDOT(ctx context.Context, r io.Reader) (model.ExternalGraph, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return model.ExternalGraph{}, derrors.Import(err, "read DOT source")
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return model.ExternalGraph{}, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(src)
	if err != nil {
		return model.ExternalGraph{}, derrors.Import(err, "parse DOT")
	}
	defer g.Close()

	out, err := walkDOT(g)
	if err != nil {
		return model.ExternalGraph{}, derrors.Import(err, "walk DOT graph")
	}
	return out, nil
}

func walkDOT(g *cgraph.Graph) (model.ExternalGraph, error) {
	var out model.ExternalGraph
	var nodes []*cgraph.Node

	for n, err := g.FirstNode(); n != nil || err != nil; n, err = g.NextNode(n) {
		if err != nil {
			return out, err
		}
		name, err := n.Name()
		if err != nil {
			return out, err
		}
		out.AddNode(name, nodeAttrs(n, name))
		nodes = append(nodes, n)
	}

	for _, n := range nodes {
		for e, err := g.FirstOut(n); e != nil || err != nil; e, err = g.NextOut(e) {
			if err != nil {
				return out, err
			}
			tail, err := e.Tail()
			if err != nil {
				return out, err
			}
			head, err := e.Head()
			if err != nil {
				return out, err
			}
			src, err := tail.Name()
			if err != nil {
				return out, err
			}
			dst, err := head.Name()
			if err != nil {
				return out, err
			}
			name, _ := e.Name()
			if name == "" {
				name = src + " -> " + dst
			}
			out.AddEdge(name, src, dst)
		}
	}
	return out, nil
}

func nodeAttrs(n *cgraph.Node, name string) model.Attrs {
	attrs := model.Attrs{}
	for _, key := range dotAttrs {
		v := n.GetStr(key)
		if v == "" || (key == "label" && (v == name || v == `\N`)) {
			continue
		}
		attrs[key] = v
	}
	return attrs
}

// Import reads the graph file at path, choosing the decoder by extension:
// .dot and .gv are parsed as DOT, everything else as JSON.
func Import(ctx context.Context, path string) (model.ExternalGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ExternalGraph{}, derrors.Import(err, "open %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		return ReadDOT(ctx, f)
	default:
		return ReadJSON(f)
	}
}

// Load imports the file at path and builds a model from it.
func Load(ctx context.Context, path string) (*model.Model, string, error) {
	g, err := Import(ctx, path)
	if err != nil {
		return nil, "", err
	}
	m, err := model.FromExternal(g)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	fp, err := Fingerprint(g)
	if err != nil {
		return nil, "", err
	}
	return m, fp, nil
}

// Fingerprint returns a stable content hash of g.
func Fingerprint(g model.ExternalGraph) (string, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("encode graph: %w", err)
	}
	return cache.Hash(data), nil
}
