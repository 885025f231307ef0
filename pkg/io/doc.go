// Package io reads and writes external graph representations.
//
// # Overview
//
// The model is always populated from a [model.ExternalGraph]. This package
// produces one from two sources:
//
//   - JSON in the graph-AST adapter shape (see below), via [ReadJSON]
//   - GraphViz DOT source, parsed in-process by go-graphviz, via [ReadDOT]
//
// and writes a model back out with [WriteJSON] and [WriteDOT].
//
// # JSON Format
//
// Nodes are an object keyed by node name; edges are an object keyed by
// edge name whose value is a one-element array holding the endpoint pair:
//
//	{
//	  "nodes": {
//	    "app": {"label": "Application"},
//	    "lib": {}
//	  },
//	  "edges": {
//	    "app -> lib": [{"edge": ["app", "lib"]}]
//	  }
//	}
//
// Document key order is the model's node order.
//
// # Import
//
// Use [Import] to read a file by extension (.json, .dot, .gv), or the
// Read* functions for any io.Reader:
//
//	g, err := io.Import("deps.dot")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := model.FromExternal(g)
//
// Malformed input is reported as an IMPORT_ERROR. Referential checks (edges
// to undefined nodes) happen in [model.Model.Import].
//
// # Fingerprints
//
// [Fingerprint] hashes the canonical JSON encoding of a graph. Fetchers and
// the server use it to scope cache keys to one imported graph.
package io
