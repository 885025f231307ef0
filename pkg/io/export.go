package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/depview/pkg/model"
)

// WriteJSON encodes the model in the adapter JSON shape. The output can be
// re-imported with [ReadJSON].
func WriteJSON(m *model.Model, w io.Writer) error {
	data, err := json.Marshal(m.Export())
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("indent: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

// ExportJSON writes the model to a JSON file at path.
func ExportJSON(m *model.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}

// ToDOT converts the model to GraphViz DOT source. String attributes are
// written back as node attributes.
func ToDOT(m *model.Model) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	for _, c := range m.AllNodes() {
		attrs := c.Attrs()
		var parts []string
		for _, k := range slices.Sorted(maps.Keys(attrs)) {
			if s, ok := attrs[k].(string); ok {
				parts = append(parts, fmt.Sprintf("%s=%q", k, s))
			}
		}
		if len(parts) == 0 {
			fmt.Fprintf(&buf, "  %q;\n", c.Label())
		} else {
			fmt.Fprintf(&buf, "  %q [%s];\n", c.Label(), strings.Join(parts, ", "))
		}
	}
	for _, e := range m.AllEdges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source.Label(), e.Target.Label())
	}
	buf.WriteString("}\n")
	return buf.String()
}

// WriteDOT writes [ToDOT] output to w.
func WriteDOT(m *model.Model, w io.Writer) error {
	_, err := io.WriteString(w, ToDOT(m))
	return err
}
