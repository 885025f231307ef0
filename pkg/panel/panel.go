// Package panel builds the textual detail view of one component.
//
// A [Detail] is built from the model ([Describe]) or from a fetched detail
// document ([FromDocument]) and formatted as text by [Format]. Unknown
// components are a normal outcome: Found is false, the relation lists
// are empty and the name is rendered with the Missing style.
package panel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/depview/pkg/graph"
	"github.com/matzehuels/depview/pkg/model"
)

// Detail is what the panel shows for one component.
type Detail struct {
	Name       string
	Caption    string
	Found      bool
	Requires   []string
	RequiredBy []string
}

// Describe looks label up in m.
func Describe(m *model.Model, label string) Detail {
	return FromDocument(graph.Describe(m, label))
}

// FromDocument converts a detail document.
func FromDocument(d graph.Detail) Detail {
	out := Detail{
		Name:       d.Label,
		Caption:    d.Caption,
		Found:      d.Found,
		Requires:   make([]string, 0, len(d.Requires)),
		RequiredBy: make([]string, 0, len(d.RequiredBy)),
	}
	if !d.Found {
		return out
	}
	for _, r := range d.Requires {
		out.Requires = append(out.Requires, r.Label)
	}
	for _, r := range d.RequiredBy {
		out.RequiredBy = append(out.RequiredBy, r.Label)
	}
	return out
}

// Links returns the labels the panel links to, requires first.
func (d Detail) Links() []string {
	return append(append([]string{}, d.Requires...), d.RequiredBy...)
}

// Theme styles the formatted panel. The zero Theme renders plain text.
type Theme struct {
	Name    lipgloss.Style
	Missing lipgloss.Style
	Heading lipgloss.Style
	Item    lipgloss.Style
	None    lipgloss.Style
}

// TerminalTheme colours unknown names red and dims empty lists.
func TerminalTheme() Theme {
	return Theme{
		Name:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		Missing: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("167")),
		Heading: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Item:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		None:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
	}
}

// Format renders d as plain text.
func Format(d Detail) string { return Theme{}.Format(d) }

// Format renders d with the theme:
//
//	name
//	Requires:
//	  - dep
//	Required by:
//	  none
func (t Theme) Format(d Detail) string {
	var b strings.Builder
	if d.Found {
		b.WriteString(t.Name.Render(d.Name))
	} else {
		b.WriteString(t.Missing.Render(d.Name))
		b.WriteString(" ")
		b.WriteString(t.None.Render("(unknown component)"))
	}
	if d.Caption != "" && d.Caption != d.Name {
		b.WriteString(" ")
		b.WriteString(t.Heading.Render("(" + d.Caption + ")"))
	}
	b.WriteString("\n")
	t.list(&b, "Requires:", d.Requires)
	t.list(&b, "Required by:", d.RequiredBy)
	return b.String()
}

func (t Theme) list(b *strings.Builder, heading string, items []string) {
	b.WriteString(t.Heading.Render(heading))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString("  ")
		b.WriteString(t.None.Render("none"))
		b.WriteString("\n")
		return
	}
	for _, it := range items {
		b.WriteString("  - ")
		b.WriteString(t.Item.Render(it))
		b.WriteString("\n")
	}
}
