package cache

import "fmt"

// Keyer names cache entries.
type Keyer interface {
	// HTTPKey names a raw HTTP response body.
	HTTPKey(namespace, key string) string
	// NeighborhoodKey names a presentation document for a focus component
	// of the graph with the given fingerprint.
	NeighborhoodKey(graph, label string, opts NeighborhoodKeyOpts) string
	// DetailKey names a component detail document.
	DetailKey(graph, label string) string
}

// NeighborhoodKeyOpts are the request parameters that change the
// presentation document.
type NeighborhoodKeyOpts struct {
	Requires   int    `json:"requires"`
	RequiredBy int    `json:"required_by"`
	Layout     string `json:"layout,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

func (DefaultKeyer) NeighborhoodKey(graph, label string, opts NeighborhoodKeyOpts) string {
	return hashKey("nb", graph, label, opts)
}

func (DefaultKeyer) DetailKey(graph, label string) string {
	return hashKey("info", graph, label)
}
