package cache

// ScopedKeyer prefixes every key of an inner Keyer. A server uses one per
// remote backend so responses from different upstreams never collide:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "upstream:localhost:8080:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) NeighborhoodKey(graph, label string, opts NeighborhoodKeyOpts) string {
	return k.prefix + k.inner.NeighborhoodKey(graph, label, opts)
}

func (k *ScopedKeyer) DetailKey(graph, label string) string {
	return k.prefix + k.inner.DetailKey(graph, label)
}
