package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend without colliding.
//
// Example usage:
//
//	// One namespace per server instance
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "powerset:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey generates a prefixed key for a pipeline result.
func (k *ScopedKeyer) ResultKey(op, defHash string) string {
	return k.prefix + k.inner.ResultKey(op, defHash)
}

// RenderKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) RenderKey(automatonHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(automatonHash, opts)
}
