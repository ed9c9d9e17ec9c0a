package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "election-2024:")
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

// AssignmentKey generates a prefixed assignment key.
func (k *ScopedKeyer) AssignmentKey(layoutHash string, opts AssignmentKeyOpts) string {
	return k.prefix + k.inner.AssignmentKey(layoutHash, opts)
}

// FrameKey generates a prefixed frame key.
func (k *ScopedKeyer) FrameKey(broadcastID string) string {
	return k.prefix + k.inner.FrameKey(broadcastID)
}
