package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each tenant of a
// shared backend its own namespace.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "team:analytics:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SceneKey returns the prefixed scene key.
func (k *ScopedKeyer) SceneKey(specHash, dataHash string, opts SceneKeyOpts) string {
	return k.prefix + k.inner.SceneKey(specHash, dataHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(sceneKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneKey, opts)
}
