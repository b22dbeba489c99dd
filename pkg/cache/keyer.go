package cache

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs always yield equal keys.
type Keyer interface {
	// SceneKey keys a compiled scene graph.
	SceneKey(specHash, dataHash string, opts SceneKeyOpts) string

	// ArtifactKey keys one encoded output of a scene graph.
	ArtifactKey(sceneKey string, opts ArtifactKeyOpts) string
}

// SceneKeyOpts holds the compile options that change the scene graph.
type SceneKeyOpts struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Title  string `json:"title,omitempty"`
}

// ArtifactKeyOpts holds the encoding options that change an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer hashes key components under fixed prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SceneKey returns "scene:<sha256>".
func (DefaultKeyer) SceneKey(specHash, dataHash string, opts SceneKeyOpts) string {
	return hashKey("scene", specHash, dataHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(sceneKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneKey, opts)
}
