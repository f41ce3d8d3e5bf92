package cache

// Keyer builds cache keys. Implementations must return the same key for the
// same inputs across processes.
type Keyer interface {
	// ResultKey identifies the result of running op on a definition whose
	// canonical encoding hashes to defHash.
	ResultKey(op, defHash string) string

	// RenderKey identifies a rendered artifact of the automaton whose
	// canonical encoding hashes to automatonHash.
	RenderKey(automatonHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts holds the options that change a rendered artifact.
type RenderKeyOpts struct {
	Format  string `json:"format"`
	Origins bool   `json:"origins"`
	Title   string `json:"title,omitempty"`
}

// DefaultKeyer hashes every key component with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ResultKey generates a key for a pipeline result.
func (k *DefaultKeyer) ResultKey(op, defHash string) string {
	return hashKey("result:"+op, defHash)
}

// RenderKey generates a key for a rendered artifact.
func (k *DefaultKeyer) RenderKey(automatonHash string, opts RenderKeyOpts) string {
	return hashKey("render:"+opts.Format, automatonHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
