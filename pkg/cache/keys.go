package cache

// Keyer builds cache keys.
type Keyer interface {
	// AssignmentKey is the key of a seat assignment for a layout hash.
	AssignmentKey(layoutHash string, opts AssignmentKeyOpts) string

	// FrameKey is the key of the latest frame of a broadcast.
	FrameKey(broadcastID string) string
}

// AssignmentKeyOpts holds the allocation settings that are not part of the
// layout hash.
type AssignmentKeyOpts struct {
	Tiebreak string `json:"tiebreak"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AssignmentKey returns "assignment:<sha256>".
func (DefaultKeyer) AssignmentKey(layoutHash string, opts AssignmentKeyOpts) string {
	return hashKey("assignment", layoutHash, opts)
}

// FrameKey returns "frame:<broadcastID>".
func (DefaultKeyer) FrameKey(broadcastID string) string {
	return "frame:" + broadcastID
}
