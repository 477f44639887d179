package selection

import "github.com/poiesic/taskrag/core"

// UsedFingerprints is the set of skeleton fingerprints already selected in
// one assignment run. It is not safe for concurrent use; give every run its
// own set. The zero value is an empty set.
type UsedFingerprints struct {
	set map[core.Fingerprint]struct{}
}

// NewUsedFingerprints creates an empty set.
func NewUsedFingerprints() *UsedFingerprints {
	return &UsedFingerprints{set: make(map[core.Fingerprint]struct{})}
}

// Contains reports whether fp was already used.
func (u *UsedFingerprints) Contains(fp core.Fingerprint) bool {
	_, ok := u.set[fp]
	return ok
}

// Add records fp. It reports false if fp was already present.
func (u *UsedFingerprints) Add(fp core.Fingerprint) bool {
	if u.set == nil {
		u.set = make(map[core.Fingerprint]struct{})
	}
	if _, ok := u.set[fp]; ok {
		return false
	}
	u.set[fp] = struct{}{}
	return true
}

// Len returns the number of recorded fingerprints.
func (u *UsedFingerprints) Len() int {
	return len(u.set)
}
