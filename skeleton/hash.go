package skeleton

import (
	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/taskrag/core"
)

// Hash returns the BLAKE2b-128 digest of the UTF-8 skeleton bytes.
func Hash(skeleton string) core.Fingerprint {
	h, _ := blake2b.New(core.FingerprintSize, nil)
	h.Write([]byte(skeleton))

	var fp core.Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}

// Analysis holds every derived form of a statement.
type Analysis struct {
	Normalized  string
	Skeleton    string
	Fingerprint core.Fingerprint
}

// Analyze normalizes a raw statement, extracts its skeleton from the
// normalized text and fingerprints it.
func Analyze(statement string) Analysis {
	normalized := Normalize(statement)
	skel := Extract(normalized)
	return Analysis{
		Normalized:  normalized,
		Skeleton:    skel,
		Fingerprint: Hash(skel),
	}
}
