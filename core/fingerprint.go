// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"encoding/hex"
	"fmt"
)

// FingerprintSize is the digest length in bytes.
const FingerprintSize = 16

// Fingerprint is a fixed-size digest of a skeleton. Two tasks are
// duplicates when their fingerprints are equal.
type Fingerprint [FingerprintSize]byte

// String returns the lower-case hex encoding.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// IsZero reports whether the fingerprint is unset.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// ParseFingerprint decodes a hex string produced by Fingerprint.String.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	raw, err := hex.DecodeString(s)
	if err != nil {
		return f, fmt.Errorf("%w: %w", ErrInvalidFingerprint, err)
	}
	if len(raw) != FingerprintSize {
		return f, fmt.Errorf("%w: got %d bytes", ErrInvalidFingerprint, len(raw))
	}
	copy(f[:], raw)
	return f, nil
}
