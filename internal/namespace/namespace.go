// Package namespace derives the canonical byte-string namespace of a group
// and matches key identifiers against it. The namespace is a required prefix
// of every key identifier scoped to a group: a key issued for one group can
// never unlock another group's content because their namespaces differ.
package namespace

import "github.com/google/uuid"

// Size is the length in bytes of every derived namespace.
const Size = 16

// Derive maps a group identity to its canonical namespace bytes.
// The mapping is deterministic and injective: the full 16-byte UUID is
// used, never a truncation or a narrow digest, so two distinct groups
// cannot collide.
func Derive(groupID uuid.UUID) []byte {
	ns := make([]byte, Size)
	copy(ns, groupID[:])
	return ns
}

// HasPrefix reports whether keyID begins with the exact bytes of ns.
// The comparison runs byte-for-byte, left to right, and stops at the
// first mismatch. A keyID shorter than ns can never match.
func HasPrefix(keyID, ns []byte) bool {
	if len(keyID) < len(ns) {
		return false
	}
	for i := range ns {
		if keyID[i] != ns[i] {
			return false
		}
	}
	return true
}
