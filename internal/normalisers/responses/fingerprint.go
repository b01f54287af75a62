package responses

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gowebpki/jcs"
)

// Fingerprint hashes the RFC 8785 canonical form of a JSON body, so key
// order and whitespace differences between two responses do not matter.
// Bodies that cannot be canonicalised hash as received.
func Fingerprint(raw []byte) string {
	canonical, err := jcs.Transform(raw)
	if err != nil {
		canonical = raw
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
