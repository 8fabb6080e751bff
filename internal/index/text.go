package index

import (
	"crypto/sha256"
	"encoding/hex"
)

// TextHash returns a sha256 hash (hex) of chunk text. Rebuilds use it to
// reuse vectors of unchanged chunks.
func TextHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
