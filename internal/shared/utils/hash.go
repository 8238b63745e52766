package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of the fields joined in order.
// Each field is length-prefixed so ("ab", "c") and ("a", "bc") differ.
func Hash(fields ...string) string {
	h := sha256.New()
	var size [8]byte
	for _, f := range fields {
		n := uint64(len(f))
		for i := range size {
			size[i] = byte(n >> (8 * i))
		}
		h.Write(size[:])
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ETag returns a strong entity tag for the fields
func ETag(fields ...string) string {
	return `"` + Hash(fields...)[:16] + `"`
}
