// Package checksum provides content digests used for stable image filenames.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns the first n hex characters of the SHA-256 digest of s.
// Used to derive collision-resistant filenames from image URLs.
func Short(s string, n int) string {
	sum := Sum([]byte(s))
	if n > len(sum) {
		n = len(sum)
	}
	return sum[:n]
}
