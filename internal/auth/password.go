// Password digests.
//
// Stored credentials are a deterministic one-way digest of the password:
// SHA3-256 over the UTF-8 bytes, hex encoded. The digest is always 64
// lowercase hex characters, so it fits the users.password column as-is.
//
// Hash format:
//
//	HashPassword("bob") → "<64 hex chars>"
//
// The same password always produces the same digest; that is what lets
// CheckLogin compare a freshly computed digest with the stored one.

package auth

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// DigestLength is the length of every value returned by HashPassword.
const DigestLength = 64

// HashPassword returns the hex digest stored for plaintext.
// Never log or persist plaintext itself.
func HashPassword(plaintext string) string {
	sum := sha3.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether plaintext hashes to the stored digest.
//
// TIMING SAFETY:
// subtle.ConstantTimeCompare takes the same time wherever the first
// differing byte is, so response times leak nothing about the digest.
func VerifyPassword(digest, plaintext string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(HashPassword(plaintext))) == 1
}
