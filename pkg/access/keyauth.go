package access

import (
	"crypto/sha256"
	"crypto/subtle"
)

// VerifyKeySecret reports whether secret hashes to storedHash, compared in
// constant time so response latency cannot be used to recover the secret
// byte-by-byte (§4.3's KeyAccess authentication note).
func VerifyKeySecret(secret string, storedHash []byte) bool {
	sum := sha256.Sum256([]byte(secret))
	return subtle.ConstantTimeCompare(sum[:], storedHash) == 1
}

// HashKeySecret computes the stored hash for a freshly issued secret.
func HashKeySecret(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}
