package validation

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint derives the cache key of a token pair from the full value of both tokens.
func Fingerprint(idToken, accessToken string) string {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	h.Write([]byte(idToken))
	h.Write([]byte{0})
	h.Write([]byte(accessToken))
	return hex.EncodeToString(h.Sum(nil))
}
