package security

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashIP returns a keyed BLAKE2b digest of an address so visits can be
// correlated without storing the address itself.
func HashIP(ip, salt string) string {
	if ip == "" {
		return ""
	}

	key := []byte(salt)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}

	h, err := blake2b.New256(key)
	if err != nil {
		// only reachable with an oversized key, handled above
		sum := blake2b.Sum256([]byte(salt + ip))
		return hex.EncodeToString(sum[:])
	}
	h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil))
}
