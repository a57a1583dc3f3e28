package resultcache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key is the lowercase hex SHA-256 digest identifying a (content, context) pair.
type Key string

// ComputeKey hashes the exact concatenation of content and contextParam.
// There is no separator, which keeps keys compatible with rows written by
// earlier clients; lookups also filter on contextParam so a shifted boundary
// between the two inputs can never match.
func ComputeKey(content []byte, contextParam string) Key {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte(contextParam))
	return Key(hex.EncodeToString(h.Sum(nil)))
}

func (k Key) String() string { return string(k) }

// Short returns a log-friendly prefix of the key.
func (k Key) Short() string {
	if len(k) > 12 {
		return string(k[:12])
	}
	return string(k)
}

// Valid reports whether k looks like a SHA-256 hex digest.
func (k Key) Valid() bool {
	if len(k) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(string(k))
	return err == nil
}
