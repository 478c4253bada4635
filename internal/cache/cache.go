package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key generates a stable, namespaced cache key from arbitrary parts.
// Used for verification result lookups (statement + context) and for video
// metadata, where the raw values are too long to key on directly.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "factstream:v1:" + hex.EncodeToString(hash[:])
}
