package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions.
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ReductionKey identifies a reduction result. graphHash is the content
// hash of the serialized input graph; rules and the engine options are
// part of the key because they change the output for the same input.
func ReductionKey(graphHash string, rules []string, resweepThreshold float64, lazyAliasing bool) string {
	return hashKey("reduce", graphHash, rules, resweepThreshold, lazyAliasing)
}

// ArtifactKey identifies a rendered artifact (DOT, SVG) derived from a
// graph with the given content hash.
func ArtifactKey(graphHash, format string) string {
	return hashKey("artifact", graphHash, format)
}
