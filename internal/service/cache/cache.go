package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}

// Key derives a cache key from a namespace and a canonical request body.
func Key(namespace string, body []byte) string {
	sum := sha256.Sum256(body)
	return "smartcvd:" + namespace + ":" + hex.EncodeToString(sum[:])
}
