// Package cache keeps kernel replies so repeated requests skip the kernel.
//
// Keys are derived from the exact request text with Key. Implementations
// are safe for concurrent use.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Cache stores reply text by key. Get reports found=false for a missing
// key without an error.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Key hashes a request into a fixed-size cache key. kind separates
// namespaces that send the same text but expect different replies.
func Key(kind, request string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(request))
	return hex.EncodeToString(h.Sum(nil))
}
