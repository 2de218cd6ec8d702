// Package reqid attaches a random per-request ID to the context so that
// event subscribers can correlate lifecycle events of the same request.
package reqid

import (
	"context"
	"math/rand"
)

type key struct{}

// NewContext returns a copy of parent carrying a fresh request ID, and the ID.
func NewContext(parent context.Context) (context.Context, int64) {
	id := rand.Int63()
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the request ID, reporting whether one was present.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(key{}).(int64)
	return id, ok
}
