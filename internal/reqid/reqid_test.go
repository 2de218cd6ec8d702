package reqid

import (
	"context"
	"testing"
)

func TestNewContextStoresID(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	if !ok || got != id {
		t.Fatalf("got %d ok=%v, want %d", got, ok, id)
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no id on a bare context")
	}
}
