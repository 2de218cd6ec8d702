// Package eventbus is a small in-process dispatcher keyed by event type.
package eventbus

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
)

// Handler processes events of type T.
type Handler[T any] func(context.Context, T)

type entry struct {
	id int
	fn func(context.Context, any)
}

// Bus dispatches events to handlers registered for their dynamic type.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[reflect.Type][]entry
}

// New creates an empty Bus.
func New() *Bus { return &Bus{subs: make(map[reflect.Type][]entry)} }

func (b *Bus) subscribe(t reflect.Type, fn func(context.Context, any)) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[t] = append(b.subs[t], entry{id: id, fn: fn})
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		es := b.subs[t]
		for i, e := range es {
			if e.id == id {
				b.subs[t] = append(es[:i:i], es[i+1:]...)
				break
			}
		}
		if len(b.subs[t]) == 0 {
			delete(b.subs, t)
		}
	}
}

func (b *Bus) emit(ctx context.Context, e any) {
	b.mu.RLock()
	es := append([]entry(nil), b.subs[reflect.TypeOf(e)]...)
	b.mu.RUnlock()
	for _, en := range es {
		en.fn(ctx, e)
	}
}

var global atomic.Pointer[Bus]

// Use installs b as the process-wide bus. Passing nil disables publishing.
func Use(b *Bus) { global.Store(b) }

// Subscribe registers h with the global bus and returns an unsubscribe
// function. With no bus installed it is a no-op.
func Subscribe[T any](h Handler[T]) (unsubscribe func()) {
	b := global.Load()
	if b == nil {
		return func() {}
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	return b.subscribe(t, func(ctx context.Context, v any) { h(ctx, v.(T)) })
}

// Publish sends e through the global bus, if any.
func Publish[T any](ctx context.Context, e T) {
	if b := global.Load(); b != nil {
		b.emit(ctx, e)
	}
}
