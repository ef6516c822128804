package bind

import (
	"slices"
	"sync"
)

// Bind is an observable value. Listeners run synchronously on every change.
type Bind[T any] struct {
	mu        sync.RWMutex
	listeners sync.Map // map[*listener[T]]struct{}
	value     T
	equal     func(T, T) bool
}

type listener[T any] struct {
	fn func(T)
}

func New[T comparable](v T) *Bind[T] {
	return &Bind[T]{
		value: v,
		equal: func(a, b T) bool { return a == b },
	}
}

func NewSlice[T comparable](v []T) *Bind[[]T] {
	return &Bind[[]T]{
		value: v,
		equal: func(a, b []T) bool { return slices.Equal(a, b) },
	}
}

// Listen adds a handler and returns a function that removes it.
func (b *Bind[T]) Listen(fn func(T)) func() {
	l := &listener[T]{fn: fn}
	b.listeners.Store(l, struct{}{})

	return func() {
		b.listeners.Delete(l)
	}
}

// Set stores the value and notifies the listeners, unless it equals the current one.
func (b *Bind[T]) Set(value T) {
	b.mu.Lock()
	if b.equal(b.value, value) {
		b.mu.Unlock()
		return
	}
	b.value = value
	b.mu.Unlock()

	b.listeners.Range(func(k, _ any) bool {
		k.(*listener[T]).fn(value)
		return true
	})
}

// Get returns the current value.
func (b *Bind[T]) Get() T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.value
}
