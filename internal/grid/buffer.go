package grid

import "iter"

type slot[T any] struct {
	v  T
	ok bool
}

// Buffer is a flat store of optional values addressed by linear index.
type Buffer[T any] struct {
	slots []slot[T]
}

// NewBuffer returns a buffer of n empty slots.
func NewBuffer[T any](n int) *Buffer[T] {
	return &Buffer[T]{slots: make([]slot[T], n)}
}

// Len returns the number of slots, occupied or not.
func (b *Buffer[T]) Len() int {
	return len(b.slots)
}

// At returns the value stored at i. The boolean is false when the slot is
// empty or i is outside the buffer.
func (b *Buffer[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(b.slots) {
		var zero T
		return zero, false
	}
	s := b.slots[i]
	return s.v, s.ok
}

// Set stores v at i. i must be within the buffer.
func (b *Buffer[T]) Set(i int, v T) {
	b.slots[i] = slot[T]{v: v, ok: true}
}

// Clear empties the slot at i. i must be within the buffer.
func (b *Buffer[T]) Clear(i int) {
	b.slots[i] = slot[T]{}
}

// Count returns the number of occupied slots.
func (b *Buffer[T]) Count() int {
	n := 0
	for _, s := range b.slots {
		if s.ok {
			n++
		}
	}
	return n
}

// All yields occupied slots in ascending index order.
func (b *Buffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, s := range b.slots {
			if s.ok && !yield(i, s.v) {
				return
			}
		}
	}
}

// Relayout replaces the storage with n empty slots and moves every occupied
// slot from its old index i to move(i).
func (b *Buffer[T]) Relayout(n int, move func(old int) int) {
	next := make([]slot[T], n)
	for i, s := range b.slots {
		if s.ok {
			next[move(i)] = s
		}
	}
	b.slots = next
}

// Clone returns an independent copy of the buffer.
func (b *Buffer[T]) Clone() *Buffer[T] {
	slots := make([]slot[T], len(b.slots))
	copy(slots, b.slots)
	return &Buffer[T]{slots: slots}
}
