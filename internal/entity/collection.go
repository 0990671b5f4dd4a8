// Package entity holds the things that live on a cave floor and the deferred
// collection the game loop keeps them in.
package entity

import (
	"errors"
	"slices"
	"sort"
)

// ErrMutationDuringIteration is the panic value when an instant mutation is
// attempted from inside Each.
var ErrMutationDuringIteration = errors.New("entity: collection mutated during iteration")

// Collection is an ordered set of items that is never structurally changed while
// it is being iterated. Add and Remove are staged and take effect at Flush, which
// the loop calls once per tick after its update and draw passes.
type Collection[T comparable] struct {
	items     []T
	toAdd     []T
	toRemove  []T
	after     []func()
	z         func(T) int
	iterating int
}

// NewCollection creates an empty collection ordered by z, lowest first.
// A nil z keeps insertion order.
func NewCollection[T comparable](z func(T) int) *Collection[T] {
	if z == nil {
		z = func(T) int { return 0 }
	}
	return &Collection[T]{z: z}
}

// Add stages item for insertion at the next Flush.
func (c *Collection[T]) Add(item T) {
	c.toAdd = append(c.toAdd, item)
}

// Remove stages item for removal at the next Flush.
func (c *Collection[T]) Remove(item T) {
	c.toRemove = append(c.toRemove, item)
}

// DoAfterRender queues fn to run once at the end of the next Flush.
func (c *Collection[T]) DoAfterRender(fn func()) {
	c.after = append(c.after, fn)
}

// AddInstantly inserts item now and re-sorts.
func (c *Collection[T]) AddInstantly(item T) {
	c.guard()
	c.items = append(c.items, item)
	c.sort()
}

// AddAll inserts items now and re-sorts once.
func (c *Collection[T]) AddAll(items ...T) {
	c.guard()
	c.items = append(c.items, items...)
	c.sort()
}

// RemoveInstantly deletes the first occurrence of item now. It reports whether
// the item was present.
func (c *Collection[T]) RemoveInstantly(item T) bool {
	c.guard()
	return c.removeLive(item)
}

// Clear empties the collection and drops anything staged. Queued after-render
// callbacks are kept.
func (c *Collection[T]) Clear() {
	c.guard()
	c.items = nil
	c.toAdd = nil
	c.toRemove = nil
}

// Flush applies staged additions, re-sorts by z, applies staged removals, clears
// the staging lists and finally runs queued callbacks in the order they were
// queued. Callbacks queued while running are kept for the next Flush.
func (c *Collection[T]) Flush() {
	c.guard()

	if len(c.toAdd) > 0 {
		c.items = append(c.items, c.toAdd...)
	}
	c.sort()
	for _, item := range c.toRemove {
		c.removeLive(item)
	}
	c.toAdd = nil
	c.toRemove = nil

	callbacks := c.after
	c.after = nil
	for _, fn := range callbacks {
		fn()
	}
}

// Each calls fn for every live item in z order. Staged changes are not visible.
func (c *Collection[T]) Each(fn func(T)) {
	c.iterating++
	defer func() { c.iterating-- }()
	for _, item := range c.items {
		fn(item)
	}
}

// Len returns the number of live items.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Contains reports whether item is live.
func (c *Collection[T]) Contains(item T) bool {
	return slices.Contains(c.items, item)
}

// Items returns a copy of the live items in z order.
func (c *Collection[T]) Items() []T {
	return slices.Clone(c.items)
}

// Pending reports how many additions and removals are staged.
func (c *Collection[T]) Pending() (adds, removes int) {
	return len(c.toAdd), len(c.toRemove)
}

func (c *Collection[T]) guard() {
	if c.iterating > 0 {
		panic(ErrMutationDuringIteration)
	}
}

func (c *Collection[T]) sort() {
	sort.SliceStable(c.items, func(i, j int) bool {
		return c.z(c.items[i]) < c.z(c.items[j])
	})
}

func (c *Collection[T]) removeLive(item T) bool {
	i := slices.Index(c.items, item)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true
}
