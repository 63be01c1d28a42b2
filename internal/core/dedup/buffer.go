// Package dedup holds recently seen messages so that copies of the same
// transmission heard by several receivers collapse into one.
package dedup

import "container/list"

// Buffer is a bounded, insertion-ordered map. It is not safe for concurrent
// use; callers serialize access.
type Buffer[V any] struct {
	capacity int
	index    map[string]*list.Element
	order    *list.List
}

// Entry is one buffered key/value pair.
type Entry[V any] struct {
	Key   string
	Value V
}

// New creates a buffer holding at most capacity entries. A capacity below
// one is treated as one.
func New[V any](capacity int) *Buffer[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[V]{
		capacity: capacity,
		index:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Insert adds value under key. If key is already buffered, merge folds value
// into the existing entry and its position is kept. When the buffer grows past
// capacity the oldest entry is removed and returned.
func (b *Buffer[V]) Insert(key string, value V, merge func(existing, incoming V)) (Entry[V], bool) {
	if elem, ok := b.index[key]; ok {
		if merge != nil {
			merge(elem.Value.(*Entry[V]).Value, value)
		}
		return Entry[V]{}, false
	}

	b.index[key] = b.order.PushBack(&Entry[V]{Key: key, Value: value})
	if b.order.Len() <= b.capacity {
		return Entry[V]{}, false
	}

	oldest := b.order.Front()
	entry := oldest.Value.(*Entry[V])
	b.order.Remove(oldest)
	delete(b.index, entry.Key)
	return *entry, true
}

// Get returns the buffered value for key.
func (b *Buffer[V]) Get(key string) (V, bool) {
	elem, ok := b.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return elem.Value.(*Entry[V]).Value, true
}

// Drain removes and returns every entry, oldest first.
func (b *Buffer[V]) Drain() []Entry[V] {
	out := make([]Entry[V], 0, b.order.Len())
	for elem := b.order.Front(); elem != nil; elem = elem.Next() {
		out = append(out, *elem.Value.(*Entry[V]))
	}
	b.order.Init()
	b.index = make(map[string]*list.Element)
	return out
}

func (b *Buffer[V]) Len() int { return b.order.Len() }

func (b *Buffer[V]) Capacity() int { return b.capacity }
