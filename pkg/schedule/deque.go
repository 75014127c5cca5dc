package schedule

// Deque is a double-ended queue. It is not safe for concurrent use; the
// scheduler guards it with its own lock.
type Deque[T any] struct {
	items []T
}

// PushBack appends v.
func (d *Deque[T]) PushBack(v T) { d.items = append(d.items, v) }

// PushFront prepends v.
func (d *Deque[T]) PushFront(v T) {
	var zero T
	d.items = append(d.items, zero)
	copy(d.items[1:], d.items)
	d.items[0] = v
}

// PopFront removes and returns the first element.
func (d *Deque[T]) PopFront() (T, bool) {
	var zero T
	if len(d.items) == 0 {
		return zero, false
	}
	v := d.items[0]
	d.items[0] = zero
	d.items = d.items[1:]
	return v, true
}

// Len returns the number of elements.
func (d *Deque[T]) Len() int { return len(d.items) }

// Items returns a copy of the elements, front first.
func (d *Deque[T]) Items() []T { return append([]T(nil), d.items...) }
