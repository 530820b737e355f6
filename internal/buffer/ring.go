package buffer

// Ring is a fixed-capacity ring buffer. Once full, new entries evict the
// oldest. Not safe for concurrent use; callers hold their own lock.
type Ring[T any] struct {
	slots []T
	head  int
	size  int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{slots: make([]T, capacity)}
}

func (r *Ring[T]) Add(entry T) {
	if r == nil || len(r.slots) == 0 {
		return
	}
	if r.size < len(r.slots) {
		r.slots[(r.head+r.size)%len(r.slots)] = entry
		r.size++
		return
	}
	r.slots[r.head] = entry
	r.head = (r.head + 1) % len(r.slots)
}

func (r *Ring[T]) Len() int {
	if r == nil {
		return 0
	}
	return r.size
}

// List returns the buffered entries, oldest first.
func (r *Ring[T]) List() []T {
	if r == nil || r.size == 0 {
		return nil
	}
	out := make([]T, r.size)
	for i := range out {
		out[i] = r.slots[(r.head+i)%len(r.slots)]
	}
	return out
}
