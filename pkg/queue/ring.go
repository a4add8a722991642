package queue

// minRingSize is the initial slot count of a growable ring.
const minRingSize = 16

// ring is a circular buffer of slots indexed by read (head) and write (tail)
// cursors. Slots are constructed on put and zeroed on take so the ring never
// retains references to items it no longer owns. It is not safe for
// concurrent use; the owning queue serializes access.
type ring[T any] struct {
	slots    []T
	head     int
	tail     int
	count    int
	growable bool
}

func newRing[T any](size int, growable bool) ring[T] {
	if growable && size < minRingSize {
		size = minRingSize
	}
	return ring[T]{
		slots:    make([]T, size),
		growable: growable,
	}
}

// put constructs v in the slot under the write cursor.
func (r *ring[T]) put(v T) {
	if r.count == len(r.slots) {
		if !r.growable {
			// Callers hold an open-slot permit, so this is unreachable unless
			// the permit accounting is broken.
			panic("queue: ring overflow")
		}
		r.grow()
	}
	r.slots[r.tail] = v
	r.tail = (r.tail + 1) % len(r.slots)
	r.count++
}

// take moves the item under the read cursor out and destroys its slot.
func (r *ring[T]) take() T {
	if r.count == 0 {
		panic("queue: ring underflow")
	}
	var zero T
	v := r.slots[r.head]
	r.slots[r.head] = zero
	r.head = (r.head + 1) % len(r.slots)
	r.count--
	return v
}

// at returns the i-th item counted from the head. i must be in [0, count).
func (r *ring[T]) at(i int) T {
	return r.slots[(r.head+i)%len(r.slots)]
}

func (r *ring[T]) len() int {
	return r.count
}

func (r *ring[T]) size() int {
	return len(r.slots)
}

// grow doubles the slot array and unwraps the items to start at index 0.
func (r *ring[T]) grow() {
	n := len(r.slots) * 2
	if n < minRingSize {
		n = minRingSize
	}
	slots := make([]T, n)
	if r.count > 0 {
		if r.head < r.tail {
			copy(slots, r.slots[r.head:r.tail])
		} else {
			k := copy(slots, r.slots[r.head:])
			copy(slots[k:], r.slots[:r.tail])
		}
	}
	r.slots = slots
	r.head = 0
	r.tail = r.count
}
