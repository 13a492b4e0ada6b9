package queue

// deque is a growable ring buffer. It is not safe for concurrent use.
type deque[T any] struct {
	buf  []T
	head int
	n    int
}

func newDeque[T any](capacity int) deque[T] {
	if capacity < 1 {
		capacity = 1
	}
	return deque[T]{buf: make([]T, capacity)}
}

func (d *deque[T]) len() int { return d.n }

func (d *deque[T]) grow() {
	if d.n < len(d.buf) {
		return
	}
	size := len(d.buf) * 2
	if size == 0 {
		size = 1
	}
	buf := make([]T, size)
	for i := 0; i < d.n; i++ {
		buf[i] = d.buf[(d.head+i)%len(d.buf)]
	}
	d.buf = buf
	d.head = 0
}

func (d *deque[T]) pushBack(v T) {
	d.grow()
	d.buf[(d.head+d.n)%len(d.buf)] = v
	d.n++
}

func (d *deque[T]) pushFront(v T) {
	d.grow()
	d.head = (d.head - 1 + len(d.buf)) % len(d.buf)
	d.buf[d.head] = v
	d.n++
}

func (d *deque[T]) popFront() (T, bool) {
	var zero T
	if d.n == 0 {
		return zero, false
	}
	v := d.buf[d.head]
	d.buf[d.head] = zero
	d.head = (d.head + 1) % len(d.buf)
	d.n--
	return v, true
}

// drain removes every item in FIFO order.
func (d *deque[T]) drain() []T {
	out := make([]T, 0, d.n)
	for {
		v, ok := d.popFront()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
