package chat

const defaultInboxSize = 128

// RingBuffer is a fixed-capacity byte ring. One slot is kept permanently
// unused so that full and empty are distinguishable from the two indices
// alone: a ring of total size N holds at most N-1 bytes. There is no
// overwrite-on-full policy; producers check Remaining before writing.
//
// All buffers are owned and mutated by the event loop only, so the type
// carries no locking.
type RingBuffer struct {
	buf []byte
	r   int
	w   int
}

// NewRingBuffer returns a ring of the given total size. Sizes below two
// cannot hold a single byte and fall back to the default inbox size.
func NewRingBuffer(size int) *RingBuffer {
	if size < 2 {
		size = defaultInboxSize
	}
	return &RingBuffer{buf: make([]byte, size)}
}

// Push appends one byte. It reports false, leaving the buffer unchanged,
// when the buffer is full.
func (rb *RingBuffer) Push(b byte) bool {
	next := (rb.w + 1) % len(rb.buf)
	if next == rb.r {
		return false
	}
	rb.buf[rb.w] = b
	rb.w = next
	return true
}

// Pop removes and returns the oldest byte; ok is false on an empty buffer.
func (rb *RingBuffer) Pop() (byte, bool) {
	if rb.r == rb.w {
		return 0, false
	}
	b := rb.buf[rb.r]
	rb.r = (rb.r + 1) % len(rb.buf)
	return b, true
}

// PushSlice copies bytes from src into the ring, stopping at the first
// failed push. It returns how many bytes were copied.
func (rb *RingBuffer) PushSlice(src []byte) int {
	for i, b := range src {
		if !rb.Push(b) {
			return i
		}
	}
	return len(src)
}

// PopSlice fills dst with up to len(dst) buffered bytes and returns how
// many were popped.
func (rb *RingBuffer) PopSlice(dst []byte) int {
	for i := range dst {
		b, ok := rb.Pop()
		if !ok {
			return i
		}
		dst[i] = b
	}
	return len(dst)
}

// Len returns the number of buffered bytes.
func (rb *RingBuffer) Len() int {
	if rb.w >= rb.r {
		return rb.w - rb.r
	}
	return rb.w - rb.r + len(rb.buf)
}

// Cap returns the total ring size, one more than the usable capacity.
func (rb *RingBuffer) Cap() int {
	return len(rb.buf)
}

// Remaining returns how many more bytes fit before the ring is full.
func (rb *RingBuffer) Remaining() int {
	return len(rb.buf) - 1 - rb.Len()
}

// Clear discards buffered content without releasing storage.
func (rb *RingBuffer) Clear() {
	rb.r = rb.w
}
