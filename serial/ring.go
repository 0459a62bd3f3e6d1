package serial

import "go.uber.org/atomic"

// RingBuffer is a fixed-capacity byte queue with one producer and one
// consumer. The producer owns tail, the consumer owns head, and count is the
// only field both sides update.
//
// On the receive side the producer is a DMA channel writing straight into
// Bytes; it never checks for free space, so count may grow past the capacity.
// Read detects that, skips the overwritten bytes and reports an overrun.
type RingBuffer struct {
	buf   []byte
	head  int
	tail  int
	count atomic.Int32
}

// NewRingBuffer returns an empty buffer holding up to size bytes.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{buf: make([]byte, size)}
}

// Cap returns the capacity.
func (r *RingBuffer) Cap() int { return len(r.buf) }

// Len returns the number of queued bytes. It may exceed Cap after an
// overrun until the next Read.
func (r *RingBuffer) Len() int { return int(r.count.Load()) }

// Free returns the space left for Write.
func (r *RingBuffer) Free() int {
	return max(len(r.buf)-r.Len(), 0)
}

// Bytes exposes the storage to a DMA producer.
func (r *RingBuffer) Bytes() []byte { return r.buf }

// Tail returns the producer index.
func (r *RingBuffer) Tail() int { return r.tail }

// Write queues as much of p as fits and returns how many bytes it took.
func (r *RingBuffer) Write(p []byte) int {
	n := min(len(p), r.Free())
	if n == 0 {
		return 0
	}

	first := copy(r.buf[r.tail:], p[:n])
	copy(r.buf, p[first:n])
	r.tail = (r.tail + n) % len(r.buf)

	r.count.Add(int32(n))
	return n
}

// Produce accounts for n bytes the producer already placed at Tail. It
// reports whether the unread data now exceeds the capacity.
func (r *RingBuffer) Produce(n int) (overrun bool) {
	if n <= 0 {
		return false
	}
	r.tail = (r.tail + n) % len(r.buf)
	return int(r.count.Add(int32(n))) > len(r.buf)
}

// Read moves up to len(p) bytes into p in FIFO order. When the producer
// lapped the consumer only the newest Cap bytes are left, the older ones are
// dropped and overrun is true.
func (r *RingBuffer) Read(p []byte) (n int, overrun bool) {
	available := r.Len()
	excess := 0
	if available > len(r.buf) {
		excess = available - len(r.buf)
		available = len(r.buf)
		r.head = (r.head + excess) % len(r.buf)
		overrun = true
	}

	n = min(len(p), available)
	if n > 0 {
		first := copy(p[:n], r.buf[r.head:])
		copy(p[first:n], r.buf)
		r.head = (r.head + n) % len(r.buf)
	}

	if n+excess > 0 {
		r.count.Sub(int32(n + excess))
	}
	return n, overrun
}

// Contiguous returns the queued bytes starting at head up to the end of the
// storage, the largest chunk a single DMA transfer can send.
func (r *RingBuffer) Contiguous() []byte {
	n := min(r.Len(), len(r.buf)-r.head)
	if n <= 0 {
		return nil
	}
	return r.buf[r.head : r.head+n]
}

// Consume drops n bytes from the head once they were sent.
func (r *RingBuffer) Consume(n int) {
	if n <= 0 {
		return
	}
	r.head = (r.head + n) % len(r.buf)
	r.count.Sub(int32(n))
}
