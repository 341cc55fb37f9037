package keyboard

import (
	syscpu "golang.org/x/sys/cpu"
	"sync/atomic"
)

// BufferSize is the capacity of the character ring buffer. One slot is
// always left empty to tell a full buffer apart from an empty one.
const BufferSize = 256

// ringBuffer is a single-producer/single-consumer byte queue. Only the
// producer (the IRQ handler) advances wIndex and only the consumer advances
// rIndex; acquire/release ordering of the two indices is all the
// synchronization it needs. It must not be guarded by a lock: the IRQ
// handler would deadlock against a lock held by the interrupted consumer.
type ringBuffer struct {
	buffer [BufferSize]byte

	_      syscpu.CacheLinePad
	wIndex atomic.Uint32
	_      syscpu.CacheLinePad
	rIndex atomic.Uint32
}

// push appends b to the buffer. If the buffer is full, b is dropped and push
// returns false.
//
//go:nosplit
func (rb *ringBuffer) push(b byte) bool {
	w := rb.wIndex.Load()
	next := (w + 1) % BufferSize
	if next == rb.rIndex.Load() {
		return false
	}

	rb.buffer[w] = b
	rb.wIndex.Store(next)
	return true
}

// pop removes the oldest byte from the buffer. It returns false if the buffer
// is empty.
func (rb *ringBuffer) pop() (byte, bool) {
	r := rb.rIndex.Load()
	if r == rb.wIndex.Load() {
		return 0, false
	}

	b := rb.buffer[r]
	rb.rIndex.Store((r + 1) % BufferSize)
	return b, true
}

// len returns the number of buffered bytes.
func (rb *ringBuffer) len() int {
	return int((rb.wIndex.Load() + BufferSize - rb.rIndex.Load()) % BufferSize)
}
