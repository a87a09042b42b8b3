package audio

import (
	"fmt"

	"dcpkit/internal/services"
)

// MaxFrameBufferSize caps a single frame reservation (64 MiB).
const MaxFrameBufferSize = 64 << 20

// FrameBuffer is an owned byte buffer that never grows implicitly: Reserve
// must be called before a frame larger than Capacity is written.
type FrameBuffer struct {
	data []byte
	size int
}

// NewFrameBuffer returns a buffer with at least capacity bytes reserved.
func NewFrameBuffer(capacity int) (*FrameBuffer, error) {
	buf := &FrameBuffer{}
	if err := buf.Reserve(capacity); err != nil {
		return nil, err
	}
	return buf, nil
}

// Reserve ensures Capacity is at least n. Growing discards the current
// contents.
func (b *FrameBuffer) Reserve(n int) error {
	if n < 0 || n > MaxFrameBufferSize {
		return services.Wrap(services.ErrAllocation, "audio", "reserve",
			fmt.Sprintf("%d bytes exceeds the %d byte frame limit", n, MaxFrameBufferSize), nil)
	}
	if n <= cap(b.data) {
		return nil
	}
	b.data = make([]byte, n)
	b.size = 0
	return nil
}

// Capacity returns the number of reserved bytes.
func (b *FrameBuffer) Capacity() int { return cap(b.data) }

// Size returns the number of valid bytes.
func (b *FrameBuffer) Size() int { return b.size }

// Bytes returns the valid portion of the buffer. The slice is reused by the
// next write.
func (b *FrameBuffer) Bytes() []byte { return b.data[:b.size] }

// Reset marks the buffer empty without releasing capacity.
func (b *FrameBuffer) Reset() { b.size = 0 }

// fill exposes n writable bytes and records them as the buffer contents.
func (b *FrameBuffer) fill(n int) ([]byte, error) {
	if n > cap(b.data) {
		return nil, services.Wrap(services.ErrAllocation, "audio", "write frame",
			fmt.Sprintf("frame of %d bytes exceeds buffer capacity %d", n, cap(b.data)), nil)
	}
	b.data = b.data[:cap(b.data)]
	b.size = n
	return b.data[:n], nil
}
