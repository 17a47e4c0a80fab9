package didl

import "errors"

// ErrBufferCapExceeded is returned by Buffer.Reserve when growing would
// exceed an optional hard cap. The caller truncates at the last complete
// element rather than emitting malformed XML.
var ErrBufferCapExceeded = errors.New("didl: response buffer capacity exceeded")

const (
	chunkSize = 64 * 1024
	headroom  = 8 * 1024
)

// Buffer is the growable byte buffer the renderer appends DIDL-Lite
// fragments into. Capacity heuristics (8KiB headroom, 64KiB chunks) are
// retained verbatim from the source design: renderer truncation is
// observable to clients, so the growth behavior is part of the contract,
// not an implementation detail.
type Buffer struct {
	buf    []byte
	maxCap int // 0 means unbounded
}

// NewBuffer creates a Buffer with an optional hard cap (0 = unbounded).
func NewBuffer(maxCap int) *Buffer {
	initial := chunkSize
	if maxCap > 0 && maxCap < initial {
		initial = maxCap
	}
	return &Buffer{buf: make([]byte, 0, initial), maxCap: maxCap}
}

// Reserve ensures there is room for at least n more bytes, growing in
// chunkSize increments once remaining capacity drops below headroom.
func (b *Buffer) Reserve(n int) error {
	remaining := cap(b.buf) - len(b.buf)
	if remaining >= n && remaining >= headroom {
		return nil
	}

	grow := chunkSize
	for grow < n {
		grow *= 2
	}
	newCap := cap(b.buf) + grow

	if b.maxCap > 0 && newCap > b.maxCap {
		if cap(b.buf)-len(b.buf) >= n {
			return nil
		}
		return ErrBufferCapExceeded
	}

	grown := make([]byte, len(b.buf), newCap)
	copy(grown, b.buf)
	b.buf = grown
	return nil
}

// Append adds bytes to the buffer, growing first if needed. If growth
// fails (hard cap exceeded), the buffer is left unmodified and the error
// is returned so the caller can stop at the last complete element.
func (b *Buffer) Append(p []byte) error {
	if err := b.Reserve(len(p)); err != nil {
		return err
	}
	b.buf = append(b.buf, p...)
	return nil
}

// AppendString is a convenience wrapper around Append for string literals
// built by the renderer.
func (b *Buffer) AppendString(s string) error {
	return b.Append([]byte(s))
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Bytes returns the buffer's current contents. The returned slice aliases
// internal storage and must not be retained past the next Append.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// String returns a copy of the buffer's current contents.
func (b *Buffer) String() string {
	return string(b.buf)
}

// Truncate drops the buffer back to n bytes, used to roll back to the last
// complete <item>/<container> element when a mid-element append fails.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > len(b.buf) {
		return
	}
	b.buf = b.buf[:n]
}
