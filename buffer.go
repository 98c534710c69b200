package gcmsiv

import "runtime"

// buffer is a growable byte buffer for the accumulated message. Unlike
// bytes.Buffer it can wipe its entire backing array, including bytes past the
// current length left behind by earlier messages.
type buffer struct {
	data []byte
}

func (b *buffer) write(p []byte) {
	b.data = append(b.data, p...)
}

func (b *buffer) bytes() []byte {
	return b.data
}

func (b *buffer) len() int {
	return len(b.data)
}

// reset wipes the backing array and truncates the buffer to zero length,
// keeping the capacity for the next message.
func (b *buffer) reset() {
	wipe(b.data[:cap(b.data)])
	b.data = b.data[:0]
}

// wipe zeroes p. The noinline pragma and KeepAlive prevent the compiler from
// eliding the stores as dead.
//
//go:noinline
func wipe(p []byte) {
	for i := range p {
		p[i] = 0
	}

	runtime.KeepAlive(p)
}
