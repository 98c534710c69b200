// Package ghash implements multiplication in GF(2^128) using the bit ordering
// of the GCM specification. POLYVAL values are mapped into this field by
// reversing their bytes; that mapping, together with the MulX doubling of the
// hash key, is the standard GHASH/POLYVAL equivalence and must be treated as a
// single unit. Changing any one piece produces a non-interoperable variant.
package ghash

import (
	"encoding/binary"
)

// BlockSize is the width in bytes of a field element.
const BlockSize = 16

// element is a value in GF(2^128) with its bits stored in the GCM
// specification's reflected order: the coefficient of x^0 is lo>>63 and the
// coefficient of x^127 is hi&1.
type element struct {
	lo, hi uint64
}

func load(p []byte) element {
	return element{
		lo: binary.BigEndian.Uint64(p[:8]),
		hi: binary.BigEndian.Uint64(p[8:16]),
	}
}

func (e element) store(p []byte) {
	binary.BigEndian.PutUint64(p[:8], e.lo)
	binary.BigEndian.PutUint64(p[8:16], e.hi)
}

// double multiplies e by x. Because of the reflected bit ordering this is a
// right shift, with the reduction polynomial 1+x+x^2+x^7+x^128 folded back in
// whenever the x^127 coefficient overflows.
func double(e element) element {
	msbSet := e.hi&1 == 1

	var d element
	d.hi = e.hi >> 1
	d.hi |= e.lo << 63
	d.lo = e.lo >> 1

	if msbSet {
		d.lo ^= 0xe100000000000000
	}

	return d
}

func add(x, y element) element {
	return element{lo: x.lo ^ y.lo, hi: x.hi ^ y.hi}
}

// MulX doubles a serialized field element. It is used once at key setup to
// turn a byte-reversed POLYVAL hash key into the equivalent GHASH key.
func MulX(dst, src []byte) {
	double(load(src)).store(dst)
}

// reverseBits reverses the order of the bits of a 4-bit number.
func reverseBits(i int) int {
	i = ((i << 2) & 0xc) | ((i >> 2) & 0x3)
	i = ((i << 1) & 0xa) | ((i >> 1) & 0x5)
	return i
}

// reductionTable folds the low nibble shifted out during multiplication back
// into the element, pre-multiplied by the reduction polynomial.
var reductionTable = [16]uint16{
	0x0000, 0x1c20, 0x3840, 0x2460, 0x7080, 0x6ca0, 0x48c0, 0x54e0,
	0xe100, 0xfd20, 0xd940, 0xc560, 0x9180, 0x8da0, 0xa9c0, 0xb5e0,
}

// Table is a key-dependent multiplier: it fixes a hash key H once and then
// computes x*H for arbitrary elements using a sixteen-entry table of multiples
// of H, four bits at a time.
type Table struct {
	// productTable holds the first sixteen multiples of H, indexed by
	// bit-reversed nibble to match the reflected field ordering.
	productTable [16]element
}

// Init fixes the hash key. h must be 16 bytes, already in GHASH byte order.
// It may be called again to re-key the table.
func (t *Table) Init(h []byte) {
	if len(h) != BlockSize {
		panic("ghash: hash key must be 16 bytes")
	}

	x := load(h)

	t.productTable = [16]element{}
	t.productTable[reverseBits(1)] = x

	for i := 2; i < 16; i += 2 {
		t.productTable[reverseBits(i)] = double(t.productTable[reverseBits(i/2)])
		t.productTable[reverseBits(i+1)] = add(t.productTable[reverseBits(i)], x)
	}
}

// MulH sets x = x*H in place. x must be 16 bytes in GHASH byte order.
func (t *Table) MulH(x []byte) {
	y := load(x)

	var z element

	for i := 0; i < 2; i++ {
		word := y.hi
		if i == 1 {
			word = y.lo
		}

		// Multiply z by 16 and add in one of the precomputed multiples of H.
		for j := 0; j < 64; j += 4 {
			msw := z.hi & 0xf
			z.hi >>= 4
			z.hi |= z.lo << 60
			z.lo >>= 4
			z.lo ^= uint64(reductionTable[msw]) << 48

			p := t.productTable[word&0xf]
			z.lo ^= p.lo
			z.hi ^= p.hi
			word >>= 4
		}
	}

	z.store(x)
}
