package gcmsiv

import "github.com/codahale/gcmsiv/internal/ghash"

// Multiplier is the field-multiplication capability the mode is built on:
// a fixed hash key H and an in-place multiply-by-H over GF(2^128). The hash
// key and all inputs are in GHASH byte order; the POLYVAL byte reversal
// happens in the hasher, not here. Implementations may be table-driven
// software or hardware-accelerated; the controller does not care.
type Multiplier interface {
	// Init fixes the 16-byte hash key H. It is called once per cipher
	// initialization and may be called again to re-key.
	Init(h []byte)

	// MulH sets x = x*H in place. x is always 16 bytes.
	MulH(x []byte)
}

// NewTableMultiplier returns the default software multiplier, which trades
// 256 bytes of key-dependent tables for a nibble-at-a-time multiply.
func NewTableMultiplier() Multiplier {
	return new(ghash.Table)
}

// polyvalKey converts a raw POLYVAL hash key into the equivalent GHASH hash
// key: reverse the bytes, then double once in the field. Verified against the
// RFC 8452 appendix A vectors; the two steps are meaningless in isolation.
func polyvalKey(dst, src []byte) {
	var rev [blockSize]byte
	for i := range rev {
		rev[i] = src[blockSize-1-i]
	}

	ghash.MulX(dst, rev[:])
}
