package gcmsiv

import "encoding/binary"

// hasher accumulates a POLYVAL hash over a byte stream of arbitrary chunking.
// The running hash is kept in GHASH byte order; every input block is
// byte-reversed before folding so that the byte-order convention of the
// multiplier is confined to this type.
type hasher struct {
	mul    Multiplier
	hash   [blockSize]byte
	cache  [blockSize]byte
	cached int
	count  uint64
}

// update absorbs p. Full blocks are folded immediately; a trailing partial
// block is cached until more input arrives or the hash is completed. The byte
// count always advances by exactly len(p).
func (h *hasher) update(p []byte) {
	h.count += uint64(len(p))

	if h.cached > 0 {
		n := copy(h.cache[h.cached:], p)
		h.cached += n
		p = p[n:]

		if h.cached < blockSize {
			return
		}

		h.fold(h.cache[:])
		h.cached = 0
	}

	for len(p) >= blockSize {
		h.fold(p[:blockSize])
		p = p[blockSize:]
	}

	if len(p) > 0 {
		h.cached = copy(h.cache[:], p)
	}
}

// complete folds any cached partial block, zero-padded to a full block. It is
// called exactly once per message, when the hasher's phase closes.
func (h *hasher) complete() {
	if h.cached == 0 {
		return
	}

	for i := h.cached; i < blockSize; i++ {
		h.cache[i] = 0
	}

	h.fold(h.cache[:])
	h.cached = 0
}

// foldLengths folds the final length block: the bit counts of the associated
// data and of the message, little-endian in POLYVAL byte order.
func (h *hasher) foldLengths(aadBytes, dataBytes uint64) {
	var block [blockSize]byte
	binary.LittleEndian.PutUint64(block[:8], aadBytes*8)
	binary.LittleEndian.PutUint64(block[8:], dataBytes*8)

	h.fold(block[:])
}

// fold absorbs one full block, given in POLYVAL byte order.
func (h *hasher) fold(block []byte) {
	for i := 0; i < blockSize; i++ {
		h.hash[i] ^= block[blockSize-1-i]
	}

	h.mul.MulH(h.hash[:])
}

// sum writes the POLYVAL output, reversing the hash back into POLYVAL byte
// order.
func (h *hasher) sum(dst *[blockSize]byte) {
	for i := 0; i < blockSize; i++ {
		dst[i] = h.hash[blockSize-1-i]
	}
}

// reset clears the hash, the cache, and the byte count.
func (h *hasher) reset() {
	h.hash = [blockSize]byte{}
	h.cache = [blockSize]byte{}
	h.cached = 0
	h.count = 0
}
