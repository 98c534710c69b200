package gcmsiv

import (
	"crypto/cipher"
	"encoding/binary"
)

// applyKeystream encrypts or decrypts src into dst in counter mode. The
// initial counter block is the tag with the top bit of its final byte forced
// on; only the first four bytes increment, as a little-endian 32-bit integer,
// which bounds a single message to 2^32 blocks.
func applyKeystream(b cipher.Block, tag *[blockSize]byte, dst, src []byte) {
	var block, ks [blockSize]byte
	block = *tag
	block[blockSize-1] |= 0x80

	counter := binary.LittleEndian.Uint32(block[:4])

	for len(src) > 0 {
		b.Encrypt(ks[:], block[:])

		counter++
		binary.LittleEndian.PutUint32(block[:4], counter)

		n := len(src)
		if n > blockSize {
			n = blockSize
		}

		for i := 0; i < n; i++ {
			dst[i] = src[i] ^ ks[i]
		}

		dst = dst[n:]
		src = src[n:]
	}

	wipe(ks[:])
}
