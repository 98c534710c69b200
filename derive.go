package gcmsiv

import (
	"crypto/cipher"
	"encoding/binary"
)

// deriveKeys derives the per-message subkeys from the master key and nonce:
// a 16-byte MAC subkey and an encryption subkey the same length as the master
// key. Each block-cipher call contributes its first 8 bytes of output; the
// input block is a little-endian 32-bit counter followed by the nonce.
func deriveKeys(master cipher.Block, keyLen int, nonce []byte) (macKey [blockSize]byte, encKey []byte) {
	var in, out [blockSize]byte
	copy(in[4:], nonce)

	encKey = make([]byte, keyLen)

	block := func(dst []byte, counter uint32) {
		binary.LittleEndian.PutUint32(in[:4], counter)
		master.Encrypt(out[:], in[:])
		copy(dst, out[:8])
	}

	block(macKey[0:8], 0)
	block(macKey[8:16], 1)

	block(encKey[0:8], 2)
	block(encKey[8:16], 3)

	if keyLen == 32 {
		block(encKey[16:24], 4)
		block(encKey[24:32], 5)
	}

	wipe(out[:])

	return macKey, encKey
}
