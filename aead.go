package gcmsiv

import (
	"crypto/cipher"
	"strconv"
)

type aead struct {
	enc *Cipher
	dec *Cipher
	key []byte
}

// NewAEAD returns a one-shot cipher.AEAD view of the mode, using AES and the
// table-driven multiplier. The key must be 16 or 32 bytes. The returned value
// reuses a pair of internal Cipher instances across calls and, like Cipher,
// is not safe for concurrent use.
func NewAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize128 && len(key) != KeySize256 {
		return nil, ErrInvalidArgument
	}

	return &aead{enc: New(), dec: New(), key: dup(key)}, nil
}

func (a *aead) NonceSize() int {
	return NonceSize
}

func (a *aead) Overhead() int {
	return TagSize
}

func (a *aead) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) != NonceSize {
		panic("gcmsiv: invalid nonce length: " + strconv.Itoa(len(nonce)))
	}

	if err := a.enc.Init(true, a.key, nonce, nil); err != nil {
		panic(err)
	}

	if err := a.enc.UpdateAAD(additionalData); err != nil {
		panic(err)
	}

	if err := a.enc.Update(plaintext); err != nil {
		panic(err)
	}

	ret, out := sliceForAppend(dst, len(plaintext)+TagSize)

	if _, err := a.enc.Finalize(out, 0); err != nil {
		panic(err)
	}

	return ret
}

func (a *aead) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		panic("gcmsiv: invalid nonce length: " + strconv.Itoa(len(nonce)))
	}

	if err := a.dec.Init(false, a.key, nonce, nil); err != nil {
		return nil, err
	}

	if err := a.dec.UpdateAAD(additionalData); err != nil {
		return nil, err
	}

	if err := a.dec.Update(ciphertext); err != nil {
		return nil, err
	}

	ret, out := sliceForAppend(dst, a.dec.OutputSize())

	if _, err := a.dec.Finalize(out, 0); err != nil {
		return nil, err
	}

	return ret, nil
}

var _ cipher.AEAD = (*aead)(nil)

// sliceForAppend extends in by n bytes, reusing its capacity when possible,
// and returns the extended slice along with the n-byte tail to write to.
func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}

	tail = head[len(in):]

	return
}
