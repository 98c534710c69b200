// Package gcmsiv implements the GCM-SIV nonce-misuse-resistant authenticated
// encryption mode (RFC 8452) on top of a pluggable 128-bit block cipher and a
// pluggable GF(2^128) multiplier.
//
// The Cipher type is a streaming controller: associated data and message data
// are fed in arbitrary-sized chunks and the entire output is produced by
// Finalize. Because the tag is derived from the full message before the
// keystream is fixed, the whole message is buffered in memory, which bounds
// the practical message size well below the construction's theoretical limit.
// For one-shot use, NewAEAD wraps a Cipher in the standard cipher.AEAD
// interface.
package gcmsiv

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
	"math"
)

const (
	// KeySize128 and KeySize256 are the supported master key sizes.
	KeySize128 = 16
	KeySize256 = 32

	// NonceSize is the size of a GCM-SIV nonce.
	NonceSize = 12

	// TagSize is the size of a GCM-SIV authentication tag.
	TagSize = 16

	blockSize = 16

	// The ceilings leave room below the maximum addressable buffer for the
	// appended tag. Decryption's effective ceiling is TagSize larger, since
	// its buffer holds ciphertext plus tag.
	maxAADLen  = math.MaxInt32 - 2*blockSize
	maxDataLen = math.MaxInt32 - 2*blockSize
)

// BlockFactory constructs a block cipher for a key. The returned cipher must
// have a 16-byte block; Init rejects anything else.
type BlockFactory func(key []byte) (cipher.Block, error)

// phase is the controller's position in the fixed call order. Associated data
// is only accepted between initialization and the first byte of message data.
type phase int

const (
	phaseUninitialized phase = iota
	phaseAAD
	phaseData
)

// Cipher is a streaming GCM-SIV controller. It is not safe for concurrent
// use; callers must serialize all calls on an instance or use one instance
// per stream.
type Cipher struct {
	newBlock BlockFactory
	mul      Multiplier

	forEncryption bool
	nonce         [NonceSize]byte
	initialAAD    []byte
	enc           cipher.Block

	aadHasher  hasher
	dataHasher hasher
	buf        buffer
	phase      phase
}

// New returns an uninitialized Cipher using AES and the table-driven
// multiplier.
func New() *Cipher {
	return NewWithPrimitives(aes.NewCipher, NewTableMultiplier())
}

// NewWithPrimitives returns an uninitialized Cipher using the given block
// cipher factory and field multiplier.
func NewWithPrimitives(newBlock BlockFactory, mul Multiplier) *Cipher {
	return &Cipher{newBlock: newBlock, mul: mul}
}

// Init prepares the cipher for a single direction under the given master key
// and nonce, deriving the per-message subkeys and clearing all accumulated
// state. If initialAAD is non-empty it is absorbed into the associated data
// hash now and again after every reset, ahead of any caller-supplied
// associated data.
func (c *Cipher) Init(forEncryption bool, key, nonce, initialAAD []byte) error {
	if len(nonce) != NonceSize {
		return fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrInvalidArgument, NonceSize, len(nonce))
	}

	if len(key) != KeySize128 && len(key) != KeySize256 {
		return fmt.Errorf("%w: key must be %d or %d bytes, got %d",
			ErrInvalidArgument, KeySize128, KeySize256, len(key))
	}

	master, err := c.newBlock(key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	if master.BlockSize() != blockSize {
		return fmt.Errorf("%w: block cipher must have a %d-byte block, got %d",
			ErrInvalidArgument, blockSize, master.BlockSize())
	}

	macKey, encKey := deriveKeys(master, len(key), nonce)

	// Only the multiplier form of the MAC subkey is retained.
	var h [blockSize]byte
	polyvalKey(h[:], macKey[:])
	c.mul.Init(h[:])
	wipe(macKey[:])
	wipe(h[:])

	enc, err := c.newBlock(encKey)
	wipe(encKey)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	c.enc = enc
	c.forEncryption = forEncryption
	copy(c.nonce[:], nonce)
	c.initialAAD = dup(initialAAD)
	c.aadHasher.mul = c.mul
	c.dataHasher.mul = c.mul
	c.reset()

	return nil
}

// UpdateAAD absorbs associated data. It may be called any number of times
// after Init, but not once message data has been seen.
func (c *Cipher) UpdateAAD(p []byte) error {
	switch c.phase {
	case phaseUninitialized:
		return fmt.Errorf("%w: cipher not initialized", ErrIllegalState)
	case phaseData:
		return fmt.Errorf("%w: associated data after message data", ErrIllegalState)
	}

	if c.aadHasher.count+uint64(len(p)) > maxAADLen {
		return fmt.Errorf("%w: associated data exceeds %d bytes", ErrLimitExceeded, maxAADLen)
	}

	c.aadHasher.update(p)

	return nil
}

// Update absorbs message data: plaintext when encrypting, ciphertext plus
// trailing tag when decrypting. The first call permanently closes the
// associated data phase for this message. No output is produced until
// Finalize.
func (c *Cipher) Update(p []byte) error {
	if c.phase == phaseUninitialized {
		return fmt.Errorf("%w: cipher not initialized", ErrIllegalState)
	}

	limit := int64(maxDataLen)
	if !c.forEncryption {
		limit += TagSize
	}

	if int64(c.buf.len())+int64(len(p)) > limit {
		return fmt.Errorf("%w: message exceeds %d bytes", ErrLimitExceeded, limit)
	}

	c.closeAAD()
	c.buf.write(p)

	// Encryption hashes the plaintext as it arrives. Decryption hashes
	// nothing yet: the hash input is the recovered plaintext, which only
	// exists once the full message has been buffered and decrypted.
	if c.forEncryption {
		c.dataHasher.update(p)
	}

	return nil
}

// Finalize completes the message, writing the output to out starting at
// outOff and returning the number of bytes written. When encrypting, the
// output is the ciphertext followed by the 16-byte tag. When decrypting, the
// buffered ciphertext is authenticated and the output is the verified
// plaintext; if authentication fails, every buffered and partially recovered
// byte is wiped before ErrInvalidCiphertext is returned. In both directions
// the cipher is reset afterward, ready for another message under the same
// derived state.
func (c *Cipher) Finalize(out []byte, outOff int) (int, error) {
	if c.phase == phaseUninitialized {
		return 0, fmt.Errorf("%w: cipher not initialized", ErrIllegalState)
	}

	if outOff < 0 || outOff > len(out) {
		return 0, fmt.Errorf("%w: offset %d outside buffer of %d bytes", ErrShortOutput, outOff, len(out))
	}

	c.closeAAD()

	if c.forEncryption {
		return c.finalizeEncrypt(out, outOff)
	}

	return c.finalizeDecrypt(out, outOff)
}

func (c *Cipher) finalizeEncrypt(out []byte, outOff int) (int, error) {
	n := c.buf.len() + TagSize
	if len(out)-outOff < n {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrShortOutput, n, len(out)-outOff)
	}

	tag := c.calculateTag()
	applyKeystream(c.enc, &tag, out[outOff:], c.buf.bytes())
	copy(out[outOff+c.buf.len():], tag[:])
	c.reset()

	return n, nil
}

func (c *Cipher) finalizeDecrypt(out []byte, outOff int) (int, error) {
	if c.buf.len() < TagSize {
		return 0, fmt.Errorf("%w: data too short", ErrInvalidCiphertext)
	}

	n := c.buf.len() - TagSize
	if len(out)-outOff < n {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrShortOutput, n, len(out)-outOff)
	}

	var expected [TagSize]byte
	copy(expected[:], c.buf.bytes()[n:])

	// The expected tag seeds the keystream, so the plaintext can be recovered
	// before the tag is verified. It must not escape if verification fails.
	plaintext := out[outOff : outOff+n]
	applyKeystream(c.enc, &expected, plaintext, c.buf.bytes()[:n])
	c.dataHasher.update(plaintext)

	tag := c.calculateTag()
	if subtle.ConstantTimeCompare(expected[:], tag[:]) != 1 {
		wipe(plaintext)
		c.reset()

		return 0, fmt.Errorf("%w: mac check failed", ErrInvalidCiphertext)
	}

	c.reset()

	return n, nil
}

// OutputSize returns the number of bytes Finalize would write for the data
// buffered so far.
func (c *Cipher) OutputSize() int {
	if c.forEncryption {
		return c.buf.len() + TagSize
	}

	if c.buf.len() < TagSize {
		return 0
	}

	return c.buf.len() - TagSize
}

// Reset discards the current message: the buffered data is wiped, both hashes
// are cleared, and the initial associated data is re-absorbed. The derived
// subkeys are kept, so the cipher accepts a new message for the same key and
// nonce.
func (c *Cipher) Reset() {
	if c.phase == phaseUninitialized {
		return
	}

	c.reset()
}

func (c *Cipher) reset() {
	c.buf.reset()
	c.aadHasher.reset()
	c.dataHasher.reset()
	c.phase = phaseAAD

	if len(c.initialAAD) > 0 {
		c.aadHasher.update(c.initialAAD)
	}
}

// closeAAD transitions from the associated data phase to the data phase,
// folding any cached partial block and carrying the running hash over to the
// data accumulator. Idempotent per message.
func (c *Cipher) closeAAD() {
	if c.phase != phaseAAD {
		return
	}

	c.aadHasher.complete()
	c.dataHasher.hash = c.aadHasher.hash
	c.phase = phaseData
}

// calculateTag completes the data hash, folds in the bit lengths, and turns
// the POLYVAL output into the tag: XOR the nonce over the low 12 bytes, clear
// the top bit of the last byte, encrypt.
func (c *Cipher) calculateTag() [blockSize]byte {
	c.dataHasher.complete()
	c.dataHasher.foldLengths(c.aadHasher.count, c.dataHasher.count)

	var s [blockSize]byte
	c.dataHasher.sum(&s)

	for i := 0; i < NonceSize; i++ {
		s[i] ^= c.nonce[i]
	}

	s[blockSize-1] &= 0x7f
	c.enc.Encrypt(s[:], s[:])

	return s
}

func dup(p []byte) []byte {
	if len(p) == 0 {
		return nil
	}

	d := make([]byte, len(p))
	copy(d, p)

	return d
}
