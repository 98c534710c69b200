package gcmsiv

import "errors"

var (
	// ErrInvalidArgument is returned by Init when the key or nonce has an
	// unsupported length, or when the supplied block cipher does not have a
	// 128-bit block.
	ErrInvalidArgument = errors.New("gcmsiv: invalid argument")

	// ErrIllegalState is returned when an operation is called out of order:
	// processing before Init, or associated data after the data phase opened.
	ErrIllegalState = errors.New("gcmsiv: illegal state")

	// ErrLimitExceeded is returned when a call would push the cumulative
	// associated data or message length past the enforced ceiling. The
	// offending call leaves the cipher state unchanged.
	ErrLimitExceeded = errors.New("gcmsiv: limit exceeded")

	// ErrShortOutput is returned by Finalize when the destination region
	// cannot hold the output at the requested offset.
	ErrShortOutput = errors.New("gcmsiv: output buffer too short")

	// ErrInvalidCiphertext is returned when a ciphertext cannot be decrypted,
	// either because it is shorter than a tag or because authentication
	// failed. On authentication failure all buffered state is wiped before
	// the error is returned.
	ErrInvalidCiphertext = errors.New("gcmsiv: invalid ciphertext")
)
