package main

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/alecthomas/kong"
	"github.com/codahale/gcmsiv"
	"golang.org/x/crypto/argon2"
)

// A passphrase-encrypted message carries the Argon2id salt ahead of the
// nonce: salt ‖ nonce ‖ ciphertext ‖ tag. A key-file message omits the salt.
const saltSize = 16

// Argon2id parameters, per the RFC 9106 second recommended option.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

type encryptCmd struct {
	Input  string `arg:"" optional:"" default:"-" help:"The path to the plaintext file."`
	Output string `arg:"" optional:"" type:"path" default:"-" help:"The path to the ciphertext file."`

	Key        string `type:"existingfile" xor:"key" help:"The path to the key file."`
	Passphrase bool   `xor:"key" help:"Derive the key from a passphrase."`
	AAD        string `help:"Additional authenticated data."`
	Armor      bool   `help:"Base64-encode the output."`
}

func (cmd *encryptCmd) Run(_ *kong.Context) error {
	var salt []byte

	var key []byte

	switch {
	case cmd.Passphrase:
		pwd, err := askPassphrase("Enter passphrase: ")
		if err != nil {
			return err
		}

		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return err
		}

		key = argon2.IDKey(pwd, salt, argonTime, argonMemory, argonThreads, gcmsiv.KeySize256)
	case cmd.Key != "":
		var err error

		key, err = readKey(cmd.Key)
		if err != nil {
			return err
		}
	default:
		return errors.New("either --key or --passphrase is required")
	}

	src, err := openInput(cmd.Input, false)
	if err != nil {
		return err
	}

	defer func() { _ = src.Close() }()

	plaintext, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcmsiv.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	aead, err := gcmsiv.NewAEAD(key)
	if err != nil {
		return err
	}

	out := aead.Seal(append(salt, nonce...), nonce, plaintext, []byte(cmd.AAD))

	dst, err := openOutput(cmd.Output, cmd.Armor)
	if err != nil {
		return err
	}

	if _, err := dst.Write(out); err != nil {
		_ = dst.Close()
		return err
	}

	return dst.Close()
}
