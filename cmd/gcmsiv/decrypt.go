package main

import (
	"errors"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/codahale/gcmsiv"
	"golang.org/x/crypto/argon2"
)

type decryptCmd struct {
	Input  string `arg:"" optional:"" default:"-" help:"The path to the ciphertext file."`
	Output string `arg:"" optional:"" type:"path" default:"-" help:"The path to the plaintext file."`

	Key        string `type:"existingfile" xor:"key" help:"The path to the key file."`
	Passphrase bool   `xor:"key" help:"Derive the key from a passphrase."`
	AAD        string `help:"Additional authenticated data."`
	Armor      bool   `help:"Base64-decode the input."`
}

func (cmd *decryptCmd) Run(_ *kong.Context) error {
	src, err := openInput(cmd.Input, cmd.Armor)
	if err != nil {
		return err
	}

	defer func() { _ = src.Close() }()

	message, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	var key []byte

	switch {
	case cmd.Passphrase:
		if len(message) < saltSize {
			return errors.New("message too short")
		}

		pwd, err := askPassphrase("Enter passphrase: ")
		if err != nil {
			return err
		}

		key = argon2.IDKey(pwd, message[:saltSize], argonTime, argonMemory, argonThreads, gcmsiv.KeySize256)
		message = message[saltSize:]
	case cmd.Key != "":
		key, err = readKey(cmd.Key)
		if err != nil {
			return err
		}
	default:
		return errors.New("either --key or --passphrase is required")
	}

	if len(message) < gcmsiv.NonceSize+gcmsiv.TagSize {
		return errors.New("message too short")
	}

	aead, err := gcmsiv.NewAEAD(key)
	if err != nil {
		return err
	}

	plaintext, err := aead.Open(nil, message[:gcmsiv.NonceSize], message[gcmsiv.NonceSize:], []byte(cmd.AAD))
	if err != nil {
		return err
	}

	dst, err := openOutput(cmd.Output, false)
	if err != nil {
		return err
	}

	if _, err := dst.Write(plaintext); err != nil {
		_ = dst.Close()

		if cmd.Output != "-" {
			_ = os.Remove(cmd.Output)
		}

		return err
	}

	return dst.Close()
}
