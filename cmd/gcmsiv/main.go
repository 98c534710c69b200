// Command gcmsiv encrypts and decrypts files with AES-GCM-SIV.
package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mr-tron/base58"
	"golang.org/x/term"
)

type cli struct {
	Keygen  keygenCmd  `cmd:"" help:"Generate a new random key."`
	Encrypt encryptCmd `cmd:"" help:"Encrypt a message."`
	Decrypt decryptCmd `cmd:"" help:"Decrypt a message."`
}

func main() {
	var cli cli

	ctx := kong.Parse(&cli)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func readKey(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	key, err := base58.Decode(strings.TrimSpace(string(b)))
	if err != nil {
		return nil, fmt.Errorf("invalid key file %s: %w", path, err)
	}

	return key, nil
}

var errEmptyPassphrase = errors.New("passphrase must not be empty")

func askPassphrase(prompt string) ([]byte, error) {
	defer func() { _, _ = fmt.Fprintln(os.Stderr) }()

	_, _ = fmt.Fprint(os.Stderr, prompt)

	pwd, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}

	return checkPassphrase(pwd)
}

func checkPassphrase(pwd []byte) ([]byte, error) {
	if len(pwd) == 0 {
		return nil, errEmptyPassphrase
	}

	return pwd, nil
}

func openOutput(path string, armor bool) (io.WriteCloser, error) {
	dst := os.Stdout

	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}

		dst = f
	}

	if armor {
		return &base64Encoder{dst: dst, enc: base64.NewEncoder(base64.StdEncoding, dst)}, nil
	}

	return dst, nil
}

func openInput(path string, armor bool) (io.ReadCloser, error) {
	src := os.Stdin

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		src = f
	}

	if armor {
		return &base64Decoder{src: src, dec: base64.NewDecoder(base64.StdEncoding, src)}, nil
	}

	return src, nil
}

type base64Encoder struct {
	dst io.WriteCloser
	enc io.WriteCloser
}

func (b *base64Encoder) Write(p []byte) (n int, err error) {
	return b.enc.Write(p)
}

func (b *base64Encoder) Close() error {
	if err := b.enc.Close(); err != nil {
		return err
	}

	return b.dst.Close()
}

var _ io.WriteCloser = &base64Encoder{}

type base64Decoder struct {
	src io.ReadCloser
	dec io.Reader
}

func (b *base64Decoder) Read(p []byte) (n int, err error) {
	return b.dec.Read(p)
}

func (b *base64Decoder) Close() error {
	return b.src.Close()
}

var _ io.ReadCloser = &base64Decoder{}
