package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mr-tron/base58"
)

type keygenCmd struct {
	Output string `arg:"" optional:"" type:"path" default:"-" help:"The path to the key file."`

	Size int `default:"32" enum:"16,32" help:"The key size in bytes."`
}

func (cmd *keygenCmd) Run(_ *kong.Context) error {
	key := make([]byte, cmd.Size)
	if _, err := rand.Read(key); err != nil {
		return err
	}

	text := base58.Encode(key) + "\n"

	if cmd.Output == "-" {
		_, err := fmt.Print(text)
		return err
	}

	// Key files are secrets; keep them owner-readable only.
	return os.WriteFile(cmd.Output, []byte(text), 0o600)
}
