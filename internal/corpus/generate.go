// Copyright (c) 2025, The Fealcrack Authors.
// See LICENSE for licensing information.

package corpus

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20"

	"github.com/AeonDave/fealcrack/internal/feal"
)

// Generate writes n plaintext/ciphertext records to w in the pair-file
// format, encrypting random plaintext blocks under key. A non-empty
// seed makes the plaintexts deterministic: the seed is hashed with
// SHA-256 into a ChaCha20 key and the keystream supplies the blocks.
// With no seed, blocks come from crypto/rand.
func Generate(w io.Writer, n int, key feal.Key, seed []byte) error {
	read := rand.Read
	if len(seed) > 0 {
		sum := sha256.Sum256(seed)
		stream, err := chacha20.NewUnauthenticatedCipher(sum[:], make([]byte, chacha20.NonceSize))
		if err != nil {
			return fmt.Errorf("seed keystream: %w", err)
		}
		read = func(p []byte) (int, error) {
			for i := range p {
				p[i] = 0
			}
			stream.XORKeyStream(p, p)
			return len(p), nil
		}
	}

	block := make([]byte, feal.BlockSize)
	for i := 0; i < n; i++ {
		if _, err := read(block); err != nil {
			return fmt.Errorf("random plaintext: %w", err)
		}
		if _, err := fmt.Fprintf(w, "Plaintext= %x\n", block); err != nil {
			return err
		}
		feal.Encrypt(block, key)
		if _, err := fmt.Fprintf(w, "Ciphertext=%x\n", block); err != nil {
			return err
		}
	}
	return nil
}
