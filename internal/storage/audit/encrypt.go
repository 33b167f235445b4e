package audit

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Encryption errors.
var (
	ErrKeySize          = errors.New("audit: encryption key must be 32 bytes")
	ErrPassphraseShort  = errors.New("audit: passphrase too short (minimum 8 characters)")
	ErrDecryptionFailed = errors.New("audit: decryption failed, wrong key or corrupted entry")
)

const (
	// SaltLength is the salt length used for passphrase derivation.
	SaltLength = 16

	minPassphraseLength = 8

	// Argon2id parameters for passphrase-derived keys.
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// Sealer encrypts and decrypts archive entries with ChaCha20-Poly1305.
//
// Each sealed entry carries its own random nonce; the entry key is
// bound in as additional data, so a value moved under another key
// fails to open.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a sealer from a raw 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrKeySize
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// NewSealerFromPassphrase derives a key from a passphrase with Argon2id
// and creates a sealer. The salt must be persisted alongside the
// archive; pass nil to generate a fresh one. Returns the salt in use.
func NewSealerFromPassphrase(passphrase, salt []byte) (*Sealer, []byte, error) {
	if len(passphrase) < minPassphraseLength {
		return nil, nil, ErrPassphraseShort
	}
	if salt == nil {
		salt = make([]byte, SaltLength)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, fmt.Errorf("audit: generate salt: %w", err)
		}
	}

	key := argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, chacha20poly1305.KeySize)
	sealer, err := NewSealer(key)
	if err != nil {
		return nil, nil, err
	}
	return sealer, salt, nil
}

// Seal encrypts plaintext, binding it to the given entry key.
func (s *Sealer) Seal(plaintext, entryKey []byte) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("audit: generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, entryKey), nil
}

// Open decrypts a sealed entry bound to the given entry key.
func (s *Sealer) Open(sealed, entryKey []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSize {
		return nil, ErrDecryptionFailed
	}
	nonce, ciphertext := sealed[:chacha20poly1305.NonceSize], sealed[chacha20poly1305.NonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, entryKey)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// ZeroKey wipes key material in place.
func ZeroKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}
