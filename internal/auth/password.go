package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const saltSize = 16

// Argon2Params tunes the argon2id KDF. Changing them invalidates stored digests.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		KeyLen:  32,
	}
}

// PasswordHasher derives salted digests with argon2id.
type PasswordHasher struct {
	params Argon2Params
}

func NewPasswordHasher(params Argon2Params) *PasswordHasher {
	return &PasswordHasher{params: params}
}

// NewSalt returns a random base64 salt.
func (h *PasswordHasher) NewSalt() (string, error) {
	b := make([]byte, saltSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

// Hash is deterministic for a given plaintext and salt.
func (h *PasswordHasher) Hash(plaintext, salt string) string {
	key := argon2.IDKey([]byte(plaintext), []byte(salt), h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
	return base64.RawStdEncoding.EncodeToString(key)
}

// Verify re-hashes plaintext with salt and compares in constant time.
func (h *PasswordHasher) Verify(plaintext, salt, digest string) bool {
	computed := h.Hash(plaintext, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
