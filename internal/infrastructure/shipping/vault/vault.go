// Package vault implements ports.CredentialVault: AES-256-CBC with a
// PBKDF2-derived key from a process-level secret, keeping provider
// credentials encrypted at rest. Built on crypto/aes and crypto/cipher
// plus x/crypto/pbkdf2 for key derivation.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

const (
	keyLen     = 32 // AES-256
	saltLen    = 16
	pbkdf2Iter = 100_000
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Vault implements ports.CredentialVault.
type Vault struct {
	secret []byte
}

// New creates a Vault deriving keys from secret, a process-level value
// supplied by configuration; never logged, never persisted.
func New(secret []byte) *Vault {
	return &Vault{secret: secret}
}

// Encrypt derives a random-salted key and encrypts plaintext under
// AES-256-CBC with PKCS#7 padding. Layout: salt(16) || iv(16) || ciphertext.
func (v *Vault) Encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, domain.Wrap(domain.ErrInternal, "generate salt", err)
	}

	key := pbkdf2.Key(v.secret, salt, pbkdf2Iter, keyLen, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, domain.Wrap(domain.ErrInternal, "create cipher", err)
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, domain.Wrap(domain.ErrInternal, "generate iv", err)
	}

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	out := make([]byte, 0, saltLen+aes.BlockSize+len(ciphertext))
	out = append(out, salt...)
	out = append(out, iv...)
	out = append(out, ciphertext...)

	return out, nil
}

// Decrypt reverses Encrypt.
func (v *Vault) Decrypt(data []byte) ([]byte, error) {
	if len(data) < saltLen+aes.BlockSize {
		return nil, domain.Wrap(domain.ErrValidation, "decrypt credentials", ErrCiphertextTooShort)
	}

	salt, iv, ciphertext := data[:saltLen], data[saltLen:saltLen+aes.BlockSize], data[saltLen+aes.BlockSize:]

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, domain.Wrap(domain.ErrValidation, "decrypt credentials", ErrCiphertextTooShort)
	}

	key := pbkdf2.Key(v.secret, salt, pbkdf2Iter, keyLen, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, domain.Wrap(domain.ErrInternal, "create cipher", err)
	}

	plainPadded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plainPadded, ciphertext)

	return pkcs7Unpad(plainPadded)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := make([]byte, padLen)

	for i := range padding {
		padding[i] = byte(padLen)
	}

	return append(data, padding...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, domain.Wrap(domain.ErrValidation, "unpad credentials", ErrCiphertextTooShort)
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, domain.Wrap(domain.ErrValidation, "unpad credentials", ErrCiphertextTooShort)
	}

	return data[:len(data)-padLen], nil
}
