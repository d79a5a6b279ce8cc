// Package cryptox implements the reversible encryption used for the
// persisted session blob, password-strength validation, and secure ID
// generation.
//
// The blob format is base64 of:
//
//	version(1) || algorithm(1) || salt(16) || iv(16) || ciphertext
//
// The encryption key is derived from the application encryption secret and
// the per-blob salt via PBKDF2-SHA256. A blob that was not produced by this
// exact scheme fails decryption with an error; it never panics.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	blobVersion   = 1
	blobAlgAESCBC = 1

	saltSize = 16
	ivSize   = 16
	keySize  = 32

	// KDFIterations matches the legacy client-side scheme. Low by modern
	// standards; acceptable because the secret is an application constant,
	// not a user password.
	KDFIterations = 1000

	// SecretSize is the required length of signing and encryption secrets.
	SecretSize = 32
)

var (
	ErrInvalidBlob = errors.New("invalid encrypted blob")
)

// PadSecret right-pads a short secret with '0' bytes up to SecretSize and
// truncates a longer one. Development-mode shortcut; production config
// rejects short secrets instead of padding.
func PadSecret(secret []byte) []byte {
	out := make([]byte, SecretSize)
	copy(out, secret)
	for i := len(secret); i < SecretSize; i++ {
		out[i] = '0'
	}
	return out
}

func deriveKey(secret, salt []byte) []byte {
	return pbkdf2.Key(secret, salt, KDFIterations, keySize, sha256.New)
}

// Encrypt serializes v to JSON and encrypts it with AES-256-CBC under a key
// derived from secret and a fresh random salt. A nil value is a no-op and
// returns an empty string.
func Encrypt(v any, secret []byte) (string, error) {
	if v == nil {
		return "", nil
	}

	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(deriveKey(secret, salt))
	if err != nil {
		return "", err
	}

	padded := padPKCS7(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	blob := make([]byte, 0, 2+saltSize+ivSize+len(ciphertext))
	blob = append(blob, blobVersion, blobAlgAESCBC)
	blob = append(blob, salt...)
	blob = append(blob, iv...)
	blob = append(blob, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt and unmarshals the plaintext JSON into v.
// Any corruption (bad base64, truncated blob, unknown version, bad padding,
// JSON failure) is reported as an error wrapping ErrInvalidBlob.
func Decrypt(blob string, secret []byte, v any) error {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}

	if len(raw) < 2+saltSize+ivSize+aes.BlockSize {
		return fmt.Errorf("%w: too short", ErrInvalidBlob)
	}
	if raw[0] != blobVersion || raw[1] != blobAlgAESCBC {
		return fmt.Errorf("%w: unknown format", ErrInvalidBlob)
	}

	salt := raw[2 : 2+saltSize]
	iv := raw[2+saltSize : 2+saltSize+ivSize]
	ciphertext := raw[2+saltSize+ivSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return fmt.Errorf("%w: ragged ciphertext", ErrInvalidBlob)
	}

	block, err := aes.NewCipher(deriveKey(secret, salt))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	plaintext, err = unpadPKCS7(plaintext, aes.BlockSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}
	return nil
}

// SecureID returns 16 bytes of cryptographically secure randomness
// rendered as 32 lowercase hex characters.
func SecureID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errors.New("invalid padding byte")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("inconsistent padding")
		}
	}
	return data[:len(data)-n], nil
}
