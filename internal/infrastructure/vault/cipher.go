package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// Key derivation and layout constants.
const (
	// KeyIterations is the PBKDF2 iteration count.
	KeyIterations = 100000

	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// ivSize is the CBC initialization vector length.
	ivSize = aes.BlockSize

	// tagSize is the HMAC-SHA256 tag length.
	tagSize = sha256.Size

	// macInfo labels the HKDF expansion for the tag key.
	macInfo = "fleetauth vault hmac"
)

// DefaultSalt is the fixed PBKDF2 salt used when none is configured.
const DefaultSalt = "fleetauth-vault-salt-v1"

// DeriveKey stretches secret into an AES-256 key.
func DeriveKey(secret, salt string) []byte {
	return pbkdf2.Key([]byte(secret), []byte(salt), KeyIterations, KeySize, sha256.New)
}

// Cipher encrypts and decrypts store payloads. It is safe for concurrent use.
type Cipher struct {
	block  cipher.Block
	macKey []byte
	legacy bool
	rand   io.Reader
}

// Option configures a Cipher.
type Option func(*Cipher)

// WithLegacyLayout disables the trailing authentication tag so files match
// the bare IV||ciphertext layout.
func WithLegacyLayout() Option {
	return func(c *Cipher) { c.legacy = true }
}

// WithRandom replaces the IV source. Tests only.
func WithRandom(r io.Reader) Option {
	return func(c *Cipher) { c.rand = r }
}

// NewCipher creates a Cipher from a 32 byte key (see DeriveKey).
func NewCipher(key []byte, opts ...Option) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKey, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	macKey := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(macInfo)), macKey); err != nil {
		return nil, fmt.Errorf("%w: deriving mac key: %w", ErrInvalidKey, err)
	}

	c := &Cipher{block: block, macKey: macKey, rand: rand.Reader}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Seal encrypts plaintext with a fresh random IV.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	padded := pad(plaintext)

	out := make([]byte, ivSize+len(padded), ivSize+len(padded)+tagSize)
	iv := out[:ivSize]
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return nil, fmt.Errorf("%w: generating iv: %w", ErrIO, err)
	}

	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[ivSize:], padded)

	if !c.legacy {
		out = append(out, c.tag(out)...)
	}
	return out, nil
}

// Open authenticates (unless legacy) and decrypts a payload produced by Seal.
func (c *Cipher) Open(payload []byte) ([]byte, error) {
	if len(payload) < ivSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(payload))
	}

	if !c.legacy {
		if len(payload) < ivSize+tagSize {
			return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(payload))
		}
		body, tag := payload[:len(payload)-tagSize], payload[len(payload)-tagSize:]
		if !hmac.Equal(tag, c.tag(body)) {
			return nil, ErrIntegrity
		}
		payload = body
	}

	iv, ciphertext := payload[:ivSize], payload[ivSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes of ciphertext", ErrMalformed, len(ciphertext))
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, ciphertext)

	return unpad(plain)
}

func (c *Cipher) tag(data []byte) []byte {
	mac := hmac.New(sha256.New, c.macKey)
	mac.Write(data) //nolint:errcheck // hash.Hash writes never fail
	return mac.Sum(nil)
}

// pad applies PKCS#7 padding to a whole number of AES blocks.
func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

// unpad strips and verifies PKCS#7 padding.
func unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, ErrPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrPadding
		}
	}
	return data[:len(data)-n], nil
}
