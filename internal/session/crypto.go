package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Token ciphertext wire format: ivHex:tagHex:dataHex. AES-256-GCM with a
// random 16-byte IV per encryption; the GCM tag is stored as its own segment
// so corruption of either part is detectable independently.

const (
	nonceSize = 16
	tagSize   = 16
)

// Cipher encrypts and decrypts session access tokens.
type Cipher struct {
	key []byte
}

// NewCipher builds a Cipher from a hex-encoded 32-byte key.
func NewCipher(hexKey string) (*Cipher, error) {
	if hexKey == "" {
		return nil, errors.New("encryption key is required")
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.Wrap(err, "decode encryption key")
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return &Cipher{key: key}, nil
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, nonceSize)
}

// Encrypt returns the iv:tag:data hex triplet for plaintext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	aead, err := c.gcm()
	if err != nil {
		return "", err
	}
	iv := make([]byte, nonceSize)
	if _, err := rand.Read(iv); err != nil {
		return "", errors.Wrap(err, "generate iv")
	}
	sealed := aead.Seal(nil, iv, []byte(plaintext), nil)
	data, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]
	return fmt.Sprintf("%s:%s:%s",
		hex.EncodeToString(iv), hex.EncodeToString(tag), hex.EncodeToString(data)), nil
}

// Decrypt reverses Encrypt. It fails if the ciphertext or tag is corrupt.
func (c *Cipher) Decrypt(encrypted string) (string, error) {
	parts := strings.Split(encrypted, ":")
	if len(parts) != 3 {
		return "", errors.New("malformed ciphertext: want iv:tag:data")
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", errors.Wrap(err, "decode iv")
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", errors.Wrap(err, "decode tag")
	}
	data, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", errors.Wrap(err, "decode ciphertext")
	}
	if len(iv) != nonceSize {
		return "", fmt.Errorf("iv must be %d bytes, got %d", nonceSize, len(iv))
	}
	aead, err := c.gcm()
	if err != nil {
		return "", err
	}
	plaintext, err := aead.Open(nil, iv, append(data, tag...), nil)
	if err != nil {
		return "", errors.Wrap(err, "decrypt token")
	}
	return string(plaintext), nil
}
