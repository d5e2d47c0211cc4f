// Package secrets seals stored credentials (OpenAI API keys, ServiceM8 OAuth
// grants) with AES-256-GCM under a key derived from the deployment encryption
// key.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"

	dErrors "m8translate/pkg/domain-errors"
)

const (
	// AlgorithmAES256GCM is the only sealing algorithm.
	AlgorithmAES256GCM = "aes-256-gcm"

	keyLength   = 32
	saltLength  = 16
	nonceLength = 16
	tagLength   = 16

	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

// ErrUnsealFailed is returned when a sealed value is malformed, was sealed
// under another key, or has been tampered with.
var ErrUnsealFailed = errors.New("unseal failed")

// Sealed is the storage form of an encrypted value. Every value carries its
// own salt and nonce, all hex encoded.
type Sealed struct {
	Encrypted string `json:"encrypted"`
	IV        string `json:"iv"`
	Salt      string `json:"salt"`
	AuthTag   string `json:"authTag"`
	Algorithm string `json:"algorithm"`
}

// Sealer encrypts and decrypts values under one deployment secret.
type Sealer struct {
	secret []byte
}

// NewSealer creates a Sealer for the deployment encryption key.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("encryption key is required")
	}
	return &Sealer{secret: []byte(secret)}, nil
}

// Seal encrypts plaintext with a fresh salt-derived key and random nonce.
func (s *Sealer) Seal(plaintext string) (*Sealed, error) {
	if plaintext == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "value to seal cannot be empty")
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	aead, err := s.aead(salt)
	if err != nil {
		return nil, err
	}
	out := aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext, tag := out[:len(out)-tagLength], out[len(out)-tagLength:]

	return &Sealed{
		Encrypted: hex.EncodeToString(ciphertext),
		IV:        hex.EncodeToString(nonce),
		Salt:      hex.EncodeToString(salt),
		AuthTag:   hex.EncodeToString(tag),
		Algorithm: AlgorithmAES256GCM,
	}, nil
}

// Open decrypts a sealed value. Any failure is reported as ErrUnsealFailed
// without detail.
func (s *Sealer) Open(sealed *Sealed) (string, error) {
	if sealed == nil {
		return "", ErrUnsealFailed
	}
	if sealed.Algorithm != "" && sealed.Algorithm != AlgorithmAES256GCM {
		return "", fmt.Errorf("%w: unsupported algorithm %q", ErrUnsealFailed, sealed.Algorithm)
	}

	ciphertext, err1 := hex.DecodeString(sealed.Encrypted)
	nonce, err2 := hex.DecodeString(sealed.IV)
	salt, err3 := hex.DecodeString(sealed.Salt)
	tag, err4 := hex.DecodeString(sealed.AuthTag)
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return "", fmt.Errorf("%w: invalid encoding", ErrUnsealFailed)
	}
	if len(nonce) != nonceLength || len(salt) != saltLength || len(tag) != tagLength {
		return "", fmt.Errorf("%w: invalid sealed value format", ErrUnsealFailed)
	}

	aead, err := s.aead(salt)
	if err != nil {
		return "", err
	}
	plaintext, err := aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrUnsealFailed
	}
	return string(plaintext), nil
}

func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(s.secret, salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceLength)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return aead, nil
}
