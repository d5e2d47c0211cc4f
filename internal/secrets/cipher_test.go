package secrets

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	dErrors "m8translate/pkg/domain-errors"
)

const testSecret = "0123456789abcdef0123456789abcdef-enc"

type SealerSuite struct {
	suite.Suite
	sealer *Sealer
}

func TestSealerSuite(t *testing.T) {
	suite.Run(t, new(SealerSuite))
}

func (s *SealerSuite) SetupTest() {
	var err error
	s.sealer, err = NewSealer(testSecret)
	s.Require().NoError(err)
}

func (s *SealerSuite) TestSealAndOpen() {
	sealed, err := s.sealer.Seal("sk-test-1234567890")
	s.Require().NoError(err)

	s.Equal(AlgorithmAES256GCM, sealed.Algorithm)
	s.NotContains(sealed.Encrypted, "sk-test")
	s.Len(sealed.IV, nonceLength*2)
	s.Len(sealed.Salt, saltLength*2)
	s.Len(sealed.AuthTag, tagLength*2)

	plaintext, err := s.sealer.Open(sealed)
	s.Require().NoError(err)
	s.Equal("sk-test-1234567890", plaintext)
}

func (s *SealerSuite) TestSaltAndNonceAreFreshPerSeal() {
	a, err := s.sealer.Seal("same value")
	s.Require().NoError(err)
	b, err := s.sealer.Seal("same value")
	s.Require().NoError(err)

	s.NotEqual(a.Salt, b.Salt)
	s.NotEqual(a.IV, b.IV)
	s.NotEqual(a.Encrypted, b.Encrypted)
}

func (s *SealerSuite) TestOpenRejectsTampering() {
	sealed, err := s.sealer.Seal("sk-test-1234567890")
	s.Require().NoError(err)

	s.Run("modified ciphertext", func() {
		tampered := *sealed
		raw, _ := hex.DecodeString(tampered.Encrypted)
		raw[0] ^= 0xff
		tampered.Encrypted = hex.EncodeToString(raw)
		_, err := s.sealer.Open(&tampered)
		s.ErrorIs(err, ErrUnsealFailed)
	})

	s.Run("modified tag", func() {
		tampered := *sealed
		tampered.AuthTag = "00000000000000000000000000000000"
		_, err := s.sealer.Open(&tampered)
		s.ErrorIs(err, ErrUnsealFailed)
	})

	s.Run("wrong key", func() {
		other, err := NewSealer("another-deployment-key-0123456789abcdef")
		s.Require().NoError(err)
		_, err = other.Open(sealed)
		s.ErrorIs(err, ErrUnsealFailed)
	})

	s.Run("malformed fields", func() {
		_, err := s.sealer.Open(&Sealed{Encrypted: "zz", IV: "00", Salt: "00", AuthTag: "00"})
		s.ErrorIs(err, ErrUnsealFailed)
	})

	s.Run("unsupported algorithm", func() {
		tampered := *sealed
		tampered.Algorithm = "aes-128-cbc"
		_, err := s.sealer.Open(&tampered)
		s.ErrorIs(err, ErrUnsealFailed)
	})

	s.Run("nil", func() {
		_, err := s.sealer.Open(nil)
		s.ErrorIs(err, ErrUnsealFailed)
	})
}

func (s *SealerSuite) TestStorageFormat() {
	sealed, err := s.sealer.Seal("value")
	s.Require().NoError(err)

	raw, err := json.Marshal(sealed)
	s.Require().NoError(err)

	var fields map[string]string
	s.Require().NoError(json.Unmarshal(raw, &fields))
	s.ElementsMatch([]string{"encrypted", "iv", "salt", "authTag", "algorithm"}, keys(fields))
}

func (s *SealerSuite) TestSealRejectsEmpty() {
	_, err := s.sealer.Seal("")
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestNewSealerRequiresKey(t *testing.T) {
	_, err := NewSealer("")
	assert.Error(t, err)
}
