package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "m8translate/pkg/domain-errors"
)

const (
	testKey     = "test-signing-key-0123456789abcdef"
	companyUUID = "3b1c8a4e-2f5d-4c6b-9a7e-1d2f3a4b5c6d"
)

var now = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func newSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner(testKey, "test-issuer")
	require.NoError(t, err)
	return s
}

func Test_IssueAndValidate(t *testing.T) {
	s := newSigner(t)

	tok, err := s.Issue(AudienceSession, "sess-1", companyUUID, now, now.Add(30*time.Minute))
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := s.Validate(tok, AudienceSession, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.ID)
	assert.Equal(t, companyUUID, claims.CompanyUUID)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func Test_Validate_Expired(t *testing.T) {
	s := newSigner(t)
	tok, err := s.Issue(AudienceSession, "sess-1", companyUUID, now, now.Add(30*time.Minute))
	require.NoError(t, err)

	_, err = s.Validate(tok, AudienceSession, now.Add(31*time.Minute))
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "token has expired")
}

func Test_Validate_WrongAudience(t *testing.T) {
	s := newSigner(t)
	tok, err := s.Issue(AudienceOAuthState, "state-1", companyUUID, now, now.Add(10*time.Minute))
	require.NoError(t, err)

	_, err = s.Validate(tok, AudienceSession, now)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func Test_Validate_WrongKey(t *testing.T) {
	tok, err := newSigner(t).Issue(AudienceSession, "sess-1", companyUUID, now, now.Add(time.Minute))
	require.NoError(t, err)

	other, err := NewSigner("another-signing-key-0123456789abc", "test-issuer")
	require.NoError(t, err)
	_, err = other.Validate(tok, AudienceSession, now)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func Test_Validate_RejectsOtherAlgorithms(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "sess-1",
			Issuer:    "test-issuer",
			Audience:  []string{AudienceSession},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newSigner(t).Validate(tok, AudienceSession, now)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func Test_Validate_Garbage(t *testing.T) {
	_, err := newSigner(t).Validate("invalid-token-string", AudienceSession, now)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func Test_NewSigner_RequiresKey(t *testing.T) {
	_, err := NewSigner("", "issuer")
	assert.Error(t, err)
	_, err = NewSigner(testKey, "")
	assert.Error(t, err)
}
