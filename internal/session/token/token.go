// Package token signs and validates the HS256 tokens handed to the add-on:
// session tokens and OAuth state values.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "m8translate/pkg/domain-errors"
)

// Audiences separate the token kinds so one can never stand in for another.
const (
	AudienceSession    = "m8translate-session"
	AudienceOAuthState = "m8translate-oauth-state"
)

// Claims carries the company a token was issued for. The registered ID (jti)
// keys the server-side record.
type Claims struct {
	CompanyUUID string `json:"company_uuid"`
	jwt.RegisteredClaims
}

// Signer handles token creation and validation.
type Signer struct {
	signingKey []byte
	issuer     string
}

func NewSigner(signingKey, issuer string) (*Signer, error) {
	if signingKey == "" {
		return nil, errors.New("signing key is required")
	}
	if issuer == "" {
		return nil, errors.New("issuer is required")
	}
	return &Signer{signingKey: []byte(signingKey), issuer: issuer}, nil
}

// Issue signs a token for audience identified by id.
func (s *Signer) Issue(audience, id, companyUUID string, issuedAt, expiresAt time.Time) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CompanyUUID: companyUUID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    s.issuer,
			Audience:  []string{audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	return newToken.SignedString(s.signingKey)
}

// Validate parses tokenString and checks signature, issuer, audience and
// expiry against now.
func (s *Signer) Validate(tokenString, audience string, now time.Time) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
