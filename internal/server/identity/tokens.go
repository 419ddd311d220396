package identity

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims are the claims of an ID token minted by this provider.
type IDTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// HS256Tokens mints and parses this provider's ID tokens.
type HS256Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewHS256Tokens signs ID tokens with secret, valid for ttl.
func NewHS256Tokens(secret []byte, issuer string, ttl time.Duration) *HS256Tokens {
	return &HS256Tokens{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

func (t *HS256Tokens) TTL() time.Duration { return t.ttl }

// Issue signs an ID token for a.
func (t *HS256Tokens) Issue(a *models.Account) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, IDTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   a.UID,
			Audience:  jwt.ClaimStrings{t.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Email:         a.Email,
		EmailVerified: a.EmailVerified,
	})
	return token.SignedString(t.secret)
}

// Parse checks signature, issuer, audience and expiry.
func (t *HS256Tokens) Parse(raw string) (*Token, error) {
	claims := &IDTokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}

	tok := &Token{
		UID:           claims.Subject,
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Issuer:        claims.Issuer,
	}
	if claims.IssuedAt != nil {
		tok.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		tok.ExpiresAt = claims.ExpiresAt.Time
	}
	return tok, nil
}
