package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/server/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is how long a session credential and its cookie live.
const SessionTTL = 5 * 24 * time.Hour

// TokenVerifier checks identity provider ID tokens.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, raw string) (*identity.Token, error)
}

// CodecConfig configures session credential signing and the session cookie.
// A zero TTL means SessionTTL.
type CodecConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	// Secure marks the cookie Secure; set in production.
	Secure bool
}

// SessionClaims are the claims of a session credential. The subject is the
// principal uid.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Session is a decoded, signature-checked credential.
type Session struct {
	UID       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec mints session credentials and moves them in and out of cookies.
type Codec struct {
	cfg    CodecConfig
	tokens TokenVerifier
	now    func() time.Time
}

// NewCodec builds a Codec that signs credentials with cfg.Secret and checks
// incoming identity tokens with tokens.
func NewCodec(cfg CodecConfig, tokens TokenVerifier) *Codec {
	if cfg.TTL <= 0 {
		cfg.TTL = SessionTTL
	}
	return &Codec{cfg: cfg, tokens: tokens, now: time.Now}
}

// Mint exchanges a verified ID token for a session credential.
func (c *Codec) Mint(ctx context.Context, idToken string) (string, error) {
	tok, err := c.tokens.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return c.Encode(tok.UID)
}

// Encode signs a session credential for uid, valid from now for the
// configured TTL.
func (c *Codec) Encode(uid string) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.cfg.Issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.TTL)),
		},
	})

	signed, err := token.SignedString(c.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Decode checks the signature and expiry of credential. There is no leeway:
// a credential is rejected from the instant it expires.
func (c *Codec) Decode(credential string) (*Session, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(credential, claims, func(*jwt.Token) (any, error) {
		return c.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSession, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidSession)
	}

	s := &Session{UID: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	return s, nil
}

func (c *Codec) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Attach sets the session cookie on w.
func (c *Codec) Attach(w http.ResponseWriter, credential string) {
	http.SetCookie(w, c.cookie(credential, int(c.cfg.TTL/time.Second)))
}

// Clear expires the session cookie immediately.
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}
