package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/dmitrijs2005/rabetweb/internal/common"
)

// OIDCVerifier accepts ID tokens from an external OpenID Connect issuer.
// The returned Token has no UID; the local provider resolves it by email.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's keys over the network.
func NewOIDCVerifier(ctx context.Context, issuerURL, audience string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: audience})}, nil
}

// NewOIDCVerifierWithKeySet skips discovery and checks signatures against keys.
func NewOIDCVerifierWithKeySet(issuerURL, audience string, keys oidc.KeySet) *OIDCVerifier {
	return &OIDCVerifier{verifier: oidc.NewVerifier(issuerURL, keys, &oidc.Config{ClientID: audience})}
}

// Verify checks raw against the issuer keys and audience.
func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (*Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", common.ErrInvalidToken, err)
	}

	return &Token{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Issuer:        idToken.Issuer,
		IssuedAt:      idToken.IssuedAt,
		ExpiresAt:     idToken.Expiry,
	}, nil
}
