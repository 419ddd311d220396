package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AccountLookup fetches identity accounts by uid.
type AccountLookup interface {
	GetUser(ctx context.Context, uid string) (*models.Account, error)
}

// PrincipalLookup fetches user records from the document store.
type PrincipalLookup interface {
	GetByID(ctx context.Context, id string) (*models.Principal, error)
}

// Verifier resolves a session credential to a principal.
type Verifier struct {
	codec      *Codec
	accounts   AccountLookup
	principals PrincipalLookup
	tracer     trace.Tracer
}

// NewVerifier builds a Verifier that decodes credentials with codec and joins
// the identity account with the user record.
func NewVerifier(codec *Codec, accounts AccountLookup, principals PrincipalLookup) *Verifier {
	return &Verifier{
		codec:      codec,
		accounts:   accounts,
		principals: principals,
		tracer:     otel.Tracer("github.com/dmitrijs2005/rabetweb/internal/server/auth"),
	}
}

// Verify checks credential and, when allowed is not empty, that the
// principal holds one of those roles. Errors are ErrNoSession,
// ErrInvalidSession, ErrForbidden or ErrUpstream.
func (v *Verifier) Verify(ctx context.Context, credential string, allowed ...models.Role) (p *models.Principal, err error) {
	ctx, span := v.tracer.Start(ctx, "auth.Verify")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if credential == "" {
		return nil, common.ErrNoSession
	}

	s, err := v.codec.Decode(credential)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("uid", s.UID))

	acct, err := v.accounts.GetUser(ctx, s.UID)
	if err != nil {
		return nil, lookupError("account", err)
	}
	if acct.Disabled {
		return nil, fmt.Errorf("%w: account disabled", common.ErrInvalidSession)
	}

	p, err = v.principals.GetByID(ctx, s.UID)
	if err != nil {
		return nil, lookupError("principal", err)
	}
	p.Email = acct.Email
	p.EmailVerified = acct.EmailVerified
	p.Disabled = acct.Disabled
	span.SetAttributes(attribute.String("role", string(p.Role)))

	if !Allows(p.Role, allowed...) {
		return nil, common.ErrForbidden
	}
	return p, nil
}

func lookupError(what string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: %s not found", common.ErrInvalidSession, what)
	}
	return fmt.Errorf("%w: %s lookup: %v", common.ErrUpstream, what, err)
}
