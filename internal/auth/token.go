// Package auth supplies bearer credentials for the remote ledger.
//
// Authentication itself (login, refresh, storage) lives upstream; this
// package only carries an already-issued credential to the transport and
// rejects obviously dead ones before they cost a network round trip.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoCredential means no bearer credential is available.
	ErrNoCredential = errors.New("no bearer credential available")

	// ErrCredentialExpired means the bearer credential's expiry has passed
	// and a re-authentication upstream is required.
	ErrCredentialExpired = errors.New("bearer credential expired")
)

// TokenSource yields a bearer credential for outgoing ledger requests.
// Implementations must be safe for concurrent use.
type TokenSource interface {
	// Token returns the bearer credential to attach, or an error if none
	// can be supplied.
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a fixed credential, typically injected from
// configuration. An empty credential yields ErrNoCredential.
type StaticTokenSource string

// Token implements TokenSource.
func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrNoCredential
	}
	return string(s), nil
}

// ExpiryCheckSource wraps another TokenSource and rejects JWT credentials
// whose exp claim has already passed. The signature is not verified (the
// ledger does that); this only avoids sending requests doomed to 401.
// Non-JWT credentials pass through untouched.
type ExpiryCheckSource struct {
	Source TokenSource

	// Leeway is subtracted from the expiry when comparing against now, so
	// a credential about to expire mid-flight is also rejected.
	Leeway time.Duration
}

// Token implements TokenSource.
func (s *ExpiryCheckSource) Token(ctx context.Context) (string, error) {
	token, err := s.Source.Token(ctx)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Not a JWT; let the ledger judge it.
		return token, nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return token, nil
	}
	if time.Now().Add(s.Leeway).After(exp.Time) {
		return "", fmt.Errorf("%w (expired %s)", ErrCredentialExpired, exp.Time.Format(time.RFC3339))
	}
	return token, nil
}
