package ledger

import (
	"errors"
	"fmt"
)

// The client classifies every remote failure into one of three kinds so
// callers can decide between retrying, re-authenticating and refreshing:
//
//	TransportError: network failure or 5xx; retryable on user initiative
//	AuthError:      missing/invalid credential; must not be silently retried
//	NotFoundError:  the entity no longer exists; forces a refresh upstream
//
// Nothing else escapes the client unclassified.

// TransportError wraps a network-level or server-side failure.
type TransportError struct {
	Op  string // e.g. "list splits"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ledger: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports a rejected or unusable bearer credential.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("ledger: %s: authentication failed: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError reports that an entity vanished server-side. Distinct from a
// transport failure: the request completed, the entity is gone.
type NotFoundError struct {
	Kind string // "group", "split", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ledger: %s %s no longer exists", e.Kind, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsRetryable reports whether err is worth a user-initiated retry.
// Transport failures are; auth and not-found failures are not.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
