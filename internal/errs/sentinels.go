// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrValidation indicates missing or malformed request fields.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidScore indicates a score outside the accepted range.
	ErrInvalidScore = errors.New("invalid score")

	// ErrInvalidSignatureFormat indicates a signature that cannot be decoded
	// or from which no public key can be recovered.
	ErrInvalidSignatureFormat = errors.New("invalid signature format")

	// ErrSignatureMismatch indicates a well-formed signature produced by a
	// key other than the claimed address's.
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrTimestampExpired indicates a claimed timestamp outside the
	// replay-protection freshness window.
	ErrTimestampExpired = errors.New("timestamp expired")

	// ErrDuplicateSubmission indicates a wallet submission whose
	// (game, address, timestamp) pair was already accepted.
	ErrDuplicateSubmission = errors.New("duplicate submission")

	// ErrMissingCredential indicates an admin request without a credential.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential indicates an admin credential that does not match
	// the configured secret.
	ErrInvalidCredential = errors.New("invalid credential")
)
