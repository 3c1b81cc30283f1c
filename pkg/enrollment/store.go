package enrollment

import "context"

// Store defines the persistence interface for enrollment records. The Service
// performs scope validation and all TOTP logic; stores only hold state.
//
// Implementations must make CreateSecret and ConsumeRecoveryCode atomic per
// (scope, accountID) key so concurrent requests cannot race each other into a
// lost update: two simultaneous enrollments must agree on a single secret,
// and a recovery code must be usable exactly once.
type Store interface {
	// Get retrieves a record, or ErrRecordNotFound.
	Get(ctx context.Context, scope, accountID string) (*Record, error)

	// CreateSecret persists secret for the key unless a secret is already
	// present, and returns the secret that won. Creates the record when
	// missing. Under concurrent calls for the same key exactly one secret is
	// stored and every caller observes it.
	CreateSecret(ctx context.Context, scope, accountID, secret string) (string, error)

	// ReplaceSecret unconditionally installs a new secret for the key,
	// creating the record when missing. Enrollment is reset: the enabled
	// flag is cleared and any recovery codes are revoked, since codes issued
	// against the old secret must not survive it.
	ReplaceSecret(ctx context.Context, scope, accountID, secret string) error

	// ReplaceSecretIf is the compare-and-swap variant of ReplaceSecret: the
	// new secret is installed only while the stored one still equals old,
	// and the secret that won is returned. When a concurrent caller swapped
	// first, their secret is kept and returned instead, so racing callers
	// agree on a single persisted secret exactly as with CreateSecret. A
	// missing record or an empty stored secret counts as a match.
	ReplaceSecretIf(ctx context.Context, scope, accountID, old, secret string) (string, error)

	// SetEnabled flips the enabled flag, or ErrRecordNotFound.
	SetEnabled(ctx context.Context, scope, accountID string, enabled bool) error

	// ReplaceRecoveryCodes swaps the full set of stored recovery code
	// hashes, or ErrRecordNotFound.
	ReplaceRecoveryCodes(ctx context.Context, scope, accountID string, hashedCodes []string) error

	// ConsumeRecoveryCode atomically removes one stored hash and reports
	// whether it was present. A missing record consumes nothing.
	ConsumeRecoveryCode(ctx context.Context, scope, accountID, hashedCode string) (bool, error)
}
