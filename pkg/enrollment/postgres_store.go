package enrollment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the DDL for the enrollment table. Apply it with EnsureSchema or
// through the embedding application's own migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS twofa_enrollments (
	scope          TEXT        NOT NULL,
	account_id     TEXT        NOT NULL,
	secret         TEXT        NOT NULL DEFAULT '',
	enabled        BOOLEAN     NOT NULL DEFAULT FALSE,
	recovery_codes TEXT[]      NOT NULL DEFAULT '{}',
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (scope, account_id)
);
`

// PostgresStore implements Store on a PostgreSQL table via pgx. The primary
// key on (scope, account_id) plus ON CONFLICT upserts give the atomicity the
// Store contract requires without explicit locking.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the enrollment table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return errors.Join(ErrFailedToSaveRecord, err)
	}
	return nil
}

// Get retrieves a record, or ErrRecordNotFound.
func (s *PostgresStore) Get(ctx context.Context, scope, accountID string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT secret, enabled, recovery_codes, updated_at
		FROM twofa_enrollments
		WHERE scope = $1 AND account_id = $2
	`, scope, accountID)

	rec := Record{Scope: scope, AccountID: accountID}
	if err := row.Scan(&rec.Secret, &rec.Enabled, &rec.RecoveryCodes, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Join(ErrFailedToLoadRecord, err)
	}
	return &rec, nil
}

// CreateSecret inserts the secret and returns the stored value. When a
// concurrent insert or an earlier enrollment got there first, the existing
// secret is kept and returned, so every caller observes the same winner.
func (s *PostgresStore) CreateSecret(ctx context.Context, scope, accountID, secret string) (string, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO twofa_enrollments (scope, account_id, secret)
		VALUES ($1, $2, $3)
		ON CONFLICT (scope, account_id)
		DO UPDATE SET
			secret     = COALESCE(NULLIF(twofa_enrollments.secret, ''), EXCLUDED.secret),
			updated_at = now()
		RETURNING secret
	`, scope, accountID, secret)

	var stored string
	if err := row.Scan(&stored); err != nil {
		return "", errors.Join(ErrFailedToSaveRecord, err)
	}
	return stored, nil
}

// ReplaceSecret installs a new secret and resets the enrollment.
func (s *PostgresStore) ReplaceSecret(ctx context.Context, scope, accountID, secret string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO twofa_enrollments (scope, account_id, secret)
		VALUES ($1, $2, $3)
		ON CONFLICT (scope, account_id)
		DO UPDATE SET
			secret         = EXCLUDED.secret,
			enabled        = FALSE,
			recovery_codes = '{}',
			updated_at     = now()
	`, scope, accountID, secret)
	if err != nil {
		return errors.Join(ErrFailedToSaveRecord, err)
	}
	return nil
}

// ReplaceSecretIf swaps the secret in a single conditional UPDATE. Racing
// callers serialize on the row lock; the loser's WHERE clause no longer
// matches, so it falls through to the create path and picks up whatever
// secret is now present.
func (s *PostgresStore) ReplaceSecretIf(ctx context.Context, scope, accountID, old, secret string) (string, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE twofa_enrollments
		SET secret = $4, enabled = FALSE, recovery_codes = '{}', updated_at = now()
		WHERE scope = $1 AND account_id = $2 AND secret = $3
		RETURNING secret
	`, scope, accountID, old, secret)

	var stored string
	err := row.Scan(&stored)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", errors.Join(ErrFailedToSaveRecord, err)
	}
	return s.CreateSecret(ctx, scope, accountID, secret)
}

// SetEnabled flips the enabled flag, or ErrRecordNotFound.
func (s *PostgresStore) SetEnabled(ctx context.Context, scope, accountID string, enabled bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE twofa_enrollments
		SET enabled = $3, updated_at = now()
		WHERE scope = $1 AND account_id = $2
	`, scope, accountID, enabled)
	if err != nil {
		return errors.Join(ErrFailedToSaveRecord, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ReplaceRecoveryCodes swaps the stored hash set, or ErrRecordNotFound.
func (s *PostgresStore) ReplaceRecoveryCodes(ctx context.Context, scope, accountID string, hashedCodes []string) error {
	if hashedCodes == nil {
		hashedCodes = []string{}
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE twofa_enrollments
		SET recovery_codes = $3, updated_at = now()
		WHERE scope = $1 AND account_id = $2
	`, scope, accountID, hashedCodes)
	if err != nil {
		return errors.Join(ErrFailedToSaveRecord, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ConsumeRecoveryCode removes the hash in a single conditional UPDATE, so a
// code raced by two requests is consumed by exactly one of them.
func (s *PostgresStore) ConsumeRecoveryCode(ctx context.Context, scope, accountID, hashedCode string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE twofa_enrollments
		SET recovery_codes = array_remove(recovery_codes, $3), updated_at = now()
		WHERE scope = $1 AND account_id = $2 AND $3 = ANY(recovery_codes)
	`, scope, accountID, hashedCode)
	if err != nil {
		return false, errors.Join(ErrFailedToSaveRecord, err)
	}
	return tag.RowsAffected() > 0, nil
}
