package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis. Each record is a hash under
// twofa:enrollment:{scope}:{accountID} with the recovery code hashes in a
// sibling set; HSETNX and SREM provide the per-key atomicity the Store
// contract requires.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Store backed by the given Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) recordKey(scope, accountID string) string {
	return fmt.Sprintf("twofa:enrollment:%s:%s", scope, accountID)
}

func (s *RedisStore) codesKey(scope, accountID string) string {
	return s.recordKey(scope, accountID) + ":codes"
}

// Get retrieves a record, or ErrRecordNotFound.
func (s *RedisStore) Get(ctx context.Context, scope, accountID string) (*Record, error) {
	fields, err := s.client.HGetAll(ctx, s.recordKey(scope, accountID)).Result()
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadRecord, err)
	}
	if len(fields) == 0 {
		return nil, ErrRecordNotFound
	}

	codes, err := s.client.SMembers(ctx, s.codesKey(scope, accountID)).Result()
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadRecord, err)
	}

	rec := Record{
		Scope:         scope,
		AccountID:     accountID,
		Secret:        fields["secret"],
		Enabled:       fields["enabled"] == "1",
		RecoveryCodes: codes,
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["updated_at"]); err == nil {
		rec.UpdatedAt = ts
	}
	return &rec, nil
}

// CreateSecret stores the secret via HSETNX, so under concurrent calls the
// first write wins and everyone reads it back.
func (s *RedisStore) CreateSecret(ctx context.Context, scope, accountID, secret string) (string, error) {
	key := s.recordKey(scope, accountID)

	created, err := s.client.HSetNX(ctx, key, "secret", secret).Result()
	if err != nil {
		return "", errors.Join(ErrFailedToSaveRecord, err)
	}
	if created {
		if err := s.client.HSet(ctx, key,
			"enabled", "0",
			"updated_at", time.Now().Format(time.RFC3339Nano),
		).Err(); err != nil {
			return "", errors.Join(ErrFailedToSaveRecord, err)
		}
		return secret, nil
	}

	stored, err := s.client.HGet(ctx, key, "secret").Result()
	if err != nil {
		return "", errors.Join(ErrFailedToSaveRecord, err)
	}
	// An empty field means the record exists without a secret; claim it
	// through the same compare-and-swap the replacement path uses, so two
	// claimers cannot overwrite each other.
	if stored == "" {
		return s.ReplaceSecretIf(ctx, scope, accountID, "", secret)
	}
	return stored, nil
}

// maxTxRetries bounds optimistic WATCH retries when the record is being
// modified concurrently.
const maxTxRetries = 5

// ReplaceSecretIf swaps the secret under a WATCH transaction: the swap only
// commits while the stored secret still equals old, and a concurrent write
// aborts the transaction for a retry. The loser returns the winner's secret.
func (s *RedisStore) ReplaceSecretIf(ctx context.Context, scope, accountID, old, secret string) (string, error) {
	key := s.recordKey(scope, accountID)

	var stored string
	txn := func(tx *redis.Tx) error {
		cur, err := tx.HGet(ctx, key, "secret").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != old && cur != "" {
			// Someone else already installed a different secret; keep it.
			stored = cur
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				"secret", secret,
				"enabled", "0",
				"updated_at", time.Now().Format(time.RFC3339Nano),
			)
			pipe.Del(ctx, s.codesKey(scope, accountID))
			return nil
		})
		if err != nil {
			return err
		}
		stored = secret
		return nil
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return stored, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return "", errors.Join(ErrFailedToSaveRecord, err)
	}
	return "", errors.Join(ErrFailedToSaveRecord, redis.TxFailedErr)
}

// ReplaceSecret installs a new secret and resets the enrollment.
func (s *RedisStore) ReplaceSecret(ctx context.Context, scope, accountID, secret string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.recordKey(scope, accountID),
			"secret", secret,
			"enabled", "0",
			"updated_at", time.Now().Format(time.RFC3339Nano),
		)
		pipe.Del(ctx, s.codesKey(scope, accountID))
		return nil
	})
	if err != nil {
		return errors.Join(ErrFailedToSaveRecord, err)
	}
	return nil
}

// SetEnabled flips the enabled flag, or ErrRecordNotFound.
func (s *RedisStore) SetEnabled(ctx context.Context, scope, accountID string, enabled bool) error {
	key := s.recordKey(scope, accountID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return errors.Join(ErrFailedToSaveRecord, err)
	}
	if exists == 0 {
		return ErrRecordNotFound
	}

	value := "0"
	if enabled {
		value = "1"
	}
	if err := s.client.HSet(ctx, key,
		"enabled", value,
		"updated_at", time.Now().Format(time.RFC3339Nano),
	).Err(); err != nil {
		return errors.Join(ErrFailedToSaveRecord, err)
	}
	return nil
}

// ReplaceRecoveryCodes swaps the stored hash set, or ErrRecordNotFound.
func (s *RedisStore) ReplaceRecoveryCodes(ctx context.Context, scope, accountID string, hashedCodes []string) error {
	exists, err := s.client.Exists(ctx, s.recordKey(scope, accountID)).Result()
	if err != nil {
		return errors.Join(ErrFailedToSaveRecord, err)
	}
	if exists == 0 {
		return ErrRecordNotFound
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.codesKey(scope, accountID))
		if len(hashedCodes) > 0 {
			members := make([]any, len(hashedCodes))
			for i, code := range hashedCodes {
				members[i] = code
			}
			pipe.SAdd(ctx, s.codesKey(scope, accountID), members...)
		}
		pipe.HSet(ctx, s.recordKey(scope, accountID),
			"updated_at", time.Now().Format(time.RFC3339Nano),
		)
		return nil
	})
	if err != nil {
		return errors.Join(ErrFailedToSaveRecord, err)
	}
	return nil
}

// ConsumeRecoveryCode removes one stored hash via SREM, which reports whether
// the member existed, making concurrent consumption of the same code safe.
func (s *RedisStore) ConsumeRecoveryCode(ctx context.Context, scope, accountID, hashedCode string) (bool, error) {
	removed, err := s.client.SRem(ctx, s.codesKey(scope, accountID), hashedCode).Result()
	if err != nil {
		return false, errors.Join(ErrFailedToSaveRecord, err)
	}
	return removed > 0, nil
}
