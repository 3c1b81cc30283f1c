package enrollment

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. Suitable for tests
// and single-instance deployments; state does not survive restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[memoryKey]*Record
}

type memoryKey struct {
	scope     string
	accountID string
}

// NewMemoryStore creates an empty in-memory enrollment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[memoryKey]*Record)}
}

func copyRecord(r *Record) *Record {
	cp := *r
	cp.RecoveryCodes = slices.Clone(r.RecoveryCodes)
	return &cp
}

// Get retrieves a record, or ErrRecordNotFound.
func (m *MemoryStore) Get(ctx context.Context, scope, accountID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[memoryKey{scope, accountID}]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return copyRecord(rec), nil
}

// CreateSecret stores the secret unless one is already present and returns
// the winner. The write lock serializes concurrent creation for the same key.
func (m *MemoryStore) CreateSecret(ctx context.Context, scope, accountID, secret string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{scope, accountID}
	if rec, ok := m.records[key]; ok && rec.Secret != "" {
		return rec.Secret, nil
	}

	m.records[key] = &Record{
		Scope:     scope,
		AccountID: accountID,
		Secret:    secret,
		UpdatedAt: time.Now(),
	}
	return secret, nil
}

// ReplaceSecret installs a new secret and resets the enrollment.
func (m *MemoryStore) ReplaceSecret(ctx context.Context, scope, accountID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[memoryKey{scope, accountID}] = &Record{
		Scope:     scope,
		AccountID: accountID,
		Secret:    secret,
		UpdatedAt: time.Now(),
	}
	return nil
}

// ReplaceSecretIf swaps the secret only while the stored one still equals
// old, all under the write lock; otherwise the current secret is kept and
// returned so every racing caller observes the same winner.
func (m *MemoryStore) ReplaceSecretIf(ctx context.Context, scope, accountID, old, secret string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{scope, accountID}
	if rec, ok := m.records[key]; ok && rec.Secret != "" && rec.Secret != old {
		return rec.Secret, nil
	}

	m.records[key] = &Record{
		Scope:     scope,
		AccountID: accountID,
		Secret:    secret,
		UpdatedAt: time.Now(),
	}
	return secret, nil
}

// SetEnabled flips the enabled flag, or ErrRecordNotFound.
func (m *MemoryStore) SetEnabled(ctx context.Context, scope, accountID string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[memoryKey{scope, accountID}]
	if !ok {
		return ErrRecordNotFound
	}
	rec.Enabled = enabled
	rec.UpdatedAt = time.Now()
	return nil
}

// ReplaceRecoveryCodes swaps the stored hash set, or ErrRecordNotFound.
func (m *MemoryStore) ReplaceRecoveryCodes(ctx context.Context, scope, accountID string, hashedCodes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[memoryKey{scope, accountID}]
	if !ok {
		return ErrRecordNotFound
	}
	rec.RecoveryCodes = slices.Clone(hashedCodes)
	rec.UpdatedAt = time.Now()
	return nil
}

// ConsumeRecoveryCode removes one stored hash under the write lock, so a code
// racing against itself is honored exactly once.
func (m *MemoryStore) ConsumeRecoveryCode(ctx context.Context, scope, accountID, hashedCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[memoryKey{scope, accountID}]
	if !ok {
		return false, nil
	}

	idx := slices.Index(rec.RecoveryCodes, hashedCode)
	if idx < 0 {
		return false, nil
	}
	rec.RecoveryCodes = slices.Delete(rec.RecoveryCodes, idx, idx+1)
	rec.UpdatedAt = time.Now()
	return true, nil
}
