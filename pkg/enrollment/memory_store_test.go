package enrollment_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrymomot/twofa/pkg/enrollment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGet(t *testing.T) {
	t.Parallel()
	store := enrollment.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "user", "missing")
	assert.ErrorIs(t, err, enrollment.ErrRecordNotFound)

	_, err = store.CreateSecret(ctx, "user", "acc-1", "SECRET")
	require.NoError(t, err)

	rec, err := store.Get(ctx, "user", "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "user", rec.Scope)
	assert.Equal(t, "acc-1", rec.AccountID)
	assert.Equal(t, "SECRET", rec.Secret)
	assert.False(t, rec.Enabled)

	// Records from the same account id under a different scope are separate.
	_, err = store.Get(ctx, "admin", "acc-1")
	assert.ErrorIs(t, err, enrollment.ErrRecordNotFound)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	t.Parallel()
	store := enrollment.NewMemoryStore()
	ctx := context.Background()

	_, err := store.CreateSecret(ctx, "user", "acc-1", "SECRET")
	require.NoError(t, err)
	require.NoError(t, store.ReplaceRecoveryCodes(ctx, "user", "acc-1", []string{"h1", "h2"}))

	rec, err := store.Get(ctx, "user", "acc-1")
	require.NoError(t, err)

	// Mutating the returned record must not change stored state.
	rec.Secret = "TAMPERED"
	rec.RecoveryCodes[0] = "tampered"

	fresh, err := store.Get(ctx, "user", "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "SECRET", fresh.Secret)
	assert.Equal(t, []string{"h1", "h2"}, fresh.RecoveryCodes)
}

func TestMemoryStoreCreateSecret(t *testing.T) {
	t.Parallel()

	t.Run("first write wins", func(t *testing.T) {
		t.Parallel()
		store := enrollment.NewMemoryStore()
		ctx := context.Background()

		stored, err := store.CreateSecret(ctx, "user", "acc-1", "FIRST")
		require.NoError(t, err)
		assert.Equal(t, "FIRST", stored)

		stored, err = store.CreateSecret(ctx, "user", "acc-1", "SECOND")
		require.NoError(t, err)
		assert.Equal(t, "FIRST", stored)
	})

	t.Run("concurrent writers agree", func(t *testing.T) {
		t.Parallel()
		store := enrollment.NewMemoryStore()
		ctx := context.Background()

		const writers = 32
		results := make([]string, writers)

		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				stored, err := store.CreateSecret(ctx, "user", "acc-1", "SECRET-"+string(rune('A'+i)))
				assert.NoError(t, err)
				results[i] = stored
			}()
		}
		wg.Wait()

		for i := 0; i < writers; i++ {
			assert.Equal(t, results[0], results[i])
		}
	})
}

func TestMemoryStoreReplaceSecret(t *testing.T) {
	t.Parallel()
	store := enrollment.NewMemoryStore()
	ctx := context.Background()

	_, err := store.CreateSecret(ctx, "user", "acc-1", "OLD")
	require.NoError(t, err)
	require.NoError(t, store.SetEnabled(ctx, "user", "acc-1", true))
	require.NoError(t, store.ReplaceRecoveryCodes(ctx, "user", "acc-1", []string{"h1"}))

	require.NoError(t, store.ReplaceSecret(ctx, "user", "acc-1", "NEW"))

	rec, err := store.Get(ctx, "user", "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "NEW", rec.Secret)
	assert.False(t, rec.Enabled)
	assert.Empty(t, rec.RecoveryCodes)

	// Creates the record when missing.
	require.NoError(t, store.ReplaceSecret(ctx, "user", "acc-2", "FRESH"))
	rec, err = store.Get(ctx, "user", "acc-2")
	require.NoError(t, err)
	assert.Equal(t, "FRESH", rec.Secret)
}

func TestMemoryStoreReplaceSecretIf(t *testing.T) {
	t.Parallel()

	t.Run("swaps while the stored secret matches", func(t *testing.T) {
		t.Parallel()
		store := enrollment.NewMemoryStore()
		ctx := context.Background()

		_, err := store.CreateSecret(ctx, "user", "acc-1", "OLD")
		require.NoError(t, err)
		require.NoError(t, store.SetEnabled(ctx, "user", "acc-1", true))
		require.NoError(t, store.ReplaceRecoveryCodes(ctx, "user", "acc-1", []string{"h1"}))

		stored, err := store.ReplaceSecretIf(ctx, "user", "acc-1", "OLD", "NEW")
		require.NoError(t, err)
		assert.Equal(t, "NEW", stored)

		rec, err := store.Get(ctx, "user", "acc-1")
		require.NoError(t, err)
		assert.Equal(t, "NEW", rec.Secret)
		assert.False(t, rec.Enabled)
		assert.Empty(t, rec.RecoveryCodes)
	})

	t.Run("keeps and returns a concurrent winner", func(t *testing.T) {
		t.Parallel()
		store := enrollment.NewMemoryStore()
		ctx := context.Background()

		_, err := store.CreateSecret(ctx, "user", "acc-1", "OLD")
		require.NoError(t, err)

		stored, err := store.ReplaceSecretIf(ctx, "user", "acc-1", "OLD", "WINNER")
		require.NoError(t, err)
		require.Equal(t, "WINNER", stored)

		// A caller still holding the stale observation loses the swap.
		stored, err = store.ReplaceSecretIf(ctx, "user", "acc-1", "OLD", "LOSER")
		require.NoError(t, err)
		assert.Equal(t, "WINNER", stored)

		rec, err := store.Get(ctx, "user", "acc-1")
		require.NoError(t, err)
		assert.Equal(t, "WINNER", rec.Secret)
	})

	t.Run("missing record counts as a match", func(t *testing.T) {
		t.Parallel()
		store := enrollment.NewMemoryStore()
		ctx := context.Background()

		stored, err := store.ReplaceSecretIf(ctx, "user", "acc-1", "OLD", "NEW")
		require.NoError(t, err)
		assert.Equal(t, "NEW", stored)
	})

	t.Run("concurrent swappers agree on one secret", func(t *testing.T) {
		t.Parallel()
		store := enrollment.NewMemoryStore()
		ctx := context.Background()

		_, err := store.CreateSecret(ctx, "user", "acc-1", "OLD")
		require.NoError(t, err)

		const swappers = 32
		results := make([]string, swappers)

		var wg sync.WaitGroup
		for i := 0; i < swappers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				stored, err := store.ReplaceSecretIf(ctx, "user", "acc-1", "OLD", "NEW-"+string(rune('A'+i)))
				assert.NoError(t, err)
				results[i] = stored
			}()
		}
		wg.Wait()

		rec, err := store.Get(ctx, "user", "acc-1")
		require.NoError(t, err)
		for i := 0; i < swappers; i++ {
			assert.Equal(t, rec.Secret, results[i])
		}
	})
}

func TestMemoryStoreSetEnabled(t *testing.T) {
	t.Parallel()
	store := enrollment.NewMemoryStore()
	ctx := context.Background()

	err := store.SetEnabled(ctx, "user", "missing", true)
	assert.ErrorIs(t, err, enrollment.ErrRecordNotFound)

	_, err = store.CreateSecret(ctx, "user", "acc-1", "SECRET")
	require.NoError(t, err)

	require.NoError(t, store.SetEnabled(ctx, "user", "acc-1", true))
	rec, err := store.Get(ctx, "user", "acc-1")
	require.NoError(t, err)
	assert.True(t, rec.Enabled)
}

func TestMemoryStoreRecoveryCodes(t *testing.T) {
	t.Parallel()

	t.Run("replace requires a record", func(t *testing.T) {
		t.Parallel()
		store := enrollment.NewMemoryStore()
		err := store.ReplaceRecoveryCodes(context.Background(), "user", "missing", []string{"h1"})
		assert.ErrorIs(t, err, enrollment.ErrRecordNotFound)
	})

	t.Run("consume is exactly once", func(t *testing.T) {
		t.Parallel()
		store := enrollment.NewMemoryStore()
		ctx := context.Background()

		_, err := store.CreateSecret(ctx, "user", "acc-1", "SECRET")
		require.NoError(t, err)
		require.NoError(t, store.ReplaceRecoveryCodes(ctx, "user", "acc-1", []string{"h1", "h2"}))

		ok, err := store.ConsumeRecoveryCode(ctx, "user", "acc-1", "h1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.ConsumeRecoveryCode(ctx, "user", "acc-1", "h1")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.ConsumeRecoveryCode(ctx, "user", "acc-1", "unknown")
		require.NoError(t, err)
		assert.False(t, ok)

		// Missing records consume nothing rather than erroring.
		ok, err = store.ConsumeRecoveryCode(ctx, "user", "missing", "h1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("concurrent consumption honors a code once", func(t *testing.T) {
		t.Parallel()
		store := enrollment.NewMemoryStore()
		ctx := context.Background()

		_, err := store.CreateSecret(ctx, "user", "acc-1", "SECRET")
		require.NoError(t, err)
		require.NoError(t, store.ReplaceRecoveryCodes(ctx, "user", "acc-1", []string{"h1"}))

		var succeeded atomic.Int32
		var wg sync.WaitGroup
		for n := 0; n < 16; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := store.ConsumeRecoveryCode(ctx, "user", "acc-1", "h1")
				assert.NoError(t, err)
				if ok {
					succeeded.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())
	})
}
