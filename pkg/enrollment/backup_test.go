package enrollment_test

import (
	"testing"
	"time"

	"github.com/dmitrymomot/twofa/pkg/enrollment"
	"github.com/dmitrymomot/twofa/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBackupDocument(t *testing.T) {
	t.Parallel()

	secret := "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	generatedAt := time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)

	t.Run("pure function of its inputs", func(t *testing.T) {
		t.Parallel()
		a, err := enrollment.RenderBackupDocument("Acme", "user", secret, generatedAt)
		require.NoError(t, err)
		b, err := enrollment.RenderBackupDocument("Acme", "user", secret, generatedAt)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("contains code, scope and timestamp", func(t *testing.T) {
		t.Parallel()
		doc, err := enrollment.RenderBackupDocument("Acme", "affiliate", secret, generatedAt)
		require.NoError(t, err)

		code, err := totp.CodeAt(secret, generatedAt, totp.DefaultDigits, totp.DefaultPeriod)
		require.NoError(t, err)

		assert.Contains(t, doc, "Acme")
		assert.Contains(t, doc, "affiliate")
		assert.Contains(t, doc, code)
		assert.Contains(t, doc, "2026-08-29 09:30:00 UTC")
	})

	t.Run("invalid secret", func(t *testing.T) {
		t.Parallel()
		_, err := enrollment.RenderBackupDocument("Acme", "user", "", generatedAt)
		assert.ErrorIs(t, err, totp.ErrInvalidSecret)
	})
}
