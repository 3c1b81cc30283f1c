// Package enrollment tracks per-account two-factor authentication state and
// exposes the operations a setup/verification flow needs: secret
// provisioning, enable/disable toggling, code verification, recovery codes,
// and backup document rendering.
//
// Accounts are addressed by a (scope, account id) pair. The scope partitions
// principal types ("user", "admin", "affiliate", ...) and its valid set is
// configured at construction; every operation validates the scope before
// touching any state, so an unknown scope can never read or write a record.
//
// # Architecture
//
//   - Service    – stateless orchestration over a Store plus the totp,
//     qrcode and slug packages. Construct with New or NewFromConfig and
//     functional options.
//   - Store      – persistence interface with three implementations:
//     MemoryStore (in-process, tests and single instances), PostgresStore
//     (pgx, ON CONFLICT upserts), RedisStore (hash + set per account).
//   - backup.go  – plain-text backup document rendering.
//
// Concurrency: Store implementations are required to make secret creation
// and recovery-code consumption atomic per key. Two requests racing through
// first-time setup agree on one secret, and a recovery code is redeemable
// exactly once.
//
// # Usage
//
//	svc, err := enrollment.New(enrollment.NewMemoryStore(), "Acme",
//	    enrollment.WithScopes("user", "admin"),
//	    enrollment.WithSiteName("Acme Dashboard"),
//	)
//	if err != nil {
//		// handle configuration error
//	}
//
//	// First setup visit: provision a secret and show the QR code.
//	img, err := svc.QRCode(ctx, "user", accountID, "alice@example.com", 256)
//
//	// The user confirms with a code from their authenticator.
//	ok, err := svc.Verify(ctx, "user", accountID, submitted, time.Now())
//	if ok {
//		err = svc.SetEnabled(ctx, "user", accountID, true)
//	}
//
// # Error Handling
//
// Operations return package sentinels (ErrInvalidScope, ErrNotEnrolled,
// ErrNoSecretEnrolled, ...) that callers translate into user-facing
// behavior. All conditions are recoverable by the caller; the package never
// performs I/O side effects beyond the Store.
package enrollment
