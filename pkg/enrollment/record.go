package enrollment

import "time"

// Record is the per-account 2FA enrollment state, keyed by (scope, account id).
// Scope partitions accounts by principal type (for example "user", "admin",
// "affiliate"); the valid set is configured on the Service.
//
// Invariant maintained by the Service: Enabled is true only while Secret holds
// a valid Base32 secret generated by this system.
type Record struct {
	Scope     string
	AccountID string

	// Secret is the Base32-encoded TOTP secret as handed to the store. When
	// the Service is configured with an encryption key this is the AES-256-GCM
	// ciphertext instead of the plain encoding.
	Secret string

	Enabled bool

	// RecoveryCodes holds the SHA-256 hashes of the unused single-use
	// recovery codes. Plaintext codes are shown to the user once at issue
	// time and never stored.
	RecoveryCodes []string

	UpdatedAt time.Time
}
