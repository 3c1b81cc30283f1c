// Package totp implements the Time-based One-Time Password algorithm and the
// supporting utilities a 2FA enrollment flow needs: secret generation,
// provisioning URI construction, recovery codes, and AES-256 encryption
// helpers for persisting secrets.
//
// The package is self-contained, following RFC 4226 (HOTP) and RFC 6238
// (TOTP) directly rather than depending on a third-party OTP library, which
// keeps services framework-agnostic while still following contemporary
// security practice.
//
// # Architecture
//
//   - otp.go      – secret generation (GenerateSecret), code computation
//     (CodeAt/GenerateCode) and validation with a configurable drift window
//     (ValidateCodeAt/ValidateCode).
//   - uri.go      – otpauth:// provisioning URI construction (BuildURI) for
//     onboarding to Google Authenticator, 1Password and compatible apps.
//   - recovery.go – creation, hashing and constant-time verification of
//     single-use recovery codes.
//   - aes256.go   – AES-256-GCM encryption of the secret for storage, plus
//     key generation and loading helpers.
//
// Secrets are passed around in their Base32 textual form (see the
// base32codec package); raw key bytes never leave this package.
//
// # Usage
//
// The minimal happy path for enrolling a user:
//
//	secret, _ := totp.GenerateSecretKey()
//
//	uri, _ := totp.BuildURI(totp.URIParams{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "Acme",
//	})
//	// render uri as a QR code for the user to scan
//
//	ok, _ := totp.ValidateCode(secret, "123456")
//
// # Error Handling
//
// Every exported operation returns a descriptive error that may be wrapped
// using errors.Join. Inspect errors with errors.Is against package level
// sentinels such as ErrInvalidSecret, ErrInvalidLabel, ErrSecretTooShort.
//
// # See Also
//
//   - RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   - RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
package totp
