package totp

import "errors"

var (
	ErrFailedToGenerateSecret        = errors.New("failed to generate TOTP secret")
	ErrSecretTooShort                = errors.New("secret length below the 16-byte safety floor")
	ErrMissingSecret                 = errors.New("missing secret")
	ErrInvalidSecret                 = errors.New("invalid secret")
	ErrInvalidDigits                 = errors.New("invalid digits, must be between 1 and 9")
	ErrInvalidPeriod                 = errors.New("invalid period, must be greater than 0")
	ErrInvalidWindow                 = errors.New("invalid validation window, must not be negative")
	ErrInvalidLabel                  = errors.New("invalid provisioning label")
	ErrMissingAccountName            = errors.New("missing account name")
	ErrMissingIssuer                 = errors.New("missing issuer")
	ErrFailedToEncryptSecret         = errors.New("failed to encrypt TOTP secret")
	ErrFailedToDecryptSecret         = errors.New("failed to decrypt TOTP secret")
	ErrInvalidCipherTooShort         = errors.New("cipher text too short")
	ErrFailedToGenerateEncryptionKey = errors.New("failed to generate encryption key")
	ErrFailedToLoadEncryptionKey     = errors.New("failed to load encryption key")
	ErrInvalidEncryptionKeyLength    = errors.New("invalid encryption key length")
	ErrEncryptionKeyNotSet           = errors.New("encryption key not set")
	ErrInvalidRecoveryCodeCount      = errors.New("invalid recovery code count, must be greater than 0")
	ErrFailedToGenerateRecoveryCode  = errors.New("failed to generate recovery code")
)
