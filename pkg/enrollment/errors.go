package enrollment

import "errors"

var (
	ErrInvalidScope       = errors.New("invalid enrollment scope")
	ErrMissingAccountID   = errors.New("missing account id")
	ErrNotEnrolled        = errors.New("account is not enrolled in two-factor authentication")
	ErrNoSecretEnrolled   = errors.New("no valid secret enrolled for account")
	ErrRecordNotFound     = errors.New("enrollment record not found")
	ErrMissingStore       = errors.New("missing enrollment store")
	ErrMissingIssuer      = errors.New("missing issuer")
	ErrMissingScopes      = errors.New("at least one scope must be configured")
	ErrFailedToLoadRecord = errors.New("failed to load enrollment record")
	ErrFailedToSaveRecord = errors.New("failed to save enrollment record")
)
