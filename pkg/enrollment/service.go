package enrollment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/twofa/pkg/qrcode"
	"github.com/dmitrymomot/twofa/pkg/slug"
	"github.com/dmitrymomot/twofa/pkg/totp"
)

// Service coordinates per-account 2FA enrollment: secret provisioning,
// enable/disable toggling, code verification, recovery codes, and backup
// document rendering. All state lives behind the Store; the Service itself
// is stateless and safe for concurrent use.
type Service struct {
	store  Store
	scopes map[string]struct{}
	logger *slog.Logger

	issuer   string
	siteName string

	digits       int
	period       int
	window       int
	secretLength int

	recoveryCodeCount int

	// encryptionKey, when set, wraps secrets in AES-256-GCM before they
	// reach the store.
	encryptionKey []byte
}

// Option configures a Service during construction.
type Option func(*Service)

// WithScopes sets the whitelist of valid enrollment scopes.
func WithScopes(scopes ...string) Option {
	return func(s *Service) {
		s.scopes = make(map[string]struct{}, len(scopes))
		for _, scope := range scopes {
			s.scopes[scope] = struct{}{}
		}
	}
}

// WithSiteName sets the human-readable site name used in backup documents.
func WithSiteName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.siteName = name
		}
	}
}

// WithDigits sets the one-time code length.
func WithDigits(digits int) Option {
	return func(s *Service) {
		s.digits = digits
	}
}

// WithPeriod sets the time step in seconds.
func WithPeriod(period int) Option {
	return func(s *Service) {
		s.period = period
	}
}

// WithWindow sets the accepted clock-drift window in time steps.
func WithWindow(window int) Option {
	return func(s *Service) {
		s.window = window
	}
}

// WithSecretLength sets the generated secret length in bytes.
func WithSecretLength(length int) Option {
	return func(s *Service) {
		s.secretLength = length
	}
}

// WithRecoveryCodeCount sets how many recovery codes a batch issues.
func WithRecoveryCodeCount(count int) Option {
	return func(s *Service) {
		s.recoveryCodeCount = count
	}
}

// WithEncryptionKey enables AES-256-GCM encryption of secrets at rest. The
// key must be 32 bytes; see totp.GetEncryptionKey for loading one from
// configuration.
func WithEncryptionKey(key []byte) Option {
	return func(s *Service) {
		s.encryptionKey = key
	}
}

// WithLogger configures the service logger. Secrets and codes are never
// logged regardless of level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Service with the given store and issuer label. Defaults:
// scope whitelist {"user"}, RFC 6238 standard code parameters, 20-byte
// secrets, 10 recovery codes per batch.
func New(store Store, issuer string, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrMissingStore
	}
	if issuer == "" {
		return nil, ErrMissingIssuer
	}

	s := &Service{
		store:             store,
		scopes:            map[string]struct{}{"user": {}},
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		issuer:            issuer,
		siteName:          issuer,
		digits:            totp.DefaultDigits,
		period:            totp.DefaultPeriod,
		window:            totp.DefaultWindow,
		secretLength:      totp.DefaultSecretLength,
		recoveryCodeCount: 10,
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.scopes) == 0 {
		return nil, ErrMissingScopes
	}
	if s.digits < 1 || s.digits > 9 {
		return nil, totp.ErrInvalidDigits
	}
	if s.period < 1 {
		return nil, totp.ErrInvalidPeriod
	}
	if s.window < 0 {
		return nil, totp.ErrInvalidWindow
	}
	if s.secretLength < totp.MinSecretLength {
		return nil, totp.ErrSecretTooShort
	}
	if s.recoveryCodeCount < 1 {
		return nil, totp.ErrInvalidRecoveryCodeCount
	}
	if s.encryptionKey != nil && len(s.encryptionKey) != totp.AESKeySize {
		return nil, totp.ErrInvalidEncryptionKeyLength
	}

	return s, nil
}

// NewFromConfig creates a Service from an environment-derived Config.
// Options are applied on top and take precedence.
func NewFromConfig(store Store, cfg Config, opts ...Option) (*Service, error) {
	base := []Option{
		WithSiteName(cfg.SiteName),
		WithScopes(cfg.Scopes...),
		WithDigits(cfg.Digits),
		WithPeriod(cfg.Period),
		WithWindow(cfg.Window),
		WithSecretLength(cfg.SecretLength),
		WithRecoveryCodeCount(cfg.RecoveryCodeCount),
	}
	return New(store, cfg.Issuer, append(base, opts...)...)
}

// checkKey validates the scope against the configured whitelist before any
// state access, and rejects empty account ids.
func (s *Service) checkKey(scope, accountID string) error {
	if _, ok := s.scopes[scope]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	if accountID == "" {
		return ErrMissingAccountID
	}
	return nil
}

// secretFromRecord unwraps and validates the stored secret, returning its
// plain Base32 form or an error when the record holds nothing usable.
func (s *Service) secretFromRecord(rec *Record) (string, error) {
	if rec == nil || rec.Secret == "" {
		return "", ErrNoSecretEnrolled
	}

	secret := rec.Secret
	if s.encryptionKey != nil {
		plain, err := totp.DecryptSecret(secret, s.encryptionKey)
		if err != nil {
			return "", errors.Join(ErrNoSecretEnrolled, err)
		}
		secret = plain
	}

	if _, err := totp.DecodeSecret(secret); err != nil {
		return "", errors.Join(ErrNoSecretEnrolled, err)
	}
	return secret, nil
}

// wrapSecret applies at-rest encryption when configured.
func (s *Service) wrapSecret(secret string) (string, error) {
	if s.encryptionKey == nil {
		return secret, nil
	}
	return totp.EncryptSecret(secret, s.encryptionKey)
}

// GetOrCreateSecret returns the account's secret, generating and persisting
// a fresh one on first visit. Idempotent after creation: repeated and
// concurrent calls for the same key all observe the same secret.
func (s *Service) GetOrCreateSecret(ctx context.Context, scope, accountID string) (string, error) {
	if err := s.checkKey(scope, accountID); err != nil {
		return "", err
	}

	rec, err := s.store.Get(ctx, scope, accountID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return "", err
	}
	if rec != nil {
		if secret, err := s.secretFromRecord(rec); err == nil {
			return secret, nil
		}
	}

	secret, err := totp.GenerateSecret(s.secretLength)
	if err != nil {
		return "", err
	}
	wrapped, err := s.wrapSecret(secret)
	if err != nil {
		return "", err
	}

	// A record holding an unusable secret (for example an undecodable value
	// left by a legacy system, or a plaintext one from before encryption
	// was enabled) is replaced through a compare-and-swap keyed on the
	// value we observed, so concurrent callers racing through this path
	// agree on a single replacement instead of overwriting each other.
	if rec != nil && rec.Secret != "" {
		stored, err := s.store.ReplaceSecretIf(ctx, scope, accountID, rec.Secret, wrapped)
		if err != nil {
			return "", err
		}
		if stored != wrapped {
			// Lost the replacement race; return the winner.
			return s.secretFromRecord(&Record{Scope: scope, AccountID: accountID, Secret: stored})
		}
		s.logger.InfoContext(ctx, "replaced unusable 2FA secret", "scope", scope)
		return secret, nil
	}

	stored, err := s.store.CreateSecret(ctx, scope, accountID, wrapped)
	if err != nil {
		return "", err
	}
	if stored != wrapped {
		// Lost the creation race; return the winner.
		return s.secretFromRecord(&Record{Scope: scope, AccountID: accountID, Secret: stored})
	}

	s.logger.InfoContext(ctx, "created 2FA secret", "scope", scope)
	return secret, nil
}

// RegenerateSecret discards the current enrollment and installs a fresh
// secret. The enabled flag is cleared and outstanding recovery codes are
// revoked, since both belong to the old secret.
func (s *Service) RegenerateSecret(ctx context.Context, scope, accountID string) (string, error) {
	if err := s.checkKey(scope, accountID); err != nil {
		return "", err
	}

	secret, err := totp.GenerateSecret(s.secretLength)
	if err != nil {
		return "", err
	}
	wrapped, err := s.wrapSecret(secret)
	if err != nil {
		return "", err
	}
	if err := s.store.ReplaceSecret(ctx, scope, accountID, wrapped); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "regenerated 2FA secret", "scope", scope)
	return secret, nil
}

// SetEnabled toggles 2FA for the account. Enabling requires a valid enrolled
// secret and fails with ErrNoSecretEnrolled otherwise; disabling an account
// that was never enrolled is a no-op.
func (s *Service) SetEnabled(ctx context.Context, scope, accountID string, enabled bool) error {
	if err := s.checkKey(scope, accountID); err != nil {
		return err
	}

	if enabled {
		rec, err := s.store.Get(ctx, scope, accountID)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return ErrNoSecretEnrolled
			}
			return err
		}
		if _, err := s.secretFromRecord(rec); err != nil {
			return err
		}
	}

	if err := s.store.SetEnabled(ctx, scope, accountID, enabled); err != nil {
		if !enabled && errors.Is(err, ErrRecordNotFound) {
			return nil
		}
		return err
	}

	s.logger.InfoContext(ctx, "toggled 2FA", "scope", scope, "enabled", enabled)
	return nil
}

// IsEnabled reports whether 2FA is currently enabled for the account.
// Accounts without a record are simply not enabled.
func (s *Service) IsEnabled(ctx context.Context, scope, accountID string) (bool, error) {
	if err := s.checkKey(scope, accountID); err != nil {
		return false, err
	}

	rec, err := s.store.Get(ctx, scope, accountID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.Enabled, nil
}

// Verify checks a submitted one-time code against the account's secret at
// the given time. Returns ErrNotEnrolled when no secret exists for the key.
func (s *Service) Verify(ctx context.Context, scope, accountID, code string, now time.Time) (bool, error) {
	if err := s.checkKey(scope, accountID); err != nil {
		return false, err
	}

	rec, err := s.store.Get(ctx, scope, accountID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return false, ErrNotEnrolled
		}
		return false, err
	}
	secret, err := s.secretFromRecord(rec)
	if err != nil {
		return false, errors.Join(ErrNotEnrolled, err)
	}

	return totp.ValidateCodeAt(secret, code, now, s.window, s.digits, s.period)
}

// ProvisioningURI returns the otpauth:// URI for the account, creating a
// secret on first visit. accountLabel is what authenticator apps display for
// the account (typically an email); it falls back to accountID when empty.
func (s *Service) ProvisioningURI(ctx context.Context, scope, accountID, accountLabel string) (string, error) {
	if err := s.checkKey(scope, accountID); err != nil {
		return "", err
	}

	secret, err := s.GetOrCreateSecret(ctx, scope, accountID)
	if err != nil {
		return "", err
	}
	if accountLabel == "" {
		accountLabel = accountID
	}

	return totp.BuildURI(totp.URIParams{
		Secret:      secret,
		AccountName: accountLabel,
		Issuer:      s.issuer,
		Digits:      s.digits,
		Period:      s.period,
	})
}

// QRCode renders the account's provisioning URI as a PNG data URI suitable
// for an <img> tag. size is in pixels; non-positive values use the qrcode
// package default.
func (s *Service) QRCode(ctx context.Context, scope, accountID, accountLabel string, size int) (string, error) {
	uri, err := s.ProvisioningURI(ctx, scope, accountID, accountLabel)
	if err != nil {
		return "", err
	}
	return qrcode.GenerateBase64Image(uri, size)
}

// BackupDocument renders the downloadable plain-text backup document for the
// account at the given time. Returns ErrNotEnrolled when no secret exists.
func (s *Service) BackupDocument(ctx context.Context, scope, accountID string, now time.Time) (string, error) {
	if err := s.checkKey(scope, accountID); err != nil {
		return "", err
	}

	rec, err := s.store.Get(ctx, scope, accountID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return "", ErrNotEnrolled
		}
		return "", err
	}
	secret, err := s.secretFromRecord(rec)
	if err != nil {
		return "", errors.Join(ErrNotEnrolled, err)
	}

	code, err := totp.CodeAt(secret, now, s.digits, s.period)
	if err != nil {
		return "", err
	}
	return renderBackupDocument(s.siteName, scope, code, s.period, now), nil
}

// BackupFilename returns the attachment filename for the backup document,
// following the pattern 2FA-backup-code-{scope}-{site-slug}.txt.
func (s *Service) BackupFilename(scope string) (string, error) {
	if _, ok := s.scopes[scope]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	return fmt.Sprintf("2FA-backup-code-%s-%s.txt", scope, slug.Make(s.siteName)), nil
}

// IssueRecoveryCodes generates a fresh batch of single-use recovery codes
// for the account, replacing any outstanding ones. The plaintext codes are
// returned exactly once; only their hashes are stored.
func (s *Service) IssueRecoveryCodes(ctx context.Context, scope, accountID string) ([]string, error) {
	if err := s.checkKey(scope, accountID); err != nil {
		return nil, err
	}

	rec, err := s.store.Get(ctx, scope, accountID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	if _, err := s.secretFromRecord(rec); err != nil {
		return nil, errors.Join(ErrNotEnrolled, err)
	}

	codes, err := totp.GenerateRecoveryCodes(s.recoveryCodeCount)
	if err != nil {
		return nil, err
	}
	hashed := make([]string, len(codes))
	for i, code := range codes {
		hashed[i] = totp.HashRecoveryCode(code)
	}
	if err := s.store.ReplaceRecoveryCodes(ctx, scope, accountID, hashed); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "issued recovery codes", "scope", scope, "count", len(codes))
	return codes, nil
}

// UseRecoveryCode redeems a single-use recovery code. Each code works at
// most once, even under concurrent redemption attempts.
func (s *Service) UseRecoveryCode(ctx context.Context, scope, accountID, code string) (bool, error) {
	if err := s.checkKey(scope, accountID); err != nil {
		return false, err
	}

	if _, err := s.store.Get(ctx, scope, accountID); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return false, ErrNotEnrolled
		}
		return false, err
	}

	ok, err := s.store.ConsumeRecoveryCode(ctx, scope, accountID, totp.HashRecoveryCode(code))
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.InfoContext(ctx, "recovery code redeemed", "scope", scope)
	}
	return ok, nil
}
