package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/twofa/pkg/base32codec"
)

const (
	DefaultDigits = 6  // Standard 6-digit TOTP codes
	DefaultPeriod = 30 // 30-second validity window (RFC 6238 standard)
	DefaultWindow = 1  // Accept codes from one adjacent period on each side

	// DefaultSecretLength is 160 bits, the RFC 4226 recommendation.
	DefaultSecretLength = 20
	// MinSecretLength is the floor for newly generated secrets (128 bits).
	MinSecretLength = 16
	// LegacyMinSecretLength is the shortest secret accepted during
	// validation. Systems migrated from older 2FA stacks may hold 10-byte
	// secrets; those keep working, but GenerateSecret never produces them.
	LegacyMinSecretLength = 10
)

// ValidateSecretRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
var ValidateSecretRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

// GenerateSecret generates a new Base32-encoded secret of byteLength random
// bytes. byteLength below MinSecretLength is rejected rather than silently
// raised, so unsafe configuration fails loudly.
func GenerateSecret(byteLength int) (string, error) {
	if byteLength < MinSecretLength {
		return "", errors.Join(ErrFailedToGenerateSecret, ErrSecretTooShort)
	}
	secret := make([]byte, byteLength)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return base32codec.Encode(secret), nil
}

// GenerateSecretKey generates a new Base32-encoded secret key of the default
// 160-bit length.
func GenerateSecretKey() (string, error) {
	return GenerateSecret(DefaultSecretLength)
}

// DecodeSecret normalizes and decodes a Base32 secret into raw key bytes.
// Empty or malformed secrets yield ErrInvalidSecret, as do secrets shorter
// than LegacyMinSecretLength once decoded.
func DecodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if secret == "" {
		return nil, errors.Join(ErrInvalidSecret, ErrMissingSecret)
	}
	if !ValidateSecretRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := base32codec.Decode(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	if len(key) < LegacyMinSecretLength {
		return nil, errors.Join(ErrInvalidSecret, ErrSecretTooShort)
	}
	return key, nil
}

// hotp implements the RFC 4226 HMAC-based One-Time Password algorithm,
// returning the zero-padded decimal code for the given counter.
func hotp(key []byte, counter int64, digits int) string {
	// Big-endian 8-byte counter (RFC 4226 requirement).
	msg := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		msg[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(msg)
	sum := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the last byte selects a 4-byte
	// slice, whose high bit is masked to keep the value positive.
	offset := sum[len(sum)-1] & 0x0f
	code := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]) << 16) |
		(int(sum[offset+2]) << 8) |
		int(sum[offset+3])

	code %= int(math.Pow10(digits))

	return fmt.Sprintf("%0*d", digits, code)
}

// CodeAt computes the one-time code for the time step containing t. Pure and
// deterministic: the same secret, time step, and digit count always yield the
// same code.
func CodeAt(secret string, t time.Time, digits, period int) (string, error) {
	if digits < 1 || digits > 9 {
		return "", ErrInvalidDigits
	}
	if period < 1 {
		return "", ErrInvalidPeriod
	}
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	return hotp(key, t.Unix()/int64(period), digits), nil
}

// GenerateCode computes the code for the current time step using the RFC 6238
// standard parameters (6 digits, 30-second period).
func GenerateCode(secret string) (string, error) {
	return CodeAt(secret, time.Now(), DefaultDigits, DefaultPeriod)
}

// ValidateCodeAt checks a submitted code against the time steps in
// [counter-window, counter+window] around t. Codes that are not exactly
// digits decimal characters are rejected immediately, before any HMAC is
// computed; matching uses constant-time comparison so validation time does
// not depend on the stored code values.
func ValidateCodeAt(secret, code string, t time.Time, window, digits, period int) (bool, error) {
	if window < 0 {
		return false, ErrInvalidWindow
	}
	if digits < 1 || digits > 9 {
		return false, ErrInvalidDigits
	}
	if period < 1 {
		return false, ErrInvalidPeriod
	}
	key, err := DecodeSecret(secret)
	if err != nil {
		return false, err
	}

	// Length and charset mismatches are public knowledge, so failing fast
	// here leaks nothing.
	code = strings.TrimSpace(code)
	if len(code) != digits || !isDigits(code) {
		return false, nil
	}

	counter := t.Unix() / int64(period)
	for c := counter - int64(window); c <= counter+int64(window); c++ {
		want := hotp(key, c, digits)
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

// ValidateCode checks a submitted code against the current time using the
// standard parameters and a one-step drift window on each side.
func ValidateCode(secret, code string) (bool, error) {
	return ValidateCodeAt(secret, code, time.Now(), DefaultWindow, DefaultDigits, DefaultPeriod)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
