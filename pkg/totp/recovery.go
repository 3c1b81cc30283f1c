package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// GenerateRecoveryCodes creates cryptographically secure single-use backup
// codes. Each code carries 64 bits of entropy and is formatted in four
// hyphen-separated groups for readability (e.g. "1A2B-3C4D-5E6F-7890").
func GenerateRecoveryCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidRecoveryCodeCount
	}

	codes := make([]string, count)
	for i := 0; i < count; i++ {
		raw := make([]byte, 8)
		if _, err := rand.Read(raw); err != nil {
			return nil, errors.Join(ErrFailedToGenerateRecoveryCode, err)
		}
		codes[i] = fmt.Sprintf("%02X%02X-%02X%02X-%02X%02X-%02X%02X",
			raw[0], raw[1], raw[2], raw[3], raw[4], raw[5], raw[6], raw[7])
	}
	return codes, nil
}

// HashRecoveryCode creates a SHA-256 hash for secure storage of recovery
// codes. Hyphens and case are normalized first, so users may type codes
// without the display formatting.
func HashRecoveryCode(code string) string {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "-", ""))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// VerifyRecoveryCode compares a submitted code against a stored hash in
// constant time to prevent timing side channels.
func VerifyRecoveryCode(code, hashedCode string) bool {
	computed := HashRecoveryCode(code)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hashedCode)) == 1
}
