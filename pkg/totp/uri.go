package totp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultAlgorithm is the HMAC algorithm advertised in provisioning URIs
// (RFC 6238 standard).
const DefaultAlgorithm = "SHA1"

// URIParams contains the parameters for provisioning URI generation.
type URIParams struct {
	Secret      string // Base32-encoded TOTP secret key (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
	Algorithm   string // HMAC algorithm (optional, defaults to SHA1)
	Digits      int    // Number of digits in generated codes (optional, defaults to 6)
	Period      int    // Code validity period in seconds (optional, defaults to 30)
}

// Validate ensures all required provisioning parameters are present and
// well-formed. Labels must be non-empty and must not contain a literal ":",
// which is the issuer/account separator in the otpauth label.
func (p URIParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretRegex.MatchString(strings.ToUpper(p.Secret)) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return errors.Join(ErrInvalidLabel, ErrMissingAccountName)
	}
	if p.Issuer == "" {
		return errors.Join(ErrInvalidLabel, ErrMissingIssuer)
	}
	if strings.Contains(p.AccountName, ":") || strings.Contains(p.Issuer, ":") {
		return ErrInvalidLabel
	}
	return nil
}

// GetDefaults returns a copy with RFC 6238 standard defaults applied to
// zero-valued fields.
func (p URIParams) GetDefaults() URIParams {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// BuildURI creates a properly encoded otpauth:// URI for use with
// authenticator apps. The format follows the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func BuildURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	params = params.GetDefaults()

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", strings.ToUpper(params.Secret))
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", params.Algorithm)
	query.Set("digits", fmt.Sprintf("%d", params.Digits))
	query.Set("period", fmt.Sprintf("%d", params.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}
