// Package base32codec provides the Base32 text encoding used for TOTP secret
// transcription.
//
// Authenticator applications expect shared secrets in the uppercase RFC 4648
// alphabet without padding, which is what Encode produces. Decode accepts
// lowercase input for user convenience but always treats the uppercase form
// as canonical.
//
// # Usage
//
//	import "github.com/dmitrymomot/twofa/pkg/base32codec"
//
//	text := base32codec.Encode(secretBytes)
//	raw, err := base32codec.Decode(text)
//	if err != nil {
//		// handle malformed input
//	}
//
// # Error Handling
//
// Decode returns ErrInvalidEncoding (joined with the underlying error) for
// any input containing characters outside the Base32 alphabet. Compare with
// errors.Is.
package base32codec
