// Package qrcode provides simple helpers for generating QR code images either
// as raw PNG bytes or as a data-URI string that can be embedded directly into
// HTML pages.
//
// The package is a thin wrapper around github.com/skip2/go-qrcode that adds
// sensible defaults, input validation, and a selectable error-correction
// level. Its main consumer in this module is the enrollment service, which
// renders otpauth:// provisioning URIs as scannable images.
//
// # Usage
//
//	import "github.com/dmitrymomot/twofa/pkg/qrcode"
//
//	// Create PNG bytes
//	img, err := qrcode.Generate("otpauth://totp/...", 256)
//
//	// Create a base64 data URI for an <img> tag
//	dataURI, err := qrcode.GenerateBase64Image("otpauth://totp/...", 256)
//
//	// Choose a stronger error-correction level for printed output
//	img, err = qrcode.GenerateWithLevel("otpauth://totp/...", qrcode.LevelHigh, 512)
//
// # Error Handling
//
// The functions return well-defined sentinel errors:
//
//   - ErrEmptyContent           – the content argument was empty.
//   - ErrFailedToGenerateQRCode – the underlying library could not generate
//     the QR code.
//
// Wrap your error handling with errors.Is for robust comparisons.
package qrcode
