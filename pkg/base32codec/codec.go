package base32codec

import (
	"encoding/base32"
	"errors"
	"strings"
)

// ErrInvalidEncoding is returned when decoding input that is not valid
// unpadded RFC 4648 Base32.
var ErrInvalidEncoding = errors.New("invalid base32 encoding")

// encoding is the uppercase RFC 4648 alphabet without padding, the canonical
// form for otpauth secrets.
var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Encode converts raw bytes to their canonical uppercase Base32 form.
// It is total over any byte sequence, including the empty one.
func Encode(b []byte) string {
	return encoding.EncodeToString(b)
}

// Decode converts a Base32 string back to the original bytes. Input case is
// ignored and trailing padding characters are tolerated, so secrets copied
// from other systems decode the same as our canonical output.
func Decode(s string) ([]byte, error) {
	s = strings.ToUpper(strings.TrimRight(s, "="))
	b, err := encoding.DecodeString(s)
	if err != nil {
		return nil, errors.Join(ErrInvalidEncoding, err)
	}
	return b, nil
}
