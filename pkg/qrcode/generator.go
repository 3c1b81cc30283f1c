package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when the content string is empty or only whitespace
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToGenerateQRCode is returned when the QR code generation fails.
	ErrFailedToGenerateQRCode = errors.New("failed to generate QR code")
)

// Level selects the QR error-correction strength. Higher levels survive more
// image damage at the cost of a denser code.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
	LevelHighest
)

// defaultSize is the size in pixels used when no size is specified
const defaultSize = 256

func (l Level) recoveryLevel() skipqrcode.RecoveryLevel {
	switch l {
	case LevelLow:
		return skipqrcode.Low
	case LevelHigh:
		return skipqrcode.High
	case LevelHighest:
		return skipqrcode.Highest
	default:
		return skipqrcode.Medium
	}
}

// Generate creates a QR code image in PNG format with the given content and
// medium error correction. Returns the image as a byte slice.
func Generate(content string, size int) ([]byte, error) {
	return GenerateWithLevel(content, LevelMedium, size)
}

// GenerateWithLevel creates a QR code PNG with an explicit error-correction
// level. Authenticator provisioning QR codes are usually rendered at
// LevelMedium; pick a higher level for printed material.
func GenerateWithLevel(content string, level Level, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := skipqrcode.Encode(content, level.recoveryLevel(), size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// GenerateBase64Image creates a data-URI (base64-encoded PNG) representation
// of a QR code, ready to be used as the src of an <img> tag.
func GenerateBase64Image(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
