package qrcode_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/dmitrymomot/twofa/pkg/qrcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("valid content", func(t *testing.T) {
		t.Parallel()
		data, err := qrcode.Generate("otpauth://totp/Acme:alice?secret=ABCDEFGHIJKLMNOP", 256)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
		assert.Equal(t, 256, img.Bounds().Dy())
	})

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := qrcode.Generate("", 256)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)

		_, err = qrcode.Generate("   ", 256)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})

	t.Run("non-positive size falls back to default", func(t *testing.T) {
		t.Parallel()
		data, err := qrcode.Generate("https://example.com", 0)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
	})
}

func TestGenerateWithLevel(t *testing.T) {
	t.Parallel()

	for _, level := range []qrcode.Level{qrcode.LevelLow, qrcode.LevelMedium, qrcode.LevelHigh, qrcode.LevelHighest} {
		data, err := qrcode.GenerateWithLevel("https://example.com", level, 128)
		require.NoError(t, err)

		_, err = png.Decode(bytes.NewReader(data))
		require.NoError(t, err, "level %d", level)
	}
}

func TestGenerateBase64Image(t *testing.T) {
	t.Parallel()

	t.Run("valid content", func(t *testing.T) {
		t.Parallel()
		uri, err := qrcode.GenerateBase64Image("https://example.com", 128)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
		require.NoError(t, err)

		_, err = png.Decode(bytes.NewReader(raw))
		require.NoError(t, err)
	})

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := qrcode.GenerateBase64Image("", 128)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})
}
