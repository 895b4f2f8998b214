package sniffer_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serrano/api/internal/media/sniffer"
)

func TestDetectHead(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		want sniffer.MediaType
		mime string
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, sniffer.TypeJPEG, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00}, sniffer.TypePNG, "image/png"},
		{"gif", []byte("GIF89a...."), sniffer.TypeGIF, "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), sniffer.TypeWEBP, "image/webp"},
		{"pdf", []byte("%PDF-1.7\n"), sniffer.TypePDF, "application/pdf"},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg">`), sniffer.TypeSVG, "image/svg+xml"},
		{"svg with xml prolog", []byte(`<?xml version="1.0"?><svg>`), sniffer.TypeSVG, "image/svg+xml"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := sniffer.DetectHead(tc.head)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Type)
			assert.Equal(t, tc.mime, result.MIME)
		})
	}

	t.Run("unknown bytes", func(t *testing.T) {
		_, err := sniffer.DetectHead([]byte("MZ\x90\x00"))
		assert.ErrorIs(t, err, sniffer.ErrUnknownType)
	})

	t.Run("empty head", func(t *testing.T) {
		_, err := sniffer.DetectHead(nil)
		assert.ErrorIs(t, err, sniffer.ErrUnknownType)
	})
}

func TestAllowedTypeSets(t *testing.T) {
	_, pdfForAvatar := sniffer.AvatarTypes[sniffer.TypePDF]
	assert.False(t, pdfForAvatar)

	_, pdfForDocument := sniffer.DocumentTypes[sniffer.TypePDF]
	assert.True(t, pdfForDocument)

	_, svgForDocument := sniffer.DocumentTypes[sniffer.TypeSVG]
	assert.False(t, svgForDocument)
}

func TestMimeTypeFromHTTP(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "image/png; charset=binary")
	assert.Equal(t, "image/png", sniffer.MimeTypeFromHTTP(header))

	assert.Empty(t, sniffer.MimeTypeFromHTTP(http.Header{}))
}
