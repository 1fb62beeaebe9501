package label

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

// previewPixels is the edge length of the on-screen preview PNG.
const previewPixels = 256

// PreviewGenerator renders the single confirmation image shown right after
// an issuance. One image per issuance, keyed off the preview identifier's
// URL; it is not part of the printable label document.
type PreviewGenerator struct{}

// NewPreviewGenerator constructs a generator.
func NewPreviewGenerator() *PreviewGenerator {
	return &PreviewGenerator{}
}

// Render encodes the URL as a PNG QR image.
func (g *PreviewGenerator) Render(url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("label: empty preview url")
	}
	return qrcode.Encode(url, qrcode.Medium, previewPixels)
}
