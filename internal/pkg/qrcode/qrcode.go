package qrcode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const (
	// DefaultSize is the default edge length of the rendered image in pixels.
	DefaultSize = 256
	// MaxSize bounds the edge length so an enrollment response stays small.
	MaxSize = 1024
)

// ErrEmptyContent indicates an empty payload.
var ErrEmptyContent = errors.New("qrcode: content is empty")

// Renderer encodes text into a PNG QR code.
type Renderer interface {
	// PNG returns the raw PNG bytes for content.
	PNG(content string) ([]byte, error)
}

// PNGRenderer renders QR codes using github.com/boombuler/barcode.
type PNGRenderer struct {
	size  int
	level qr.ErrorCorrectionLevel
}

// NewPNGRenderer returns a renderer producing size x size images with
// medium (M) error correction. Non-positive sizes fall back to DefaultSize
// and sizes above MaxSize are clamped to it.
func NewPNGRenderer(size int) *PNGRenderer {
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	return &PNGRenderer{size: size, level: qr.M}
}

// PNG encodes content as a QR code and serializes it to PNG.
func (p *PNGRenderer) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	code, err := qr.Encode(content, p.level, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode: %w", err)
	}

	scaled, err := barcode.Scale(code, p.size, p.size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: scale: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("qrcode: png: %w", err)
	}

	return buf.Bytes(), nil
}

// DataURI wraps PNG bytes as a data:image/png;base64 URI.
func DataURI(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}
