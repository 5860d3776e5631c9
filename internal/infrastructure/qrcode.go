package infrastructure

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const (
	MinQRSize     = 128
	MaxQRSize     = 1024
	DefaultQRSize = 256
)

// InstagramDMLink returns the ig.me deep link that opens a DM thread.
func InstagramDMLink(instagramID string) string {
	return "https://ig.me/m/" + instagramID
}

// GenerateQRCodePNG encodes content as a PNG of size x size pixels.
func GenerateQRCodePNG(content string, size int) ([]byte, error) {
	if size < MinQRSize || size > MaxQRSize {
		return nil, fmt.Errorf("qr size must be between %d and %d", MinQRSize, MaxQRSize)
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate qr code: %w", err)
	}
	return png, nil
}
