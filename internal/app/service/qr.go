package service

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// QRService renders a short URL as a QR code data URI.
type QRService struct{}

func (s QRService) MakeBase64(text string, size int) (string, error) {
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
