// Package qrcode renders text payloads (typically otpauth:// provisioning
// URIs) as scannable QR code images encoded to PNG.
package qrcode
