// Package qrcode renders QR code PNG images, primarily for TOTP enrollment
// where the provisioning URI is shown as a scannable image.
package qrcode
