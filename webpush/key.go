package webpush

import (
	"crypto/ecdh"
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidKey = errors.New("webpush: key is not valid base64")

// DecodeKey decodes a key published as base64, in either the url or the
// standard alphabet, padded or not.
func DecodeKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "=")
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)
	if s == "" {
		return nil, ErrInvalidKey
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	return b, nil
}

// ParseApplicationServerKey decodes a VAPID public key: an uncompressed
// P-256 point.
func ParseApplicationServerKey(s string) (*ecdh.PublicKey, error) {
	b, err := DecodeKey(s)
	if err != nil {
		return nil, err
	}
	key, err := ecdh.P256().NewPublicKey(b)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	return key, nil
}

// EncodeKey encodes b the way browsers expose subscription keys.
func EncodeKey(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
