// Package rfc8291 implements Message Encryption for Web Push (RFC 8291) on
// top of the aes128gcm content coding (RFC 8188).
package rfc8291

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	AuthSecretLen = 16
	SaltLen       = 16

	gcmOverhead = 16

	ikmLen   = 32
	cekLen   = 16
	nonceLen = 12

	// the last record of a push message ends with this delimiter
	lastRecordDelimiter = 0x02
)

var (
	ErrInvalidAuthSecret = fmt.Errorf("rfc8291: auth secret must be %d bytes", AuthSecretLen)
	ErrInvalidSalt       = fmt.Errorf("rfc8291: salt must be %d bytes", SaltLen)
	ErrEmptyPlaintext    = errors.New("rfc8291: decrypted record is empty")
	ErrInvalidPadding    = errors.New("rfc8291: record has no padding delimiter")
)

type Cipher struct {
	hash func() hash.Hash
}

// NewCipher returns a Cipher using hash for HKDF; nil means SHA-256.
func NewCipher(hash func() hash.Hash) *Cipher {
	if hash == nil {
		hash = sha256.New
	}
	return &Cipher{hash: hash}
}

// NewSecrets generates a random auth secret, a random salt and a fresh key
// pair on curve.
func NewSecrets(curve ecdh.Curve) (auth, salt []byte, key *ecdh.PrivateKey, err error) {
	auth = make([]byte, AuthSecretLen)
	salt = make([]byte, SaltLen)
	for _, b := range [][]byte{auth, salt} {
		if _, err = io.ReadFull(rand.Reader, b); err != nil {
			return nil, nil, nil, fmt.Errorf("generate random secret: %w", err)
		}
	}

	if key, err = curve.GenerateKey(rand.Reader); err != nil {
		return nil, nil, nil, fmt.Errorf("generate ecdh key: %w", err)
	}
	return auth, salt, key, nil
}

// Encrypt seals plaintext as a single aes128gcm record addressed to the user
// agent. The result is the serialized Header.
func (c *Cipher) Encrypt(
	plaintext []byte,
	salt []byte,
	authSecret []byte,
	useragentPublicKey *ecdh.PublicKey,
	appserverPrivateKey *ecdh.PrivateKey,
) ([]byte, error) {
	if err := checkSecrets(authSecret, salt); err != nil {
		return nil, err
	}

	ecdhSecret, err := appserverPrivateKey.ECDH(useragentPublicKey)
	if err != nil {
		return nil, fmt.Errorf("rfc8291: ecdh: %w", err)
	}

	gcm, nonce, err := c.aead(authSecret, salt, ecdhSecret, useragentPublicKey, appserverPrivateKey.PublicKey())
	if err != nil {
		return nil, err
	}

	record := make([]byte, 0, len(plaintext)+1)
	record = append(record, plaintext...)
	record = append(record, lastRecordDelimiter)

	return Marshal(Header{
		RS:         uint32(len(record) + gcmOverhead),
		Salt:       salt,
		KeyID:      appserverPrivateKey.PublicKey().Bytes(),
		CipherText: gcm.Seal(nil, nonce, record, nil),
	}), nil
}

// Decrypt opens a single aes128gcm record and strips its padding.
func (c *Cipher) Decrypt(
	ciphertext []byte,
	salt []byte,
	authSecret []byte,
	useragentPrivateKey *ecdh.PrivateKey,
	appserverPublicKey *ecdh.PublicKey,
) ([]byte, error) {
	if err := checkSecrets(authSecret, salt); err != nil {
		return nil, err
	}

	ecdhSecret, err := useragentPrivateKey.ECDH(appserverPublicKey)
	if err != nil {
		return nil, fmt.Errorf("rfc8291: ecdh: %w", err)
	}

	gcm, nonce, err := c.aead(authSecret, salt, ecdhSecret, useragentPrivateKey.PublicKey(), appserverPublicKey)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("rfc8291: open record: %w", err)
	}

	plaintext = bytes.TrimRight(plaintext, "\x00")
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}
	if last := plaintext[len(plaintext)-1]; last != 0x01 && last != lastRecordDelimiter {
		return nil, ErrInvalidPadding
	}
	return plaintext[:len(plaintext)-1], nil
}

func checkSecrets(authSecret, salt []byte) error {
	if len(authSecret) != AuthSecretLen {
		return ErrInvalidAuthSecret
	}
	if len(salt) != SaltLen {
		return ErrInvalidSalt
	}
	return nil
}

func (c *Cipher) aead(
	authSecret, salt, ecdhSecret []byte,
	useragentPublicKey, appserverPublicKey *ecdh.PublicKey,
) (cipher.AEAD, []byte, error) {
	ikm, err := c.ikm(authSecret, ecdhSecret, useragentPublicKey, appserverPublicKey)
	if err != nil {
		return nil, nil, err
	}

	prk := hkdf.Extract(c.hash, ikm, salt)
	cek, err := c.expand(prk, "Content-Encoding: aes128gcm\x00", cekLen)
	if err != nil {
		return nil, nil, err
	}
	nonce, err := c.expand(prk, "Content-Encoding: nonce\x00", nonceLen)
	if err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, nil, fmt.Errorf("rfc8291: cipher block: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("rfc8291: gcm: %w", err)
	}
	return gcm, nonce, nil
}

// ikm derives the input keying material from the ECDH secret, keyed by the
// auth secret and bound to both public keys.
func (c *Cipher) ikm(
	authSecret []byte,
	ecdhSecret []byte,
	useragentPublicKey *ecdh.PublicKey,
	appserverPublicKey *ecdh.PublicKey,
) ([]byte, error) {
	prk := hkdf.Extract(c.hash, ecdhSecret, authSecret)

	info := make([]byte, 0, 14+2*65)
	info = append(info, "WebPush: info\x00"...)
	info = append(info, useragentPublicKey.Bytes()...)
	info = append(info, appserverPublicKey.Bytes()...)

	return c.expand(prk, string(info), ikmLen)
}

func (c *Cipher) expand(prk []byte, info string, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.Expand(c.hash, prk, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("rfc8291: hkdf expand: %w", err)
	}
	return out, nil
}
