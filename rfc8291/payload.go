package rfc8291

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	// salt(16) | rs(4) | idlen(1)
	HeaderLen = SaltLen + 4 + 1
)

var ErrTruncated = errors.New("rfc8291: payload is too short")

// Header is the aes128gcm content-coding header followed by the ciphertext.
// For Web Push the key id carries the application server's public key.
type Header struct {
	RS         uint32
	Salt       []byte
	KeyID      []byte
	CipherText []byte
}

func Marshal(h Header) []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderLen + len(h.KeyID) + len(h.CipherText))
	buf.Write(h.Salt)
	_ = binary.Write(&buf, binary.BigEndian, h.RS)
	buf.WriteByte(uint8(len(h.KeyID)))
	buf.Write(h.KeyID)
	buf.Write(h.CipherText)
	return buf.Bytes()
}

func Unmarshal(data []byte) (h Header, err error) {
	if len(data) < HeaderLen {
		return h, ErrTruncated
	}

	h.Salt = data[:SaltLen]
	h.RS = binary.BigEndian.Uint32(data[SaltLen : SaltLen+4])

	idlen := int(data[HeaderLen-1])
	if len(data) < HeaderLen+idlen {
		return h, ErrTruncated
	}
	if idlen > 0 {
		h.KeyID = data[HeaderLen : HeaderLen+idlen]
	}
	h.CipherText = data[HeaderLen+idlen:]

	return h, nil
}
