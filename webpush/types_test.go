package webpush

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription_JSON(t *testing.T) {
	sub := Subscription{
		Endpoint: "https://updates.push.services.mozilla.com/wpush/v2/abc",
		Keys:     SubscriptionKeys{P256DH: "BPk", Auth: "c2Vj"},
	}
	data, err := json.Marshal(sub)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"endpoint": "https://updates.push.services.mozilla.com/wpush/v2/abc",
		"expirationTime": null,
		"keys": {"p256dh": "BPk", "auth": "c2Vj"}
	}`, string(data))
}

func TestDecodeKey(t *testing.T) {
	raw := []byte{0x04, 0xfb, 0xff, 0x3e, 0x10, 0x20}
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		got, err := DecodeKey(enc.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	}

	_, err := DecodeKey("<ta_clé_publique_VAPID_convertie_en_base64>")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = DecodeKey("")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestParseApplicationServerKey(t *testing.T) {
	private, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	public := private.PublicKey()

	for _, s := range []string{
		EncodeKey(public.Bytes()),
		base64.StdEncoding.EncodeToString(public.Bytes()),
	} {
		key, err := ParseApplicationServerKey(s)
		require.NoError(t, err)
		assert.True(t, public.Equal(key))
	}

	for _, s := range []string{"abcd", EncodeKey(public.Bytes()[:33]), ""} {
		_, err := ParseApplicationServerKey(s)
		assert.ErrorIs(t, err, ErrInvalidKey, s)
	}
}
