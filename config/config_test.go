package config

import (
	"crypto/ecdh"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsonnette/webpush-agent/webpush"
)

func newTestKey(t *testing.T) string {
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	return webpush.EncodeKey(key.PublicKey().Bytes())
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewFromFile(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		testKey := newTestKey(t)
		t.Setenv(EnvApplicationServerKey, "")
		c, err := NewFromFile(writeConfig(t, "origin: https://smartsonnette.duckdns.org\napplicationServerKey: "+testKey+"\n"))
		require.NoError(t, err)
		require.NoError(t, c.Validate())

		assert.Equal(t, "wss://push.services.mozilla.com", c.PushService)
		assert.Equal(t, "/static/sw.js", c.ScriptPath)
		assert.Equal(t, "/static/icon.png", c.DefaultIcon)
		assert.Equal(t, "info", c.Log.Level)

		u, err := c.SubscribeURL()
		require.NoError(t, err)
		assert.Equal(t, "https://smartsonnette.duckdns.org/api/subscribe", u)
	})
	t.Run("env override", func(t *testing.T) {
		testKey := newTestKey(t)
		t.Setenv(EnvApplicationServerKey, testKey)
		c, err := NewFromFile(writeConfig(t, "origin: http://localhost:5000\napplicationServerKey: '<ta_clé_publique_VAPID_convertie_en_base64>'\n"))
		require.NoError(t, err)
		assert.Equal(t, testKey, c.ApplicationServerKey)
		assert.NoError(t, c.Validate())
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := NewFromFile(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	c := &Config{Origin: "http://localhost"}
	assert.ErrorIs(t, c.Validate(), ErrMissingKey)

	c.ApplicationServerKey = "<ta_clé_publique_VAPID_convertie_en_base64>"
	assert.ErrorIs(t, c.Validate(), ErrPlaceholderKey)

	c.ApplicationServerKey = "not base64!"
	assert.ErrorIs(t, c.Validate(), webpush.ErrInvalidKey)

	c.ApplicationServerKey = "abcd"
	assert.ErrorIs(t, c.Validate(), webpush.ErrInvalidKey)

	c.ApplicationServerKey = newTestKey(t)
	assert.NoError(t, c.Validate())
	c.Origin = ""
	assert.ErrorIs(t, c.Validate(), ErrMissingOrigin)
}
