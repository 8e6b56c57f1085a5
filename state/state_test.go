package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsonnette/webpush-agent/webpush"
)

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		id, err := Load(filepath.Join(t.TempDir(), "state.json"))
		require.NoError(t, err)
		assert.Len(t, id.AuthSecret, 16)
		assert.NotNil(t, id.PrivateKey)
		assert.False(t, id.Registered())
	})
	t.Run("save and load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		id, err := New()
		require.NoError(t, err)
		id.UAID = "uaid"
		id.AddChannel("c1")
		id.AddChannel("c1")
		id.Subscription = &webpush.Subscription{
			Endpoint: "https://push.example/wpush/c1",
			Keys:     webpush.SubscriptionKeys{P256DH: "BPk", Auth: "c2Vj"},
		}
		require.NoError(t, id.Save(path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "uaid", loaded.UAID)
		assert.Equal(t, []string{"c1"}, loaded.ChannelIDs)
		assert.Equal(t, id.AuthSecret, loaded.AuthSecret)
		assert.True(t, id.PrivateKey.Equal(loaded.PrivateKey))
		assert.True(t, loaded.Registered())
		assert.Equal(t, id.Subscription, loaded.ActiveSubscription())
	})
	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0600))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestIdentity_DropChannels(t *testing.T) {
	id, err := New()
	require.NoError(t, err)
	id.Subscription = &webpush.Subscription{Endpoint: "e"}
	assert.Nil(t, id.ActiveSubscription())

	id.AddChannel("c1")
	assert.NotNil(t, id.ActiveSubscription())

	id.DropChannels()
	assert.False(t, id.Registered())
	assert.Nil(t, id.Subscription)
}
