package autopush

import (
	"context"
	"crypto/ecdh"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsonnette/webpush-agent/rfc8291"
)

var ctx = context.Background()

func TestClient_Hello(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fx := newFixture(t)
		resCh := make(chan HelloResponse)
		go func() {
			res, err := fx.Hello(ctx, "", nil)
			assert.NoError(t, err)
			resCh <- res
		}()

		fx.waitSent(t, 1)
		fx.dispatch([]byte(`{"messageType":"hello","uaid":"u1","status":200,"use_webpush":true}`))

		select {
		case res := <-resCh:
			assert.Equal(t, "u1", res.UAID)
		case <-time.After(time.Second):
			t.Fatal("timeout")
		}
		assert.JSONEq(t, `{"messageType":"hello","uaid":"","channelIDs":[],"use_webpush":true}`, fx.sentAt(0))
	})
	t.Run("context deadline", func(t *testing.T) {
		fx := newFixture(t)
		tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err := fx.Hello(tctx, "u1", []string{"c1"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
	t.Run("closed", func(t *testing.T) {
		fx := newFixture(t)
		fx.shutdown()
		_, err := fx.Hello(ctx, "u1", nil)
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestClient_Register(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		fx := newFixture(t)
		errCh := make(chan error)
		go func() {
			_, err := fx.Register(ctx, "c1", "key")
			errCh <- err
		}()

		fx.waitSent(t, 1)
		fx.dispatch([]byte(`{"messageType":"register","channelID":"c1","status":409}`))

		err := <-errCh
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, StatusConflict, statusErr.Status)
		assert.JSONEq(t, `{"messageType":"register","channelID":"c1","key":"key"}`, fx.sentAt(0))
	})
	t.Run("success", func(t *testing.T) {
		fx := newFixture(t)
		resCh := make(chan RegisterResponse)
		go func() {
			res, err := fx.Register(ctx, "c1", "key")
			assert.NoError(t, err)
			resCh <- res
		}()

		fx.waitSent(t, 1)
		fx.dispatch([]byte(`{"messageType":"register","channelID":"c1","status":200,"pushEndpoint":"https://push.example/wpush/c1"}`))
		assert.Equal(t, "https://push.example/wpush/c1", (<-resCh).PushEndpoint)
	})
}

func TestClient_dispatch(t *testing.T) {
	t.Run("notification is acked and delivered", func(t *testing.T) {
		fx := newFixture(t)
		fx.dispatch([]byte(`{"messageType":"notification","channelID":"c1","version":"v1","data":"abc"}`))

		assert.JSONEq(t, `{"messageType":"ack","updates":[{"channelID":"c1","version":"v1"}]}`, fx.sentAt(0))
		select {
		case n := <-fx.notifications:
			assert.Equal(t, "c1", n.ChannelID)
			assert.Equal(t, "abc", n.Data)
		case <-time.After(time.Second):
			t.Fatal("timeout")
		}
	})
	t.Run("ping", func(t *testing.T) {
		fx := newFixture(t)
		fx.dispatch([]byte(`{"messageType":"ping"}`))
		assert.JSONEq(t, `{}`, fx.sentAt(0))
	})
	t.Run("unsolicited response is dropped", func(t *testing.T) {
		fx := newFixture(t)
		fx.dispatch([]byte(`{"messageType":"unregister","channelID":"c1","status":200}`))
		fx.dispatch([]byte(`{"messageType":"unregister","channelID":"c2","status":200}`))
		assert.Len(t, fx.unregister, 1)
	})
	t.Run("garbage", func(t *testing.T) {
		fx := newFixture(t)
		fx.dispatch([]byte(`not json`))
		assert.Empty(t, fx.sent())
	})
}

func TestClient_Decrypt(t *testing.T) {
	fx := newFixture(t)
	auth, salt, uaKey, err := rfc8291.NewSecrets(ecdh.P256())
	require.NoError(t, err)
	_, _, asKey, err := rfc8291.NewSecrets(ecdh.P256())
	require.NoError(t, err)

	plaintext := []byte(`{"title":"T","body":"B"}`)
	encrypted, err := rfc8291.NewCipher(nil).Encrypt(plaintext, salt, auth, uaKey.PublicKey(), asKey)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		got, err := fx.Decrypt(ecdh.P256(), auth, uaKey, PushNotification{
			Data:    base64.RawURLEncoding.EncodeToString(encrypted),
			Headers: NotificationHeaders{Encoding: "aes128gcm"},
		})
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	})
	t.Run("no payload", func(t *testing.T) {
		_, err := fx.Decrypt(ecdh.P256(), auth, uaKey, PushNotification{})
		assert.ErrorIs(t, err, ErrNoPayload)
	})
	t.Run("legacy encoding", func(t *testing.T) {
		_, err := fx.Decrypt(ecdh.P256(), auth, uaKey, PushNotification{
			Data:    "abc",
			Headers: NotificationHeaders{Encoding: "aesgcm"},
		})
		assert.ErrorIs(t, err, ErrUnsupportedEncoding)
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := fx.Decrypt(ecdh.P256(), auth, uaKey, PushNotification{
			Data: base64.RawURLEncoding.EncodeToString(encrypted[:10]),
		})
		assert.ErrorIs(t, err, rfc8291.ErrTruncated)
	})
}

type fakeConn struct {
	mu   sync.Mutex
	sent [][]byte
}

func (f *fakeConn) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return nil
}

type fixture struct {
	*Client
	conn *fakeConn
}

func newFixture(t *testing.T) *fixture {
	fx := &fixture{
		Client: newClient(nil),
		conn:   &fakeConn{},
	}
	fx.Client.conn = fx.conn
	t.Cleanup(fx.shutdown)
	return fx
}

func (fx *fixture) sent() [][]byte {
	fx.conn.mu.Lock()
	defer fx.conn.mu.Unlock()
	return append([][]byte(nil), fx.conn.sent...)
}

func (fx *fixture) sentAt(i int) string {
	sent := fx.sent()
	if i >= len(sent) {
		return ""
	}
	return string(sent[i])
}

func (fx *fixture) waitSent(t *testing.T, n int) {
	require.Eventually(t, func() bool {
		return len(fx.sent()) >= n
	}, time.Second, time.Millisecond)
}
