// Package autopush speaks the Mozilla autopush websocket protocol as a user
// agent: handshake, channel registration and push message delivery.
package autopush

import (
	"context"
	"crypto/ecdh"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shinosaki/websocket-client-go/websocket"
	"go.uber.org/zap"

	"github.com/smartsonnette/webpush-agent/rfc8291"
)

const MozillaPushService = "wss://push.services.mozilla.com"

const (
	defaultTimeout = 5 * time.Second

	connectRetries       = 3
	connectRetryInterval = 2
)

var (
	ErrClosed              = errors.New("autopush: connection closed")
	ErrNoPayload           = errors.New("autopush: notification carries no payload")
	ErrUnsupportedEncoding = errors.New("autopush: unsupported content encoding")
)

type jsonSender interface {
	SendJSON(v any) error
}

type Client struct {
	ws   *websocket.WebSocketClient
	conn jsonSender
	log  *zap.Logger
	ece  *rfc8291.Cipher

	hello         chan HelloResponse
	register      chan RegisterResponse
	unregister    chan UnregisterResponse
	notifications chan PushNotification

	// guards request/response pairing; autopush answers in order
	mu sync.Mutex
	// held while delivering to notifications so shutdown never closes it mid-send
	deliverMu sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient returns a client and the channel its push notifications are
// delivered on. The channel is closed when the connection is closed for good.
func NewClient(log *zap.Logger) (*Client, <-chan PushNotification) {
	c := newClient(log)
	c.ws = websocket.NewWebSocketClient(
		nil,
		func(ws *websocket.WebSocketClient, isReconnecting bool) {
			if !isReconnecting {
				c.shutdown()
			}
		},
		func(ws *websocket.WebSocketClient, payload []byte) {
			c.dispatch(payload)
		},
	)
	c.conn = c.ws
	return c, c.notifications
}

func newClient(log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		log:           log.Named("autopush"),
		ece:           rfc8291.NewCipher(nil),
		hello:         make(chan HelloResponse, 1),
		register:      make(chan RegisterResponse, 1),
		unregister:    make(chan UnregisterResponse, 1),
		notifications: make(chan PushNotification, 16),
		done:          make(chan struct{}),
	}
}

func (c *Client) Connect(url string) error {
	if err := c.ws.Connect(url, connectRetries, connectRetryInterval); err != nil {
		return fmt.Errorf("autopush: connect %s: %w", url, err)
	}
	return nil
}

// Hello performs the handshake. An empty uaid asks the service for a new one.
func (c *Client) Hello(ctx context.Context, uaid string, channelIDs []string) (HelloResponse, error) {
	if channelIDs == nil {
		channelIDs = []string{}
	}
	res, err := request(ctx, c, c.hello, HelloRequest{
		Type:       Hello,
		UAID:       uaid,
		ChannelIDs: channelIDs,
		UseWebPush: true,
	})
	if err == nil && res.Status != StatusOK {
		err = &StatusError{Op: Hello, Status: res.Status}
	}
	return res, err
}

// Register opens channelID restricted to the application server key
// vapidKey (standard base64), and returns its push endpoint.
func (c *Client) Register(ctx context.Context, channelID string, vapidKey string) (RegisterResponse, error) {
	res, err := request(ctx, c, c.register, RegisterRequest{
		Type:      Register,
		ChannelID: channelID,
		Key:       vapidKey,
	})
	if err == nil && res.Status != StatusOK {
		err = &StatusError{Op: Register, Status: res.Status}
	}
	return res, err
}

func (c *Client) Unregister(ctx context.Context, channelID string) (UnregisterResponse, error) {
	res, err := request(ctx, c, c.unregister, UnregisterRequest{
		Type:      Unregister,
		ChannelID: channelID,
	})
	if err == nil && res.Status != StatusOK {
		err = &StatusError{Op: Unregister, Status: res.Status}
	}
	return res, err
}

// Decrypt returns the plaintext of an aes128gcm encrypted notification.
func (c *Client) Decrypt(
	curve ecdh.Curve,
	authSecret []byte,
	useragentPrivateKey *ecdh.PrivateKey,
	n PushNotification,
) ([]byte, error) {
	if n.Data == "" {
		return nil, ErrNoPayload
	}
	if n.Headers.Encoding != "" && n.Headers.Encoding != "aes128gcm" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, n.Headers.Encoding)
	}

	data, err := base64.RawURLEncoding.DecodeString(n.Data)
	if err != nil {
		return nil, fmt.Errorf("autopush: decode data: %w", err)
	}

	h, err := rfc8291.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	appserverPublicKey, err := curve.NewPublicKey(h.KeyID)
	if err != nil {
		return nil, fmt.Errorf("autopush: application server key: %w", err)
	}

	return c.ece.Decrypt(h.CipherText, h.Salt, authSecret, useragentPrivateKey, appserverPublicKey)
}

func request[T any](ctx context.Context, c *Client, ch chan T, payload any) (res T, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	if err = c.conn.SendJSON(payload); err != nil {
		return res, fmt.Errorf("autopush: send: %w", err)
	}

	select {
	case res = <-ch:
		return res, nil
	case <-c.done:
		return res, ErrClosed
	case <-ctx.Done():
		return res, ctx.Err()
	}
}

func unmarshal[T any](log *zap.Logger, payload []byte, label MessageType) (data T, ok bool) {
	if err := json.Unmarshal(payload, &data); err != nil {
		log.Warn("failed to unmarshal message", zap.String("type", string(label)), zap.Error(err))
		return data, false
	}
	return data, true
}

// respond hands res to a waiting request; responses nobody waits for are dropped.
func respond[T any](log *zap.Logger, ch chan T, res T, label MessageType) {
	select {
	case ch <- res:
	default:
		log.Warn("unexpected response dropped", zap.String("type", string(label)))
	}
}

func (c *Client) dispatch(payload []byte) {
	var message Message
	if err := json.Unmarshal(payload, &message); err != nil {
		c.log.Warn("failed to unmarshal message", zap.Error(err))
		return
	}

	switch message.Type {
	case Ping:
		if err := c.conn.SendJSON(struct{}{}); err != nil {
			c.log.Warn("pong failed", zap.Error(err))
		}

	case Hello:
		if data, ok := unmarshal[HelloResponse](c.log, payload, Hello); ok {
			respond(c.log, c.hello, data, Hello)
		}

	case Register:
		if data, ok := unmarshal[RegisterResponse](c.log, payload, Register); ok {
			respond(c.log, c.register, data, Register)
		}

	case Unregister:
		if data, ok := unmarshal[UnregisterResponse](c.log, payload, Unregister); ok {
			respond(c.log, c.unregister, data, Unregister)
		}

	case Notification:
		data, ok := unmarshal[PushNotification](c.log, payload, Notification)
		if !ok {
			return
		}
		if err := c.conn.SendJSON(AckRequest{
			Type:    Ack,
			Updates: []AckUpdate{{ChannelID: data.ChannelID, Version: data.Version}},
		}); err != nil {
			c.log.Warn("ack failed", zap.String("channelID", data.ChannelID), zap.Error(err))
		}
		c.deliver(data)

	default:
		c.log.Debug("unknown message type", zap.String("type", string(message.Type)))
	}
}

func (c *Client) deliver(n PushNotification) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.notifications <- n:
	case <-c.done:
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.deliverMu.Lock()
		close(c.notifications)
		c.deliverMu.Unlock()
	})
}
