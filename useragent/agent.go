// Package useragent hosts the push handler on top of an autopush connection,
// playing the part a browser's service worker container plays for a page.
package useragent

import (
	"context"
	"crypto/ecdh"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartsonnette/webpush-agent/autopush"
	"github.com/smartsonnette/webpush-agent/notification"
	"github.com/smartsonnette/webpush-agent/state"
	"github.com/smartsonnette/webpush-agent/subscribe"
	"github.com/smartsonnette/webpush-agent/webpush"
)

var ErrNotConnected = errors.New("useragent: not connected to a push service")

// PushService is the push service connection; *autopush.Client implements it.
type PushService interface {
	Connect(url string) error
	Hello(ctx context.Context, uaid string, channelIDs []string) (autopush.HelloResponse, error)
	Register(ctx context.Context, channelID string, vapidKey string) (autopush.RegisterResponse, error)
	Decrypt(curve ecdh.Curve, authSecret []byte, useragentPrivateKey *ecdh.PrivateKey, n autopush.PushNotification) ([]byte, error)
}

type PushHandler interface {
	HandlePush(ctx context.Context, event notification.PushEvent) error
}

type Agent struct {
	service       PushService
	notifications <-chan autopush.PushNotification
	handler       PushHandler
	log           *zap.Logger

	mu        sync.Mutex
	identity  *state.Identity
	statePath string
	connected atomic.Bool
}

var _ subscribe.Platform = (*Agent)(nil)

// New returns an agent delivering pushes from notifications to handler.
// When statePath is not empty the identity is saved there on every change.
func New(
	service PushService,
	notifications <-chan autopush.PushNotification,
	identity *state.Identity,
	statePath string,
	handler PushHandler,
	log *zap.Logger,
) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	return &Agent{
		service:       service,
		notifications: notifications,
		identity:      identity,
		statePath:     statePath,
		handler:       handler,
		log:           log.Named("useragent"),
	}
}

func (a *Agent) Connect(url string) error {
	if err := a.service.Connect(url); err != nil {
		return err
	}
	a.connected.Store(true)
	a.log.Info("connected", zap.String("url", url))
	return nil
}

func (a *Agent) Capabilities() subscribe.Capabilities {
	connected := a.connected.Load()
	return subscribe.Capabilities{
		ServiceWorker: connected,
		PushManager:   connected,
	}
}

// Handshake identifies the agent to the push service. A service that hands
// out a new UAID has forgotten the old channels, so they are dropped along
// with the subscription built on them.
func (a *Agent) Handshake(ctx context.Context) error {
	if !a.connected.Load() {
		return ErrNotConnected
	}

	a.mu.Lock()
	uaid := a.identity.UAID
	channelIDs := slices.Clone(a.identity.ChannelIDs)
	a.mu.Unlock()

	res, err := a.service.Hello(ctx, uaid, channelIDs)
	if err != nil {
		return fmt.Errorf("hello: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.identity.UAID != "" && a.identity.UAID != res.UAID {
		a.log.Warn("push service issued a new uaid, dropping channels",
			zap.String("old", a.identity.UAID), zap.String("new", res.UAID))
		a.identity.DropChannels()
	}
	a.identity.UAID = res.UAID
	a.log.Debug("handshake done", zap.String("uaid", res.UAID))
	return a.save()
}

// Register performs the handshake and returns a registration able to
// subscribe. The script path only labels the registration.
func (a *Agent) Register(ctx context.Context, scriptPath string) (subscribe.Registration, error) {
	if err := a.Handshake(ctx); err != nil {
		return nil, err
	}
	return registration{agent: a, scriptPath: scriptPath}, nil
}

// Identity returns a snapshot of the current identity.
func (a *Agent) Identity() state.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := *a.identity
	id.ChannelIDs = slices.Clone(a.identity.ChannelIDs)
	if a.identity.Subscription != nil {
		sub := *a.identity.Subscription
		id.Subscription = &sub
	}
	return id
}

// subscribe returns the stored subscription while its channel is open, like
// PushManager.subscribe does, and opens a new channel otherwise.
func (a *Agent) subscribe(ctx context.Context, opts webpush.SubscribeOptions) (*webpush.Subscription, error) {
	key, err := webpush.ParseApplicationServerKey(opts.ApplicationServerKey)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if active := a.identity.ActiveSubscription(); active != nil {
		sub := *active
		a.mu.Unlock()
		return &sub, nil
	}
	a.mu.Unlock()

	channelID, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate channel id: %w", err)
	}

	res, err := a.service.Register(ctx, channelID.String(), base64.StdEncoding.EncodeToString(key.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("register channel: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	sub := webpush.Subscription{
		Endpoint: res.PushEndpoint,
		Keys: webpush.SubscriptionKeys{
			P256DH: webpush.EncodeKey(a.identity.PrivateKey.PublicKey().Bytes()),
			Auth:   webpush.EncodeKey(a.identity.AuthSecret),
		},
	}
	a.identity.AddChannel(channelID.String())
	stored := sub
	a.identity.Subscription = &stored
	if err = a.save(); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Serve hands every incoming push to the handler, one at a time, until ctx
// is done or the push service connection is closed.
func (a *Agent) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-a.notifications:
			if !ok {
				return autopush.ErrClosed
			}
			a.handle(ctx, n)
		}
	}
}

func (a *Agent) handle(ctx context.Context, n autopush.PushNotification) {
	a.mu.Lock()
	auth, key := a.identity.AuthSecret, a.identity.PrivateKey
	a.mu.Unlock()

	data, err := a.service.Decrypt(ecdh.P256(), auth, key, n)
	if err != nil {
		a.log.Warn("failed to decrypt push", zap.String("channelID", n.ChannelID), zap.Error(err))
		return
	}

	if err = a.handler.HandlePush(ctx, notification.PushEvent{
		ChannelID: n.ChannelID,
		Data:      data,
	}); err != nil {
		a.log.Warn("push handler failed", zap.String("channelID", n.ChannelID), zap.Error(err))
	}
}

// save must be called with mu held.
func (a *Agent) save() error {
	if a.statePath == "" {
		return nil
	}
	if err := a.identity.Save(a.statePath); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

type registration struct {
	agent      *Agent
	scriptPath string
}

func (r registration) Subscribe(ctx context.Context, opts webpush.SubscribeOptions) (*webpush.Subscription, error) {
	sub, err := r.agent.subscribe(ctx, opts)
	if err != nil {
		return nil, err
	}
	r.agent.log.Info("push subscription ready",
		zap.String("script", r.scriptPath),
		zap.Bool("userVisibleOnly", opts.UserVisibleOnly),
	)
	return sub, nil
}
