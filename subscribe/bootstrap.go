//go:generate mockgen -destination mock_subscribe/mock_subscribe.go github.com/smartsonnette/webpush-agent/subscribe Platform,Registration

// Package subscribe subscribes the agent to push messages and hands the
// resulting subscription to the application server.
package subscribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartsonnette/webpush-agent/webpush"
)

const (
	DefaultScriptPath = "/static/sw.js"
	DefaultEndpoint   = "/api/subscribe"
)

type Capabilities struct {
	ServiceWorker bool
	PushManager   bool
}

// Platform hosts push handlers, like a browser's service worker container.
type Platform interface {
	Capabilities() Capabilities
	Register(ctx context.Context, scriptPath string) (Registration, error)
}

type Registration interface {
	Subscribe(ctx context.Context, opts webpush.SubscribeOptions) (*webpush.Subscription, error)
}

type Bootstrap struct {
	Platform   Platform
	HTTPClient *http.Client
	// Endpoint is the absolute URL of the subscription collection endpoint.
	Endpoint             string
	ScriptPath           string
	ApplicationServerKey string
	Log                  *zap.Logger
}

// Run registers the handler, subscribes and posts the subscription once.
// It does nothing when the platform lacks push support. The collection
// endpoint's response is not inspected.
func (b *Bootstrap) Run(ctx context.Context) error {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("subscribe")

	caps := b.Platform.Capabilities()
	if !caps.ServiceWorker || !caps.PushManager {
		log.Info("push is not supported, skipping subscription")
		return nil
	}

	scriptPath := b.ScriptPath
	if scriptPath == "" {
		scriptPath = DefaultScriptPath
	}
	reg, err := b.Platform.Register(ctx, scriptPath)
	if err != nil {
		return fmt.Errorf("register %s: %w", scriptPath, err)
	}

	sub, err := reg.Subscribe(ctx, webpush.SubscribeOptions{
		UserVisibleOnly:      true,
		ApplicationServerKey: b.ApplicationServerKey,
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	log.Info("subscribed", zap.String("endpoint", sub.Endpoint))

	return b.post(ctx, sub)
}

func (b *Bootstrap) post(ctx context.Context, sub *webpush.Subscription) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build subscribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := b.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post subscription: %w", err)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return res.Body.Close()
}
