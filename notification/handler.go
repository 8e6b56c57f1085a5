//go:generate mockgen -destination mock_notification/mock_notification.go github.com/smartsonnette/webpush-agent/notification Displayer

// Package notification turns push events into displayed notifications.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/smartsonnette/webpush-agent/webpush"
)

const DefaultIcon = "/static/icon.png"

var ErrNullPayload = errors.New("push payload is null")

// PushEvent is an inbound push message after decryption.
type PushEvent struct {
	ChannelID string
	Data      []byte
}

// JSON decodes the event data into v.
func (e PushEvent) JSON(v any) error {
	return json.Unmarshal(e.Data, v)
}

type Options struct {
	Body string `json:"body"`
	Icon string `json:"icon"`
}

// Displayer shows a notification to the user.
type Displayer interface {
	Show(ctx context.Context, title string, opts Options) error
}

type Handler struct {
	displayer   Displayer
	defaultIcon string
	log         *zap.Logger
}

// NewHandler returns a Handler showing notifications on d. An empty
// defaultIcon means DefaultIcon.
func NewHandler(d Displayer, defaultIcon string, log *zap.Logger) *Handler {
	if defaultIcon == "" {
		defaultIcon = DefaultIcon
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		displayer:   d,
		defaultIcon: defaultIcon,
		log:         log.Named("notification"),
	}
}

// HandlePush shows the notification described by the event payload and
// returns once the displayer has finished. A payload that is not a JSON
// object shows nothing.
func (h *Handler) HandlePush(ctx context.Context, event PushEvent) error {
	var payload *webpush.Payload
	err := event.JSON(&payload)
	if err == nil && payload == nil {
		err = ErrNullPayload
	}
	if err != nil {
		h.log.Warn("invalid push payload", zap.String("channelID", event.ChannelID), zap.Error(err))
		return fmt.Errorf("parse push payload: %w", err)
	}

	opts := Options{
		Body: payload.Body,
		Icon: payload.Icon,
	}
	if opts.Icon == "" {
		opts.Icon = h.defaultIcon
	}

	if err := h.displayer.Show(ctx, payload.Title, opts); err != nil {
		return fmt.Errorf("show notification: %w", err)
	}
	return nil
}
