package webpush

import "encoding/json"

// Payload is the JSON document carried by a push message.
// https://developer.mozilla.org/docs/Web/API/Notification
type Payload struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Icon  string          `json:"icon,omitempty"` // icon url
	Data  json.RawMessage `json:"data,omitempty"` // custom data field
}

// Subscription is the descriptor an application server needs to reach this
// client. It serializes like PushSubscription.toJSON() in a browser.
type Subscription struct {
	Endpoint       string           `json:"endpoint"`
	ExpirationTime *int64           `json:"expirationTime"`
	Keys           SubscriptionKeys `json:"keys"`
}

// SubscriptionKeys are base64url encoded without padding.
type SubscriptionKeys struct {
	P256DH string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type SubscribeOptions struct {
	// UserVisibleOnly promises that every push results in a shown notification.
	UserVisibleOnly bool
	// ApplicationServerKey is the VAPID public key as a base64 string.
	ApplicationServerKey string
}
