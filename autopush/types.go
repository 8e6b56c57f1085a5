package autopush

import "fmt"

type Status int

const (
	StatusOK          Status = 200
	StatusConflict    Status = 409
	StatusServerError Status = 500
)

type MessageType string

const (
	Ping         MessageType = "ping"
	Ack          MessageType = "ack"
	Hello        MessageType = "hello"
	Register     MessageType = "register"
	Unregister   MessageType = "unregister"
	Notification MessageType = "notification"
)

type Message struct {
	Type MessageType `json:"messageType"`
}

type HelloRequest struct {
	Type       MessageType `json:"messageType"`
	UAID       string      `json:"uaid"`
	ChannelIDs []string    `json:"channelIDs"`
	UseWebPush bool        `json:"use_webpush,omitempty"`
}

type HelloResponse struct {
	Type       MessageType `json:"messageType"`
	UAID       string      `json:"uaid"`
	Status     Status      `json:"status"`
	UseWebPush bool        `json:"use_webpush,omitempty"`
}

type RegisterRequest struct {
	Type      MessageType `json:"messageType"`
	ChannelID string      `json:"channelID"`
	Key       string      `json:"key,omitempty"`
}

type RegisterResponse struct {
	Type         MessageType `json:"messageType"`
	ChannelID    string      `json:"channelID"`
	Status       Status      `json:"status"`
	PushEndpoint string      `json:"pushEndpoint"`
}

type UnregisterRequest struct {
	Type      MessageType `json:"messageType"`
	ChannelID string      `json:"channelID"`
}

type UnregisterResponse struct {
	Type      MessageType `json:"messageType"`
	ChannelID string      `json:"channelID"`
	Status    Status      `json:"status"`
}

// PushNotification is a push message delivered on a registered channel.
// Data is the base64url encoded encrypted payload, empty for data-less pushes.
type PushNotification struct {
	Type      MessageType         `json:"messageType"`
	ChannelID string              `json:"channelID"`
	Version   string              `json:"version"`
	Data      string              `json:"data"`
	Headers   NotificationHeaders `json:"headers"`
}

type NotificationHeaders struct {
	Encryption string `json:"encryption"`
	CryptoKey  string `json:"crypto_key"`
	Encoding   string `json:"encoding"`
}

type AckRequest struct {
	Type    MessageType `json:"messageType"`
	Updates []AckUpdate `json:"updates"`
}

type AckUpdate struct {
	ChannelID string `json:"channelID"`
	Version   string `json:"version"`
}

// StatusError is returned when the push service answers a request with a
// non-200 status.
type StatusError struct {
	Op     MessageType
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("autopush: %s failed with status %d", e.Op, e.Status)
}
