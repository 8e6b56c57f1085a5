// Package state persists the agent's push identity between runs.
package state

import (
	"crypto/ecdh"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/smartsonnette/webpush-agent/rfc8291"
	"github.com/smartsonnette/webpush-agent/webpush"
)

// Identity is what the push service and the application server know this
// agent by.
type Identity struct {
	UAID       string
	ChannelIDs []string
	AuthSecret []byte
	PrivateKey *ecdh.PrivateKey
	// Subscription is the descriptor last handed to the application server.
	Subscription *webpush.Subscription
}

type serializedIdentity struct {
	UAID         string                `json:"uaid"`
	ChannelIDs   []string              `json:"channel_ids"`
	AuthSecret   string                `json:"auth_secret"`
	PrivateKey   string                `json:"private_key"`
	Subscription *webpush.Subscription `json:"subscription,omitempty"`
}

// New returns an identity with fresh secrets and no registration.
func New() (*Identity, error) {
	auth, _, key, err := rfc8291.NewSecrets(ecdh.P256())
	if err != nil {
		return nil, err
	}
	return &Identity{AuthSecret: auth, PrivateKey: key}, nil
}

// Load reads the identity at path. A missing file yields a new identity.
func Load(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New()
	}
	if err != nil {
		return nil, err
	}

	var s serializedIdentity
	if err = json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	id, err := New()
	if err != nil {
		return nil, err
	}
	id.UAID = s.UAID
	id.ChannelIDs = s.ChannelIDs
	id.Subscription = s.Subscription

	if s.AuthSecret != "" {
		if id.AuthSecret, err = base64.RawURLEncoding.DecodeString(s.AuthSecret); err != nil {
			return nil, fmt.Errorf("decode auth secret: %w", err)
		}
		if len(id.AuthSecret) != rfc8291.AuthSecretLen {
			return nil, rfc8291.ErrInvalidAuthSecret
		}
	}
	if s.PrivateKey != "" {
		b, err := base64.RawURLEncoding.DecodeString(s.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("decode private key: %w", err)
		}
		if id.PrivateKey, err = ecdh.P256().NewPrivateKey(b); err != nil {
			return nil, fmt.Errorf("load private key: %w", err)
		}
	}
	return id, nil
}

func (id *Identity) Save(path string) error {
	data, err := json.MarshalIndent(serializedIdentity{
		UAID:         id.UAID,
		ChannelIDs:   id.ChannelIDs,
		AuthSecret:   base64.RawURLEncoding.EncodeToString(id.AuthSecret),
		PrivateKey:   base64.RawURLEncoding.EncodeToString(id.PrivateKey.Bytes()),
		Subscription: id.Subscription,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (id *Identity) AddChannel(channelID string) {
	if !slices.Contains(id.ChannelIDs, channelID) {
		id.ChannelIDs = append(id.ChannelIDs, channelID)
	}
}

// Registered reports whether a push channel has already been opened.
func (id *Identity) Registered() bool {
	return len(id.ChannelIDs) > 0
}

// ActiveSubscription returns the stored subscription while its channels are
// still open, nil otherwise.
func (id *Identity) ActiveSubscription() *webpush.Subscription {
	if !id.Registered() {
		return nil
	}
	return id.Subscription
}

// DropChannels forgets every channel and the subscription built on them.
func (id *Identity) DropChannels() {
	id.ChannelIDs = nil
	id.Subscription = nil
}
