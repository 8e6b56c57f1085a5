package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/smartsonnette/webpush-agent/autopush"
	"github.com/smartsonnette/webpush-agent/notification"
	"github.com/smartsonnette/webpush-agent/subscribe"
	"github.com/smartsonnette/webpush-agent/webpush"
)

const EnvApplicationServerKey = "WEBPUSH_APPLICATION_SERVER_KEY"

var (
	ErrMissingKey     = errors.New("config: applicationServerKey is required")
	ErrPlaceholderKey = errors.New("config: applicationServerKey is a placeholder")
	ErrMissingOrigin  = errors.New("config: origin is required")
)

type Config struct {
	PushService          string `yaml:"pushService"`
	Origin               string `yaml:"origin"`
	SubscribePath        string `yaml:"subscribePath"`
	ScriptPath           string `yaml:"scriptPath"`
	DefaultIcon          string `yaml:"defaultIcon"`
	ApplicationServerKey string `yaml:"applicationServerKey"`
	StatePath            string `yaml:"statePath"`
	HTTP2                bool   `yaml:"http2"`
	NotifyCommand        string `yaml:"notifyCommand"`
	Log                  Log    `yaml:"log"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// NewFromFile reads the YAML config at path, then applies environment
// overrides, loading a .env file next to the working directory if present.
func NewFromFile(path string) (c *Config, err error) {
	c = &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	_ = godotenv.Load()
	c.applyEnv()
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyEnv() {
	if key, ok := os.LookupEnv(EnvApplicationServerKey); ok && key != "" {
		c.ApplicationServerKey = key
	}
}

func (c *Config) applyDefaults() {
	if c.PushService == "" {
		c.PushService = autopush.MozillaPushService
	}
	if c.SubscribePath == "" {
		c.SubscribePath = subscribe.DefaultEndpoint
	}
	if c.ScriptPath == "" {
		c.ScriptPath = subscribe.DefaultScriptPath
	}
	if c.DefaultIcon == "" {
		c.DefaultIcon = notification.DefaultIcon
	}
	if c.StatePath == "" {
		c.StatePath = "state.json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	key := strings.TrimSpace(c.ApplicationServerKey)
	if key == "" {
		return ErrMissingKey
	}
	if strings.HasPrefix(key, "<") {
		return ErrPlaceholderKey
	}
	if _, err := webpush.ParseApplicationServerKey(key); err != nil {
		return fmt.Errorf("config: applicationServerKey: %w", err)
	}
	if c.Origin == "" {
		return ErrMissingOrigin
	}
	if _, err := url.Parse(c.Origin); err != nil {
		return fmt.Errorf("config: origin: %w", err)
	}
	return nil
}

// SubscribeURL is the absolute URL of the subscription collection endpoint.
func (c *Config) SubscribeURL() (string, error) {
	return url.JoinPath(c.Origin, c.SubscribePath)
}
