package teamslog

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envWebhookURL = "TEAMSLOG_WEBHOOK_URL"
	envLevel      = "TEAMSLOG_LEVEL"
	envStyle      = "TEAMSLOG_STYLE"
	envName       = "TEAMSLOG_NAME"
	envBubble     = "TEAMSLOG_BUBBLE"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("teamslog: invalid configuration")

// Config is the file and environment form of a handler's settings.
type Config struct {
	// WebhookURL is the incoming webhook of the channel. Required.
	WebhookURL string `yaml:"webhook_url"`

	// Level is the minimum level name, e.g. "error". Defaults to debug.
	Level string `yaml:"level"`

	// Style is "card" or "simple". Defaults to card.
	Style string `yaml:"style"`

	// Name is the sender shown on every notification.
	Name string `yaml:"name"`

	// Bubble tells logging frameworks whether records continue to the next
	// handler. Defaults to true.
	Bubble *bool `yaml:"bubble"`

	// ConnectTimeout and Timeout accept Go durations such as "3s" or "1m30s".
	// A bare integer is a number of seconds. Zero keeps the default.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Timeout        time.Duration `yaml:"timeout"`

	AvatarBaseURL string `yaml:"avatar_base_url"`

	MaskKeys            []string `yaml:"mask_keys"`
	MaskKeysInsensitive []string `yaml:"mask_keys_insensitive"`
}

// LoadConfig reads a YAML config file and applies TEAMSLOG_* environment
// overrides on top of it. An empty path reads the environment only.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. It decodes the timeouts itself
// so that integer seconds are accepted next to duration strings.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config

	if value.Kind != yaml.MappingNode {
		return value.Decode((*plain)(c))
	}

	rest := *value
	rest.Content = nil

	durations := make(map[string]time.Duration, 2)

	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]

		if key.Value != "connect_timeout" && key.Value != "timeout" {
			rest.Content = append(rest.Content, key, val)

			continue
		}

		d, err := decodeDuration(key.Value, val)
		if err != nil {
			return err
		}

		durations[key.Value] = d
	}

	if err := rest.Decode((*plain)(c)); err != nil {
		return err
	}

	if d, ok := durations["connect_timeout"]; ok {
		c.ConnectTimeout = d
	}

	if d, ok := durations["timeout"]; ok {
		c.Timeout = d
	}

	return nil
}

func decodeDuration(key string, n *yaml.Node) (time.Duration, error) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!int" {
		secs, err := strconv.ParseInt(n.Value, 0, 64)
		if err == nil {
			return time.Duration(secs) * time.Second, nil
		}
	}

	d, err := time.ParseDuration(n.Value)
	if n.Kind != yaml.ScalarNode || err != nil {
		return 0, fmt.Errorf("%w: line %d: %s must be a duration such as \"10s\" or a number of seconds, got %q",
			ErrInvalidConfig, n.Line, key, n.Value)
	}

	return d, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(envWebhookURL); v != "" {
		c.WebhookURL = v
	}

	if v := os.Getenv(envLevel); v != "" {
		c.Level = v
	}

	if v := os.Getenv(envStyle); v != "" {
		c.Style = v
	}

	if v := os.Getenv(envName); v != "" {
		c.Name = v
	}

	if v := os.Getenv(envBubble); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, envBubble, v)
		}

		c.Bubble = &b
	}

	return nil
}

// Validate reports the first problem of the config.
func (c Config) Validate() error {
	if err := validateWebhookURL(c.WebhookURL); err != nil {
		return err
	}

	if c.Level != "" {
		if _, err := ParseLevel(c.Level); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	if c.Style != "" {
		if _, err := ParseStyle(c.Style); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	if c.ConnectTimeout < 0 || c.Timeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}

	if c.AvatarBaseURL != "" {
		if _, err := url.Parse(c.AvatarBaseURL); err != nil {
			return fmt.Errorf("%w: avatar base URL: %v", ErrInvalidConfig, err)
		}
	}

	return nil
}

// options converts the config into handler options.
// The config must have been validated.
func (c Config) options() []Option {
	var opts []Option

	if c.Level != "" {
		level, _ := ParseLevel(c.Level)
		opts = append(opts, WithLevel(level))
	}

	if c.Style != "" {
		style, _ := ParseStyle(c.Style)
		opts = append(opts, WithStyle(style))
	}

	if c.Name != "" {
		opts = append(opts, WithName(c.Name))
	}

	if c.Bubble != nil {
		opts = append(opts, WithBubble(*c.Bubble))
	}

	if c.ConnectTimeout > 0 || c.Timeout > 0 {
		opts = append(opts, WithTimeouts(c.ConnectTimeout, c.Timeout))
	}

	if c.AvatarBaseURL != "" {
		opts = append(opts, WithAvatarBaseURL(c.AvatarBaseURL))
	}

	if len(c.MaskKeys) > 0 {
		opts = append(opts, WithMaskedKeys(c.MaskKeys...))
	}

	if len(c.MaskKeysInsensitive) > 0 {
		opts = append(opts, WithMaskedKeysInsensitive(c.MaskKeysInsensitive...))
	}

	return opts
}

func validateWebhookURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: webhook URL is required", ErrInvalidConfig)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid webhook URL: %v", ErrInvalidConfig, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: webhook URL must use http or https scheme, got %q", ErrInvalidConfig, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: webhook URL must include a host", ErrInvalidConfig)
	}

	return nil
}

// RedactURL returns raw with its path and query hidden. Webhook URLs embed
// their secret in the path, so only scheme and host are safe to print.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<invalid-url>"
	}

	return u.Scheme + "://" + u.Host + "/..."
}
