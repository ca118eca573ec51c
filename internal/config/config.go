// Package config provides configuration parsing and validation for tonwire.
package config

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tonwire/tonwire/internal/adnl"
)

// Config represents the complete tonwire configuration file.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Client  ClientConfig  `yaml:"client"`
	Server  ServerConfig  `yaml:"server"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// ClientConfig selects the lite server to talk to: either an explicit
// address/key pair, or a global network config (file path or URL) from which
// the entry at Index is picked.
type ClientConfig struct {
	Address      string        `yaml:"address"`
	PublicKey    string        `yaml:"public_key"`
	GlobalConfig string        `yaml:"global_config"`
	Index        int           `yaml:"index"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxInFlight  int           `yaml:"max_in_flight"`
}

// ServerConfig configures the serving side.
type ServerConfig struct {
	Listen string `yaml:"listen"`
	// Key is the static private key seed, base64 or hex encoded.
	Key string `yaml:"key"`
	// KeyFile points at a file holding the seed instead.
	KeyFile string `yaml:"key_file"`
}

// Default returns the configuration defaults applied before file values.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Listen: "127.0.0.1:9090",
		},
		Client: ClientConfig{
			Timeout:     30 * time.Second,
			MaxInFlight: 100,
		},
		Server: ServerConfig{
			Listen: "0.0.0.0:4924",
		},
	}
}

// Load reads and validates a configuration file, applying defaults for
// missing values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field consistency.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics enabled but no listen address configured")
	}
	if c.Client.MaxInFlight < 0 {
		return fmt.Errorf("client.max_in_flight must not be negative")
	}
	if c.Server.Key != "" && c.Server.KeyFile != "" {
		return fmt.Errorf("server.key and server.key_file are mutually exclusive")
	}
	return nil
}

// ServerKey loads the server's static private key from the configured inline
// value or key file.
func (c *Config) ServerKey() (*adnl.PrivateKey, error) {
	encoded := c.Server.Key
	if c.Server.KeyFile != "" {
		data, err := os.ReadFile(c.Server.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("read server key: %w", err)
		}
		encoded = strings.TrimSpace(string(data))
	}
	if encoded == "" {
		return nil, fmt.Errorf("no server key configured")
	}
	seed, err := DecodeKey(encoded)
	if err != nil {
		return nil, err
	}
	return adnl.PrivateKeyFromSeed(seed)
}

// DecodeKey decodes 32 bytes of key material from base64 or hex.
func DecodeKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == 32 {
		return b, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("key is neither base64 nor hex: %q", s)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("invalid key length: got %d bytes, want 32", len(b))
	}
	return b, nil
}

// IPv4Addr converts the signed big-endian integer form used by the network
// descriptor into a dotted-quad IP.
func IPv4Addr(v int32) net.IP {
	u := uint32(v)
	return net.IPv4(byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

// FormatAddr renders an (ip, port) pair as a dial address.
func FormatAddr(ip int32, port uint16) string {
	return net.JoinHostPort(IPv4Addr(ip).String(), strconv.Itoa(int(port)))
}
