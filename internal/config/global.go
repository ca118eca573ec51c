package config

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/tonwire/tonwire/internal/adnl"
)

// maxGlobalConfigSize bounds the descriptor size when fetching over HTTP.
const maxGlobalConfigSize = 4 << 20

// GlobalConfig is the published network descriptor. Only the liteservers
// list matters to this stack.
type GlobalConfig struct {
	LiteServers []LiteServer `json:"liteservers"`
}

// LiteServer is one entry of the descriptor: an IPv4 address packed as a
// signed big-endian integer, a port and a typed ed25519 key.
type LiteServer struct {
	IP   int32         `json:"ip"`
	Port uint16        `json:"port"`
	ID   LiteServerKey `json:"id"`
}

// LiteServerKey is the typed public key of a lite server entry.
type LiteServerKey struct {
	Type string `json:"@type"`
	Key  string `json:"key"`
}

// Addr returns the entry's host:port dial address.
func (s LiteServer) Addr() string {
	return FormatAddr(s.IP, s.Port)
}

// PublicKey returns the entry's key as an ADNL public key.
func (s LiteServer) PublicKey() (adnl.PublicKey, error) {
	if s.ID.Type != "pub.ed25519" {
		return adnl.PublicKey{}, fmt.Errorf("unsupported key type %q", s.ID.Type)
	}
	raw, err := base64.StdEncoding.DecodeString(s.ID.Key)
	if err != nil {
		return adnl.PublicKey{}, fmt.Errorf("invalid base64 key: %w", err)
	}
	return adnl.PublicKeyFromBytes(raw)
}

// ParseGlobal decodes a network descriptor from JSON.
func ParseGlobal(data []byte) (*GlobalConfig, error) {
	var cfg GlobalConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse global config: %w", err)
	}
	if len(cfg.LiteServers) == 0 {
		return nil, fmt.Errorf("global config contains no liteservers")
	}
	return &cfg, nil
}

// LoadGlobal reads a network descriptor from a local file or, when the
// source looks like an HTTP(S) URL, fetches it over the network.
func LoadGlobal(ctx context.Context, source string) (*GlobalConfig, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return FetchGlobal(ctx, http.DefaultClient, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read global config: %w", err)
	}
	return ParseGlobal(data)
}

// FetchGlobal downloads and parses a network descriptor.
func FetchGlobal(ctx context.Context, client *http.Client, url string) (*GlobalConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch global config: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch global config: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch global config: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxGlobalConfigSize))
	if err != nil {
		return nil, fmt.Errorf("fetch global config: %w", err)
	}
	return ParseGlobal(data)
}

// Pick returns the entry at index, defaulting to the first.
func (g *GlobalConfig) Pick(index int) (LiteServer, error) {
	if index < 0 || index >= len(g.LiteServers) {
		return LiteServer{}, fmt.Errorf("liteserver index %d out of range (%d entries)", index, len(g.LiteServers))
	}
	return g.LiteServers[index], nil
}
