package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	EnvClientID     = "SPOTX_CLIENT_ID"
	EnvClientSecret = "SPOTX_CLIENT_SECRET"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Auth        AuthConfig        `toml:"auth"`
	HTTP        HTTPConfig        `toml:"http"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURI  string   `toml:"redirect_uri"`
	Scopes       []string `toml:"scopes"`
}

// Valid reports whether both halves of the client credentials are set.
func (c SpotifyConfig) Valid() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// AuthConfig controls token lifecycle behavior.
type AuthConfig struct {
	AutoRefreshSeconds int `toml:"auto_refresh_seconds"`
}

// AutoRefresh returns the lazy refresh window, zero when disabled.
func (a AuthConfig) AutoRefresh() time.Duration {
	if a.AutoRefreshSeconds <= 0 {
		return 0
	}
	return time.Duration(a.AutoRefreshSeconds) * time.Second
}

// HTTPConfig contains outbound HTTP client settings.
type HTTPConfig struct {
	TimeoutSeconds        int `toml:"timeout_seconds"`
	ConnectTimeoutSeconds int `toml:"connect_timeout_seconds"`
}

func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

func (h HTTPConfig) ConnectTimeout() time.Duration {
	return time.Duration(h.ConnectTimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the loopback OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overrides the Spotify client credentials from the environment when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvClientID); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the config back to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
