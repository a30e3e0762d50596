package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Export      ExportConfig      `toml:"export"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Discogs DiscogsConfig `toml:"discogs"`
}

// DiscogsConfig contains Discogs API consumer credentials and, once the
// OAuth flow has completed, the access token pair signed into every request.
type DiscogsConfig struct {
	ConsumerKey    string `toml:"consumer_key"`
	ConsumerSecret string `toml:"consumer_secret"`
	Token          string `toml:"oauth_token"`
	TokenSecret    string `toml:"oauth_token_secret"`
	UserAgent      string `toml:"user_agent"`
}

// Map converts the Discogs credentials to the map form consumed by [services.Service.Authenticate].
func (d DiscogsConfig) Map() map[string]string {
	return map[string]string{
		"consumer_key":       d.ConsumerKey,
		"consumer_secret":    d.ConsumerSecret,
		"oauth_token":        d.Token,
		"oauth_token_secret": d.TokenSecret,
		"user_agent":         d.UserAgent,
	}
}

// HasConsumer reports whether the consumer key pair is configured.
func (d DiscogsConfig) HasConsumer() bool {
	return d.ConsumerKey != "" && d.ConsumerSecret != ""
}

// HasToken reports whether a stored access token pair is available.
func (d DiscogsConfig) HasToken() bool {
	return d.Token != "" && d.TokenSecret != ""
}

// Update stores a new access token pair on the config.
func (d *DiscogsConfig) Update(token, secret string) error {
	if token == "" || secret == "" {
		return fmt.Errorf("%w: empty access token", ErrInvalidCredentials)
	}
	d.Token = token
	d.TokenSecret = secret
	return nil
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

// ExportConfig contains CSV export settings.
type ExportConfig struct {
	TemplatePath string `toml:"template_path"` // blank uses the embedded QR Factory template
	OutputDir    string `toml:"output_dir"`
	Sort         string `toml:"sort"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// SaveConfig writes the configuration back to path as TOML.
//
// Used to persist OAuth access tokens after authorization.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
