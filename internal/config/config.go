package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Mode is the active persistence mode, decided once at boot.
type Mode int

const (
	// ModeLocal stores all entities in the embedded key-value store.
	ModeLocal Mode = iota
	// ModeRemote stores all entities in the remote Postgres backend.
	ModeRemote
)

// String returns the mode name for logging.
func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "local"
}

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	Remote RemoteConfig `yaml:"remote"`
	Local  LocalConfig  `yaml:"local"`
	AWS    AWSConfig    `yaml:"aws"`
	APNs   APNsConfig   `yaml:"apns"`
	JWT    JWTConfig    `yaml:"jwt"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// RemoteConfig holds the remote backend credentials. Their presence is the
// sole input to the mode selection; when either URL or Key is empty, or the
// demo override is set, the application runs against local storage.
type RemoteConfig struct {
	URL      string `yaml:"url"`       // Postgres URL of the remote backend
	Key      string `yaml:"key"`       // service credential, injected as the URL password
	DemoMode bool   `yaml:"demo_mode"` // force local mode regardless of credentials
}

// LocalConfig holds local storage configuration
type LocalConfig struct {
	Path string `yaml:"path"` // directory for the embedded key-value store
}

// AWSConfig holds AWS configuration for media uploads
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"` // custom S3-compatible endpoint, optional
}

// APNsConfig holds push notification configuration
type APNsConfig struct {
	CertPath     string `yaml:"cert_path"` // .p12 certificate; empty disables push
	CertPassword string `yaml:"cert_password"`
	Topic        string `yaml:"topic"`
	Production   bool   `yaml:"production"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file and applies environment
// overrides for the remote-mode inputs.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

// applyEnv overrides the remote backend inputs from the environment, so
// deployments can switch mode without editing the config file.
func (c *Config) applyEnv() {
	c.Remote.URL = getEnv("SITECHAT_REMOTE_URL", c.Remote.URL)
	c.Remote.Key = getEnv("SITECHAT_REMOTE_KEY", c.Remote.Key)
	if v := os.Getenv("SITECHAT_DEMO_MODE"); v != "" {
		c.Remote.DemoMode = strings.EqualFold(v, "true") || v == "1"
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Local.Path == "" {
		c.Local.Path = "data"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Mode evaluates the persistence mode once. Missing remote credentials are
// not an error: the application warns and proceeds against local storage.
func (c *Config) Mode() Mode {
	if c.Remote.DemoMode {
		return ModeLocal
	}
	if c.Remote.URL == "" || c.Remote.Key == "" {
		log.Warn().Msg("Remote backend not configured, falling back to local storage")
		return ModeLocal
	}
	return ModeRemote
}

// DSN returns the Postgres connection string for the remote backend, with
// the service key injected as the password.
func (c *RemoteConfig) DSN() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse remote URL: %w", err)
	}

	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.Key)

	return u.String(), nil
}
