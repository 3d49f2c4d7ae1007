package config

import (
	"encoding/hex"
	"fmt"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// StravaConfig holds the OAuth application settings for the activity provider.
type StravaConfig struct {
	ClientID           string `mapstructure:"client_id"`
	ClientSecret       string `mapstructure:"client_secret"`
	RedirectURL        string `mapstructure:"redirect_url"`
	WebhookVerifyToken string `mapstructure:"webhook_verify_token"`
	SuccessRedirectURL string `mapstructure:"success_redirect_url"`
	ErrorRedirectURL   string `mapstructure:"error_redirect_url"`
}

func (s *StravaConfig) Validate() error {
	if s.ClientID == "" {
		return fmt.Errorf("strava.client_id is required")
	}
	if s.ClientSecret == "" {
		return fmt.Errorf("strava.client_secret is required")
	}
	if s.RedirectURL == "" {
		return fmt.Errorf("strava.redirect_url is required")
	}
	if s.WebhookVerifyToken == "" {
		return fmt.Errorf("strava.webhook_verify_token is required")
	}
	return nil
}

// SyncConfig controls token encryption and the reconciliation sweep.
type SyncConfig struct {
	// EncryptionKey is the hex-encoded 32-byte key used to encrypt stored tokens.
	EncryptionKey string `mapstructure:"encryption_key"`
	IntervalHours int    `mapstructure:"interval_hours"`
	LookbackHours int    `mapstructure:"lookback_hours"`
	QueueSize     int    `mapstructure:"queue_size"`
	Workers       int    `mapstructure:"workers"`
}

func (s *SyncConfig) Validate() error {
	key, err := hex.DecodeString(s.EncryptionKey)
	if err != nil {
		return fmt.Errorf("sync.encryption_key must be hex-encoded: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("sync.encryption_key must decode to 32 bytes, got %d", len(key))
	}
	return nil
}

// Key returns the decoded encryption key. Validate must have succeeded first.
func (s *SyncConfig) Key() []byte {
	key, _ := hex.DecodeString(s.EncryptionKey)
	return key
}
