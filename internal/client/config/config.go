// Package config handles configuration for the client component,
// including defaults, environment overlay for secrets, JSON overlay,
// and command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
)

// Config holds runtime settings for the authkeeper client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the identity endpoint.
//   - DatabasePath: path to the local sqlite database.
//   - SigningSecret / EncryptionSecret: HMAC signing key and session-blob
//     encryption key. Mandatory (>= 32 bytes) when Production is set;
//     otherwise short values are padded and empty values fall back to
//     development defaults.
//   - AccessTokenTTL / RefreshTokenTTL: token lifetimes.
type Config struct {
	ServerEndpointAddr string
	DatabasePath       string
	SigningSecret      []byte
	EncryptionSecret   []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Production         bool
}

// LoadDefaults populates c with development defaults.
// NOTE: the secrets are insecure and exist only so the client runs
// out of the box in development mode.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "authkeeper.db"
	c.SigningSecret = []byte("dev-signing-secret")
	c.EncryptionSecret = []byte("dev-encryption-secret")
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 7 * 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)

	if err := cfg.normalizeSecrets(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseEnv overlays secrets and the production switch from the
// environment. Secrets are deliberately not accepted as flags.
func parseEnv(cfg *Config) {
	if v := os.Getenv("AUTHKEEPER_SIGNING_SECRET"); v != "" {
		cfg.SigningSecret = []byte(v)
	}
	if v := os.Getenv("AUTHKEEPER_ENCRYPTION_SECRET"); v != "" {
		cfg.EncryptionSecret = []byte(v)
	}
	if v := os.Getenv("AUTHKEEPER_PRODUCTION"); v == "1" || v == "true" {
		cfg.Production = true
	}
}

// normalizeSecrets enforces the secret-length policy: production mode
// requires full-length secrets and fails fast; development mode keeps the
// legacy pad-with-'0' behavior.
func (c *Config) normalizeSecrets() error {
	if c.Production {
		if len(c.SigningSecret) < cryptox.SecretSize {
			return fmt.Errorf("signing secret must be at least %d bytes in production", cryptox.SecretSize)
		}
		if len(c.EncryptionSecret) < cryptox.SecretSize {
			return fmt.Errorf("encryption secret must be at least %d bytes in production", cryptox.SecretSize)
		}
	}
	c.SigningSecret = cryptox.PadSecret(c.SigningSecret)
	c.EncryptionSecret = cryptox.PadSecret(c.EncryptionSecret)
	return nil
}
