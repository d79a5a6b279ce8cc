package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify lifetimes either as strings like "15m"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	EndpointAddr     string         `json:"endpoint_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	RedisAddr        string         `json:"redis_addr"`
	AccessTokenTTL   timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL  timex.Duration `json:"refresh_token_ttl"`
	MaxLoginAttempts int            `json:"max_login_attempts"`
	LoginCooldown    timex.Duration `json:"login_cooldown"`
	Production       bool           `json:"production"`
}

// parseJson overlays Config with values loaded from a JSON file whose path
// is given via the -c/-config flags. If no path is provided the function
// returns without touching cfg. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.EndpointAddr != "" {
		cfg.EndpointAddr = jc.EndpointAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.RedisAddr != "" {
		cfg.RedisAddr = jc.RedisAddr
	}
	if jc.AccessTokenTTL.Duration > 0 {
		cfg.AccessTokenTTL = time.Duration(jc.AccessTokenTTL.Duration)
	}
	if jc.RefreshTokenTTL.Duration > 0 {
		cfg.RefreshTokenTTL = time.Duration(jc.RefreshTokenTTL.Duration)
	}
	if jc.MaxLoginAttempts > 0 {
		cfg.MaxLoginAttempts = jc.MaxLoginAttempts
	}
	if jc.LoginCooldown.Duration > 0 {
		cfg.LoginCooldown = time.Duration(jc.LoginCooldown.Duration)
	}
	cfg.Production = cfg.Production || jc.Production
}
