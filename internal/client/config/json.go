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
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	DatabasePath       string         `json:"database_path"`
	AccessTokenTTL     timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL    timex.Duration `json:"refresh_token_ttl"`
	Production         bool           `json:"production"`
}

// parseJson overlays Config with values loaded from a JSON file whose path
// is given via the -c/-config flags. If no path is provided the function
// returns without touching cfg. Read or unmarshal errors panic; the caller
// can recover if desired.
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

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.AccessTokenTTL.Duration > 0 {
		cfg.AccessTokenTTL = time.Duration(jc.AccessTokenTTL.Duration)
	}
	if jc.RefreshTokenTTL.Duration > 0 {
		cfg.RefreshTokenTTL = time.Duration(jc.RefreshTokenTTL.Duration)
	}
	cfg.Production = cfg.Production || jc.Production
}
