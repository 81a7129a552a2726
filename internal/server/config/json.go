package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pacpoom/interface-vdc/internal/flagx"
	"github.com/pacpoom/interface-vdc/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "5m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	PlatformURL                 string         `json:"platform_url"`
	PlatformAppID               string         `json:"platform_app_id"`
	PlatformAPICode             string         `json:"platform_api_code"`
	PlatformTimeout             timex.Duration `json:"platform_timeout"`
	SyncInterval                timex.Duration `json:"sync_interval"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics; the process must not start
// on a broken config.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.PlatformURL = c.PlatformURL
	config.PlatformAppID = c.PlatformAppID
	config.PlatformAPICode = c.PlatformAPICode
	config.PlatformTimeout = time.Duration(c.PlatformTimeout.Duration)
	config.SyncInterval = time.Duration(c.SyncInterval.Duration)
}
