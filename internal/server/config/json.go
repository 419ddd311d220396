package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/flagx"
	"github.com/dmitrijs2005/rabetweb/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "5s" style strings or integer nanoseconds. Fields left out of the
// file keep their current value.
type JsonConfig struct {
	ListenAddr         *string         `json:"listen_addr"`
	DatabaseDSN        *string         `json:"database_dsn"`
	Production         *bool           `json:"production"`
	ShutdownTimeout    *timex.Duration `json:"shutdown_timeout"`
	SessionSecret      *string         `json:"session_secret"`
	SessionTTL         *timex.Duration `json:"session_ttl"`
	IdentitySecret     *string         `json:"identity_secret"`
	IdentityIssuer     *string         `json:"identity_issuer"`
	IdentityTokenTTL   *timex.Duration `json:"identity_token_ttl"`
	OIDCIssuer         *string         `json:"oidc_issuer"`
	OIDCAudience       *string         `json:"oidc_audience"`
	VerifyBaseURL      *string         `json:"verify_base_url"`
	VerifyTimeout      *timex.Duration `json:"verify_timeout"`
	S3RootUser         *string         `json:"s3_root_user"`
	S3RootPassword     *string         `json:"s3_root_password"`
	S3Bucket           *string         `json:"s3_bucket"`
	S3Region           *string         `json:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint"`
	AuthRateLimit      *int            `json:"auth_rate_limit"`
	AuthRateBurst      *int            `json:"auth_rate_burst"`
	DependencyRegistry *string         `json:"dependency_registry"`
	DependencySchedule *string         `json:"dependency_schedule"`
	DependencyCacheTTL *timex.Duration `json:"dependency_cache_ttl"`
	CORSOrigins        []string        `json:"cors_origins"`
}

// parseJson overlays Config with the file named by -c/-config, if any.
// An unreadable or malformed file panics, like a bad flag.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}
	if err := LoadFile(path, config); err != nil {
		panic(err)
	}
}

// LoadFile overlays config with the JSON file at path.
func LoadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	if c.Production != nil {
		config.Production = *c.Production
	}
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	setString(&config.SessionSecret, c.SessionSecret)
	setDuration(&config.SessionTTL, c.SessionTTL)
	setString(&config.IdentitySecret, c.IdentitySecret)
	setString(&config.IdentityIssuer, c.IdentityIssuer)
	setDuration(&config.IdentityTokenTTL, c.IdentityTokenTTL)
	setString(&config.OIDCIssuer, c.OIDCIssuer)
	setString(&config.OIDCAudience, c.OIDCAudience)
	setString(&config.VerifyBaseURL, c.VerifyBaseURL)
	setDuration(&config.VerifyTimeout, c.VerifyTimeout)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.AuthRateLimit != nil {
		config.AuthRateLimit = *c.AuthRateLimit
	}
	if c.AuthRateBurst != nil {
		config.AuthRateBurst = *c.AuthRateBurst
	}
	setString(&config.DependencyRegistry, c.DependencyRegistry)
	setString(&config.DependencySchedule, c.DependencySchedule)
	setDuration(&config.DependencyCacheTTL, c.DependencyCacheTTL)
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
