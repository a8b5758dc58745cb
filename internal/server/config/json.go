package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/proposals/internal/flagx"
	"github.com/dmitrijs2005/proposals/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations use timex.Duration so
// both "10s" and integer nanoseconds are accepted. Absent keys keep the
// value already present in Config.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	TokenKeyDerivation    string         `json:"token_key_derivation"`
	FrontendURL           string         `json:"frontend_url"`
	CORSAllowedOrigins    string         `json:"cors_allowed_origins"`
	NotifyTimeout         timex.Duration `json:"notify_timeout"`
	MailProvider          string         `json:"mail_provider"`
	SendGridAPIKey        string         `json:"sendgrid_api_key"`
	MailFromAddress       string         `json:"mail_from_address"`
	MailFromName          string         `json:"mail_from_name"`
	SMTPHost              string         `json:"smtp_host"`
	SMTPPort              int            `json:"smtp_port"`
	SMTPUsername          string         `json:"smtp_username"`
	SMTPPassword          string         `json:"smtp_password"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	LogLevel              string         `json:"log_level"`
	AuthRateLimitMax      int            `json:"auth_rate_limit_max"`
}

// parseJson overlays the file named by -c/-config onto config.
// A missing flag is a no-op; an unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TokenKeyDerivation, c.TokenKeyDerivation)
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.CORSAllowedOrigins, c.CORSAllowedOrigins)
	setString(&config.MailProvider, c.MailProvider)
	setString(&config.SendGridAPIKey, c.SendGridAPIKey)
	setString(&config.MailFromAddress, c.MailFromAddress)
	setString(&config.MailFromName, c.MailFromName)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.NotifyTimeout.Duration > 0 {
		config.NotifyTimeout = c.NotifyTimeout.Duration
	}
	if c.SMTPPort > 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.AuthRateLimitMax > 0 {
		config.AuthRateLimitMax = c.AuthRateLimitMax
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
