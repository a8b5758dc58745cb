// Package config handles configuration for the server component: defaults,
// an optional JSON file, environment variables and command-line flags,
// applied in that order.
package config

import (
	"strings"
	"time"
)

// Config holds runtime settings for the proposal server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP API.
//   - EndpointAddrGRPC: bind address for the gRPC health endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - TokenValidityDuration: session token lifetime.
//   - TokenKeyDerivation: "raw" uses SecretKey bytes as the key, "hkdf" derives one.
//   - FrontendURL: base of the shareable proposal link.
//   - CORSAllowedOrigins: comma separated origins allowed by CORS.
//   - NotifyTimeout: upper bound for a single notification delivery.
//   - MailProvider: "log", "sendgrid" or "smtp".
//   - SendGridAPIKey / MailFromAddress / MailFromName: outgoing mail settings.
//   - SMTPHost / SMTPPort / SMTPUsername / SMTPPassword: relay for "smtp".
//     An empty username disables SMTP AUTH.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint:
//     optional archive of sent notifications. Empty bucket disables it.
//   - LogLevel: debug, info, warn or error.
//   - AuthRateLimitMax: login/register attempts per client IP per minute.
type Config struct {
	EndpointAddrHTTP      string
	EndpointAddrGRPC      string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	TokenKeyDerivation    string
	FrontendURL           string
	CORSAllowedOrigins    string
	NotifyTimeout         time.Duration
	MailProvider          string
	SendGridAPIKey        string
	MailFromAddress       string
	MailFromName          string
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
	LogLevel              string
	AuthRateLimitMax      int
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside of local development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 24 * time.Hour
	c.TokenKeyDerivation = "raw"
	c.FrontendURL = "http://127.0.0.1:5500/index.html"
	c.CORSAllowedOrigins = "http://localhost:5173,http://localhost:3000"
	c.NotifyTimeout = 10 * time.Second
	c.MailProvider = "log"
	c.MailFromAddress = "noreply@proposals.local"
	c.MailFromName = "Proposals"
	c.SMTPPort = 587
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.LogLevel = "info"
	c.AuthRateLimitMax = 10
}

// AllowedOrigins splits CORSAllowedOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
