package config

import "github.com/dmitrijs2005/proposals/internal/flagx"

// parseEnv overlays PROPOSAL_* variables (and SENDGRID_API_KEY) onto config.
func parseEnv(config *Config) {
	config.EndpointAddrHTTP = flagx.EnvString("PROPOSAL_HTTP_ADDR", config.EndpointAddrHTTP)
	config.EndpointAddrGRPC = flagx.EnvString("PROPOSAL_GRPC_ADDR", config.EndpointAddrGRPC)
	config.DatabaseDSN = flagx.EnvString("PROPOSAL_DATABASE_DSN", config.DatabaseDSN)
	config.SecretKey = flagx.EnvString("PROPOSAL_SECRET_KEY", config.SecretKey)
	config.TokenValidityDuration = flagx.EnvDuration("PROPOSAL_TOKEN_TTL", config.TokenValidityDuration)
	config.TokenKeyDerivation = flagx.EnvString("PROPOSAL_TOKEN_KEY_DERIVATION", config.TokenKeyDerivation)
	config.FrontendURL = flagx.EnvString("PROPOSAL_FRONTEND_URL", config.FrontendURL)
	config.CORSAllowedOrigins = flagx.EnvString("PROPOSAL_CORS_ALLOWED_ORIGINS", config.CORSAllowedOrigins)
	config.NotifyTimeout = flagx.EnvDuration("PROPOSAL_NOTIFY_TIMEOUT", config.NotifyTimeout)
	config.MailProvider = flagx.EnvString("PROPOSAL_MAIL_PROVIDER", config.MailProvider)
	config.SendGridAPIKey = flagx.EnvString("SENDGRID_API_KEY", config.SendGridAPIKey)
	config.MailFromAddress = flagx.EnvString("PROPOSAL_MAIL_FROM_ADDRESS", config.MailFromAddress)
	config.MailFromName = flagx.EnvString("PROPOSAL_MAIL_FROM_NAME", config.MailFromName)
	config.SMTPHost = flagx.EnvString("PROPOSAL_SMTP_HOST", config.SMTPHost)
	config.SMTPPort = flagx.EnvInt("PROPOSAL_SMTP_PORT", config.SMTPPort)
	config.SMTPUsername = flagx.EnvString("PROPOSAL_SMTP_USERNAME", config.SMTPUsername)
	config.SMTPPassword = flagx.EnvString("PROPOSAL_SMTP_PASSWORD", config.SMTPPassword)
	config.S3RootUser = flagx.EnvString("PROPOSAL_S3_ROOT_USER", config.S3RootUser)
	config.S3RootPassword = flagx.EnvString("PROPOSAL_S3_ROOT_PASSWORD", config.S3RootPassword)
	config.S3Bucket = flagx.EnvString("PROPOSAL_S3_BUCKET", config.S3Bucket)
	config.S3Region = flagx.EnvString("PROPOSAL_S3_REGION", config.S3Region)
	config.S3BaseEndpoint = flagx.EnvString("PROPOSAL_S3_BASE_ENDPOINT", config.S3BaseEndpoint)
	config.LogLevel = flagx.EnvString("PROPOSAL_LOG_LEVEL", config.LogLevel)
	config.AuthRateLimitMax = flagx.EnvInt("PROPOSAL_AUTH_RATE_LIMIT", config.AuthRateLimitMax)
}
