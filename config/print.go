package config

import (
	"context"

	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
)

const redacted = "***"

func secret(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}

// PrintConfig logs the effective configuration with credentials hidden.
func PrintConfig(ctx context.Context, log logger.Logger, c *Config) {
	log.Info(ctx, "configuration loaded",
		"service", c.ServiceName,
		"instance_id", c.InstanceID,
		"log_level", c.LogLevel,
		"server_addr", c.Server.Addr(),
		"allowed_origins", c.Server.AllowedOrigins,
		"database_host", c.Database.Host,
		"database_name", c.Database.Database,
		"database_password", secret(c.Database.Password),
		"rabbitmq_enabled", c.RabbitMQ.Enabled,
		"rabbitmq_host", c.RabbitMQ.Host,
		"redis_enabled", c.Redis.Enabled,
		"redis_addr", c.Redis.Addr,
		"jwt_secret", secret(c.Auth.JWTSecret),
		"api_key", secret(c.Auth.APIKey),
		"pricing_timezone", c.Pricing.Timezone,
		"google_api_key", secret(c.Routing.GoogleAPIKey),
		"osrm_url", c.Routing.OSRMURL,
		"wallet_url", c.Wallet.URL,
		"firebase_project", c.Firebase.ProjectID,
		"sms_api_key", secret(c.SMS.APIKey),
		"smtp_host", c.SMTP.Host,
		"smtp_password", secret(c.SMTP.Password),
		"s3_endpoint", c.S3.Endpoint,
		"s3_bucket", c.S3.Bucket,
		"s3_secret_key", secret(c.S3.SecretKey),
	)
}
