package config

import (
	"gopkg.in/yaml.v3"
)

const masked = "********"

// Redacted returns a copy of the configuration with credentials masked.
func (c Config) Redacted() Config {
	mask := func(s *string) {
		if *s != "" {
			*s = masked
		}
	}
	mask(&c.Storage.MinioSecretKey)
	mask(&c.Storage.SupabaseKey)
	mask(&c.Redis.Password)
	mask(&c.Engines.OpenAIAPIKey)
	mask(&c.Engines.GeminiAPIKey)
	mask(&c.Auth.JWTSecret)
	mask(&c.Payments.StripeSecretKey)
	mask(&c.Payments.StripeWebhookSecret)
	mask(&c.HTTP.CronSecret)
	return c
}

// YAML renders the redacted configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Redacted())
}
