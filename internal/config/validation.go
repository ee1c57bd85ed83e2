package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validate checks cross-field requirements that env-default tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q (want sqlite3 or postgres)", c.Database.Driver))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}

	switch c.Storage.Driver {
	case "minio":
		if c.Storage.MinioAccessKey == "" || c.Storage.MinioSecretKey == "" {
			errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio storage driver"))
		}
	case "supabase":
		if c.Storage.SupabaseURL == "" || c.Storage.SupabaseKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_KEY are required for the supabase storage driver"))
		}
	case "local":
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q (want minio, supabase or local)", c.Storage.Driver))
	}

	switch c.Engines.Transcriber {
	case "openai":
	case "whisper_server":
		if c.Engines.WhisperServerURL == "" {
			errs = append(errs, errors.New("WHISPER_SERVER_URL is required for the whisper_server transcriber"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported transcriber %q (want openai or whisper_server)", c.Engines.Transcriber))
	}

	switch c.Engines.SummaryProvider {
	case "openai", "gemini", "none":
	default:
		errs = append(errs, fmt.Errorf("unsupported summary provider %q", c.Engines.SummaryProvider))
	}
	if c.Engines.OpenAIAPIKey != "" {
		if err := ValidateAPIKey(c.Engines.OpenAIAPIKey, "OpenAI"); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Engines.SummaryProvider == "gemini" {
		if err := ValidateAPIKey(c.Engines.GeminiAPIKey, "Gemini"); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Ingest.ChunkSize <= 0 || c.Ingest.DirectMaxBytes <= 0 {
		errs = append(errs, errors.New("ingest sizes must be positive"))
	}
	if c.Ingest.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_UPLOADS must be positive"))
	}
	if err := ValidateTimeout(c.Pipeline.StallThreshold, "stall"); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateConcurrency(c.Pipeline.WorkerConcurrency, "worker"); err != nil {
		errs = append(errs, err)
	}
	if c.Pipeline.SweepBatchSize <= 0 {
		errs = append(errs, errors.New("SWEEP_BATCH_SIZE must be positive"))
	}

	if _, err := c.Credits.Rate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Credits.Threshold(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Rate parses CREDITS_PER_MINUTE.
func (c CreditsConfig) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.PerMinute)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("CREDITS_PER_MINUTE must be a positive decimal, got %q", c.PerMinute)
	}
	return rate, nil
}

// Threshold parses LOW_BALANCE_THRESHOLD.
func (c CreditsConfig) Threshold() (decimal.Decimal, error) {
	threshold, err := decimal.NewFromString(c.LowBalanceThreshold)
	if err != nil || threshold.IsNegative() {
		return decimal.Zero, fmt.Errorf("LOW_BALANCE_THRESHOLD must be a non-negative decimal, got %q", c.LowBalanceThreshold)
	}
	return threshold, nil
}

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 24*time.Hour {
		return fmt.Errorf("%s timeout too large (max 24 hours)", name)
	}
	return nil
}

// ValidateConcurrency validates concurrency setting
func ValidateConcurrency(concurrency int, name string) error {
	if concurrency <= 0 {
		return fmt.Errorf("%s concurrency must be positive", name)
	}
	if concurrency > 100 {
		return fmt.Errorf("%s concurrency too high (max 100)", name)
	}
	return nil
}

// ValidateAPIKey validates API key format
func ValidateAPIKey(apiKey string, keyType string) error {
	if apiKey == "" {
		return fmt.Errorf("%s API key is required", keyType)
	}

	switch keyType {
	case "OpenAI":
		if !strings.HasPrefix(apiKey, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format: must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return fmt.Errorf("invalid OpenAI API key format: too short")
		}
	case "Gemini":
		if !strings.HasPrefix(apiKey, "AIza") {
			return fmt.Errorf("invalid Gemini API key format: must start with 'AIza'")
		}
		if len(apiKey) < 30 {
			return fmt.Errorf("invalid Gemini API key format: too short")
		}
	}

	return nil
}
