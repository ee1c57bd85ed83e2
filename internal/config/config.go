package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Engines  EnginesConfig  `yaml:"engines"`
	Auth     AuthConfig     `yaml:"auth"`
	Payments PaymentsConfig `yaml:"payments"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Credits  CreditsConfig  `yaml:"credits"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

type AppConfig struct {
	Env           string `yaml:"env"            env:"APP_ENV"        env-default:"development"`
	RetentionDays int    `yaml:"retention_days" env:"RETENTION_DAYS" env-default:"30"`
}

// IsDevelopment reports whether the development logger and gin debug mode should be used.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"             env:"HTTP_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"     env-default:"60s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"    env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	AllowedOrigins  []string      `yaml:"allowed_origins"  env:"CORS_ALLOWED_ORIGINS"  env-default:"*"`
	CronSecret      string        `yaml:"cron_secret"      env:"CRON_SECRET"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"         env:"DB_DRIVER"         env-default:"sqlite3"`
	DSN          string `yaml:"dsn"            env:"DB_DSN"            env-default:"./data/podbrief.db"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"20"`
}

type StorageConfig struct {
	Driver         string `yaml:"driver"           env:"STORAGE_DRIVER"   env-default:"minio"`
	MinioEndpoint  string `yaml:"minio_endpoint"   env:"MINIO_ENDPOINT"   env-default:"localhost:9000"`
	MinioAccessKey string `yaml:"minio_access_key" env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `yaml:"minio_secret_key" env:"MINIO_SECRET_KEY"`
	MinioBucket    string `yaml:"minio_bucket"     env:"MINIO_BUCKET"     env-default:"podbrief-audio"`
	MinioUseSSL    bool   `yaml:"minio_use_ssl"    env:"MINIO_USE_SSL"    env-default:"false"`
	SupabaseURL    string `yaml:"supabase_url"     env:"SUPABASE_URL"`
	SupabaseKey    string `yaml:"supabase_key"     env:"SUPABASE_KEY"`
	SupabaseBucket string `yaml:"supabase_bucket"  env:"SUPABASE_BUCKET"  env-default:"podbrief-audio"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB" env-default:"0"`
}

type EnginesConfig struct {
	Transcriber          string `yaml:"transcriber"             env:"TRANSCRIBER"             env-default:"openai"`
	WhisperServerURL     string `yaml:"whisper_server_url"      env:"WHISPER_SERVER_URL"`
	OpenAIAPIKey         string `yaml:"openai_api_key"          env:"OPENAI_API_KEY"`
	OpenAIBaseURL        string `yaml:"openai_base_url"         env:"OPENAI_BASE_URL"`
	WhisperModel         string `yaml:"whisper_model"           env:"WHISPER_MODEL"           env-default:"whisper-1"`
	SummaryProvider      string `yaml:"summary_provider"        env:"SUMMARY_PROVIDER"        env-default:"openai"`
	SummaryModel         string `yaml:"summary_model"           env:"SUMMARY_MODEL"`
	GeminiAPIKey         string `yaml:"gemini_api_key"          env:"GEMINI_API_KEY"`
	SummaryMaxInputChars int    `yaml:"summary_max_input_chars" env:"SUMMARY_MAX_INPUT_CHARS" env-default:"60000"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTIssuer string `yaml:"jwt_issuer" env:"JWT_ISSUER"`
}

type PaymentsConfig struct {
	StripeSecretKey     string `yaml:"stripe_secret_key"     env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	PurchaseURL         string `yaml:"purchase_url"          env:"PURCHASE_URL" env-default:"/billing"`
}

type IngestConfig struct {
	DirectMaxBytes  int64         `yaml:"direct_max_bytes"  env:"INGEST_DIRECT_MAX_BYTES"  env-default:"4194304"`
	ChunkSize       int64         `yaml:"chunk_size"        env:"INGEST_CHUNK_SIZE"        env-default:"3145728"`
	ChunkedMaxBytes int64         `yaml:"chunked_max_bytes" env:"INGEST_CHUNKED_MAX_BYTES" env-default:"524288000"`
	RemoteMaxBytes  int64         `yaml:"remote_max_bytes"  env:"INGEST_REMOTE_MAX_BYTES"  env-default:"209715200"`
	StagingDir      string        `yaml:"staging_dir"       env:"INGEST_STAGING_DIR"       env-default:"./data/staging"`
	StagingTTL      time.Duration `yaml:"staging_ttl"       env:"INGEST_STAGING_TTL"       env-default:"24h"`
	RateLimit       int           `yaml:"rate_limit"        env:"RATE_LIMIT_UPLOADS"       env-default:"10"`
	RateWindow      time.Duration `yaml:"rate_window"       env:"RATE_LIMIT_WINDOW"        env-default:"1h"`
}

type CreditsConfig struct {
	PerMinute           string `yaml:"per_minute"            env:"CREDITS_PER_MINUTE"    env-default:"1"`
	LowBalanceThreshold string `yaml:"low_balance_threshold" env:"LOW_BALANCE_THRESHOLD" env-default:"10"`
}

type PipelineConfig struct {
	WorkerConcurrency int           `yaml:"worker_concurrency" env:"WORKER_CONCURRENCY"    env-default:"4"`
	SweepInterval     time.Duration `yaml:"sweep_interval"     env:"SWEEP_INTERVAL"        env-default:"1m"`
	StallThreshold    time.Duration `yaml:"stall_threshold"    env:"SWEEP_STALL_THRESHOLD" env-default:"5m"`
	SweepBatchSize    int           `yaml:"sweep_batch_size"   env:"SWEEP_BATCH_SIZE"      env-default:"10"`
}
