package app

import (
	"context"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"podbrief/internal/api/server"
	"podbrief/internal/api/v1/handlers"
	v1routes "podbrief/internal/api/v1/routes"
	"podbrief/internal/api/v1/services"
	"podbrief/internal/app/account"
	"podbrief/internal/app/api/provider"
	"podbrief/internal/app/auth"
	"podbrief/internal/app/billing"
	"podbrief/internal/app/events"
	"podbrief/internal/app/ingest"
	"podbrief/internal/app/ledger"
	"podbrief/internal/app/metrics"
	"podbrief/internal/app/notify"
	"podbrief/internal/app/pipeline"
	"podbrief/internal/app/ratelimit"
	"podbrief/internal/app/repository"
	"podbrief/internal/app/retention"
	"podbrief/internal/app/storage/blob"
	"podbrief/internal/app/summary"
	"podbrief/internal/config"
	"podbrief/internal/downloader"
)

// App is the fully wired application. The serve command runs Server and the
// background loops; one-shot commands use the pieces they need.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      *repository.Store
	Server     *server.Server
	Dispatcher *pipeline.Dispatcher
	Processor  *pipeline.Processor
	Sweeper    *pipeline.Sweeper
	Janitor    *retention.Janitor
	Billing    *billing.Consumer
	Tokens     *auth.TokenManager
}

// CoreSet builds the storage, ledger and pipeline layers.
var CoreSet = wire.NewSet(
	provideStore,
	provideBlobStore,
	provideLimiter,
	providePricing,
	provideLedger,
	metrics.New,
	events.NewHub,
	provideNotifier,
	provideTranscriber,
	provideSummaryGenerator,
	provideDispatcher,
	provideProcessor,
	provideSweeper,
)

// APISet builds the HTTP surface on top of CoreSet.
var APISet = wire.NewSet(
	provideTokens,
	provideIngest,
	provideBilling,
	provideJanitor,
	provideAccount,
	provideServiceContainer,
	provideServer,
)

func provideStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	return repository.OpenStore(ctx, cfg.Database)
}

func provideBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	return blob.New(ctx, cfg.Storage, cfg.Ingest.StagingDir)
}

// provideLimiter uses Redis when REDIS_ADDR is set so limits hold across
// instances, and an in-process window otherwise.
func provideLimiter(cfg *config.Config, logger *zap.Logger) (ratelimit.Limiter, func()) {
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("using redis rate limiter", zap.String("addr", cfg.Redis.Addr))
		return ratelimit.NewRedisLimiter(client, cfg.Ingest.RateLimit, cfg.Ingest.RateWindow), func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", zap.Error(err))
			}
		}
	}
	limiter := ratelimit.NewMemoryLimiter(cfg.Ingest.RateLimit, cfg.Ingest.RateWindow)
	return limiter, limiter.Stop
}

func providePricing(cfg *config.Config) (ledger.Pricing, error) {
	rate, err := cfg.Credits.Rate()
	if err != nil {
		return ledger.Pricing{}, err
	}
	return ledger.NewPricing(rate), nil
}

func provideLedger(store *repository.Store, logger *zap.Logger) *ledger.Ledger {
	return ledger.New(store, logger)
}

func provideNotifier(cfg *config.Config, logger *zap.Logger) notify.Notifier {
	return notify.NewLogNotifier(logger, cfg.Payments.PurchaseURL)
}

func provideTranscriber(cfg *config.Config) (provider.Transcriber, error) {
	return provider.NewTranscriber(cfg.Engines.Transcriber, cfg.Engines)
}

// provideSummaryGenerator returns a nil generator when summaries are disabled.
func provideSummaryGenerator(store *repository.Store, cfg *config.Config, logger *zap.Logger) (pipeline.SummaryGenerator, error) {
	summarizer, err := provider.NewSummarizer(cfg.Engines)
	if err != nil {
		return nil, err
	}
	if summarizer == nil {
		logger.Info("summaries disabled")
		return nil, nil
	}
	return summary.NewGenerator(store, summarizer, cfg.Engines.SummaryMaxInputChars, logger), nil
}

func provideDispatcher(cfg *config.Config, logger *zap.Logger) (*pipeline.Dispatcher, func()) {
	d := pipeline.NewDispatcher(cfg.Pipeline.WorkerConcurrency, logger)
	return d, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := d.Shutdown(ctx); err != nil {
			logger.Warn("dispatcher did not drain", zap.Error(err))
		}
	}
}

func provideProcessor(
	cfg *config.Config,
	store *repository.Store,
	credits *ledger.Ledger,
	blobs blob.Store,
	transcriber provider.Transcriber,
	pricing ledger.Pricing,
	summaries pipeline.SummaryGenerator,
	notifier notify.Notifier,
	hub *events.Hub,
	dispatcher *pipeline.Dispatcher,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*pipeline.Processor, error) {
	threshold, err := cfg.Credits.Threshold()
	if err != nil {
		return nil, err
	}
	return pipeline.NewProcessor(store, credits, blobs, transcriber, pricing, summaries, notifier, hub, dispatcher, m,
		pipeline.Options{
			StallThreshold:      cfg.Pipeline.StallThreshold,
			LowBalanceThreshold: threshold,
		}, logger), nil
}

func provideSweeper(cfg *config.Config, processor *pipeline.Processor, logger *zap.Logger) *pipeline.Sweeper {
	return pipeline.NewSweeper(processor, cfg.Pipeline.SweepBatchSize, logger)
}

// provideTokens never fails: one-shot commands run without a JWT secret, and
// a manager without one rejects every token.
func provideTokens(cfg *config.Config) *auth.TokenManager {
	return auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
}

func provideIngest(
	cfg *config.Config,
	store *repository.Store,
	blobs blob.Store,
	limiter ratelimit.Limiter,
	credits *ledger.Ledger,
	pricing ledger.Pricing,
	processor *pipeline.Processor,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ingest.Service {
	admission := ingest.NewAdmission(limiter, credits, pricing, logger)
	chunks := ingest.NewChunkStore(cfg.Ingest.StagingDir)
	resolver := downloader.NewResolver(&http.Client{Timeout: 10 * time.Minute})
	return ingest.NewService(store, blobs, admission, chunks, resolver, processor, m, cfg.Ingest, logger)
}

func provideBilling(cfg *config.Config, store *repository.Store, credits *ledger.Ledger, m *metrics.Metrics, logger *zap.Logger) *billing.Consumer {
	gateway := billing.NewStripeGateway(cfg.Payments.StripeSecretKey)
	return billing.NewConsumer(store, credits, gateway, cfg.Payments.StripeWebhookSecret, m, logger)
}

func provideJanitor(cfg *config.Config, store *repository.Store, blobs blob.Store, uploads *ingest.Service, logger *zap.Logger) *retention.Janitor {
	return retention.NewJanitor(store, blobs, uploads, cfg.App.RetentionDays, logger)
}

func provideAccount(store *repository.Store, blobs blob.Store, logger *zap.Logger) *account.Service {
	return account.NewService(store, blobs, logger)
}

func provideServiceContainer(
	cfg *config.Config,
	store *repository.Store,
	credits *ledger.Ledger,
	pricing ledger.Pricing,
	uploads *ingest.Service,
	processor *pipeline.Processor,
	sweeper *pipeline.Sweeper,
	consumer *billing.Consumer,
	accounts *account.Service,
	hub *events.Hub,
	logger *zap.Logger,
) (*v1routes.ServiceContainer, error) {
	threshold, err := cfg.Credits.Threshold()
	if err != nil {
		return nil, err
	}
	return &v1routes.ServiceContainer{
		UploadService:  uploads,
		JobService:     services.NewJobService(store, processor),
		ShareService:   services.NewShareService(store),
		CreditService:  services.NewCreditService(credits, store, pricing, threshold, cfg.Payments.PurchaseURL),
		BillingService: consumer,
		AccountService: accounts,
		SweepService:   sweeper,
		EventHandler:   handlers.NewEventHandler(hub, cfg.HTTP.AllowedOrigins, logger),
	}, nil
}

func provideServer(
	cfg *config.Config,
	container *v1routes.ServiceContainer,
	tokens *auth.TokenManager,
	store *repository.Store,
	m *metrics.Metrics,
	logger *zap.Logger,
) *server.Server {
	return server.NewServer(cfg.HTTP, cfg.App, server.Deps{
		Services: container,
		Tokens:   tokens,
		Users:    store,
		DB:       store,
		Metrics:  m,
	}, logger)
}
