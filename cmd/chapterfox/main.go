package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuelReschke/ChapterFox/app/controllers"
	"github.com/ManuelReschke/ChapterFox/app/repository"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/billing"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/cache"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/chapters"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/config"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/constants"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/dashboard"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/database"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/env"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/generation"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/logger"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/metrics"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/quota"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/router"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/transcriptcache"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/youtube"
)

func main() {
	env.SetupEnvFile()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("dev", "info")
		boot.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)

	app, err := NewApplication(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}

	log.Info().Str("addr", cfg.Addr()).Msg("Starting ChapterFox")
	if err := app.Listen(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// NewApplication wires every service and returns the Fiber app.
func NewApplication(cfg *config.Settings, log zerolog.Logger) (*fiber.App, error) {
	if err := database.SetupDatabase(); err != nil {
		return nil, err
	}
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()
	m := metrics.Get()

	dashCache := dashboard.NewCache(cache.GetClient(), dashboard.DefaultTTL, logger.For(log, "DashboardCache"))

	var provider billing.Provider
	if cfg.StripeEnabled() {
		provider = billing.NewStripeProvider(cfg.StripeSecretKey, log)
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, every user is on the free plan")
	}
	billingService := billing.NewServiceFromDB(database.GetDB(), repos.User, provider, dashCache, billing.Options{
		PriceID:       cfg.StripePriceID,
		PublicDomain:  cfg.PublicDomain,
		WebhookSecret: cfg.StripeWebhookSecret,
	}, log)

	engine := quota.NewEngine(repos.User, billingService, repos.ChapterSet, entitlements.Limits{
		Free:    cfg.Quota.FreeLimit,
		Premium: cfg.Quota.SubscribedLimit,
	}, log, quota.WithMetrics(m))

	yt := youtube.NewClient(youtube.Config{
		APIKey:        cfg.RapidAPIKey,
		Host:          cfg.RapidAPIHost,
		RatePerSecond: cfg.RapidAPIRateLimit,
		Timeout:       cfg.HTTPTimeout,
	}, log)

	var transcripts generation.TranscriptFetcher = yt
	cacheCfg, err := transcriptcache.FromSettings(cfg.TranscriptCache)
	if err != nil {
		return nil, err
	}
	if cacheCfg.IsEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := transcriptcache.NewStore(ctx, cacheCfg, log)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("Transcript cache unavailable, fetching transcripts directly")
		} else {
			transcripts = transcriptcache.NewCachedFetcher(yt, store)
		}
	}

	openai := chapters.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.HTTPTimeout)

	pipeline := generation.NewPipeline(generation.Deps{
		Users:       repos.User,
		Eligibility: engine,
		Videos:      yt,
		Transcripts: transcripts,
		Chapters:    chapters.NewSynthesizer(openai, log),
		Store:       repos.ChapterSet,
		Notifier:    dashCache,
		Metrics:     m,
	}, generation.Options{
		Policy:          generation.ParsePolicy(cfg.Quota.Policy),
		MaxVideoSeconds: cfg.Quota.MaxVideoSeconds,
	}, log)
	log.Info().Str("quota_policy", string(pipeline.Policy())).Int("max_video_seconds", cfg.Quota.MaxVideoSeconds).Msg("Generation pipeline ready")

	controllers.Initialize(controllers.Dependencies{
		Users:            repos.User,
		ChapterSets:      repos.ChapterSet,
		ProviderAccounts: repos.ProviderAccount,
		Pipeline:         pipeline,
		Eligibility:      engine,
		Dashboard:        dashboard.NewService(engine, repos.ChapterSet, dashCache, log),
		Billing:          billingService,
		Logger:           log,
	})

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName: "ChapterFox",
	})

	// recovery and logging
	app.Use(recover.New(), fiberlogger.New(fiberlogger.Config{Output: os.Stdout}))

	// metrics and monitor, only with credentials configured
	if cfg.MetricsPassword != "" {
		metricsAuth := basicauth.New(basicauth.Config{
			Users: map[string]string{
				cfg.MetricsUser: cfg.MetricsPassword,
			},
		})
		app.Get(constants.RouteMetrics, metricsAuth, adaptor.HTTPHandler(promhttp.Handler()))
		app.Get(constants.RouteMonitor, metricsAuth, monitor.New())
	}

	// SWAGGER / OPENAPI
	if _, err := os.Stat("./public/docs/v1/openapi.yml"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: "./public/docs/v1/openapi.yml",
			Path:     "v1",
		}))
	}

	// ROUTER
	router.InstallRouter(app, cfg)

	return app, nil
}
