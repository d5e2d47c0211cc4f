package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"m8translate/internal/langdetect"
	langHandler "m8translate/internal/langdetect/handler"
	langMetrics "m8translate/internal/langdetect/metrics"
	oauthHandler "m8translate/internal/oauth/handler"
	oauthService "m8translate/internal/oauth/service"
	"m8translate/internal/platform/config"
	"m8translate/internal/platform/httpserver"
	"m8translate/internal/platform/logger"
	"m8translate/internal/platform/metrics"
	"m8translate/internal/platform/redis"
	rlConfig "m8translate/internal/ratelimit/config"
	rlHandler "m8translate/internal/ratelimit/handler"
	rlMetrics "m8translate/internal/ratelimit/metrics"
	rlMiddleware "m8translate/internal/ratelimit/middleware"
	rlService "m8translate/internal/ratelimit/service"
	"m8translate/internal/secrets"
	"m8translate/internal/servicem8"
	sessionHandler "m8translate/internal/session/handler"
	sessionService "m8translate/internal/session/service"
	sessionStore "m8translate/internal/session/store"
	"m8translate/internal/session/token"
	settingsHandler "m8translate/internal/settings/handler"
	settingsService "m8translate/internal/settings/service"
	settingsStore "m8translate/internal/settings/store"
	translationHandler "m8translate/internal/translation/handler"
	translationMetrics "m8translate/internal/translation/metrics"
	"m8translate/internal/translation/provider"
	translationService "m8translate/internal/translation/service"
	httptransport "m8translate/internal/transport/http"
	"m8translate/pkg/platform/circuit"
)

// main wires dependencies and runs the HTTP server and the background
// sweepers until SIGINT or SIGTERM.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	redisClient, err := redis.New(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}

	var (
		sessions sessionService.Store
		settings settingsService.Store
		health   httptransport.HealthChecker
	)
	if redisClient != nil {
		defer redisClient.Close()
		if err := redisClient.RegisterPoolMetrics(reg); err != nil {
			return err
		}
		log.Info("using redis session and settings stores")
		sessions = sessionStore.NewRedis(redisClient.Client, reg)
		settings = settingsStore.NewRedis(redisClient.Client)
		health = redisClient
	} else {
		log.Info("redis not configured, using in-memory stores")
		sessions = sessionStore.NewInMemory()
		settings = settingsStore.NewInMemory()
	}

	detector, err := langdetect.New(
		langdetect.WithMinLength(cfg.Detection.MinLength),
		langdetect.WithScoreThreshold(cfg.Detection.ScoreThreshold),
		langdetect.WithMetrics(langMetrics.New(reg)),
		langdetect.WithLogger(log),
	)
	if err != nil {
		return err
	}

	limiter, err := rlService.New(
		rlService.WithConfig(rlConfig.FromPlatform(cfg.RateLimit)),
		rlService.WithLogger(log),
		rlService.WithMetrics(rlMetrics.New(reg)),
	)
	if err != nil {
		return err
	}

	signer, err := token.NewSigner(cfg.Session.SigningKey, cfg.Session.Issuer)
	if err != nil {
		return err
	}
	sessionSvc, err := sessionService.New(sessions, signer,
		sessionService.WithLogger(log),
		sessionService.WithTTL(cfg.Session.TTL),
	)
	if err != nil {
		return err
	}

	sealer, err := secrets.NewSealer(cfg.Security.EncryptionKey)
	if err != nil {
		return err
	}
	settingsSvc, err := settingsService.New(settings, sealer,
		settingsService.WithLogger(log),
		settingsService.WithKeyValidator(provider.NewKeyValidator(cfg.OpenAI)),
		settingsService.WithUsageReader(limiter),
	)
	if err != nil {
		return err
	}

	smClient, err := servicem8.New(cfg.ServiceM8,
		servicem8.WithLogger(log),
		servicem8.WithBreaker(circuit.New("servicem8")),
	)
	if err != nil {
		return err
	}

	translationOpts := []translationService.Option{
		translationService.WithLogger(log),
		translationService.WithMetrics(translationMetrics.New(reg)),
	}
	if cfg.Translation.VerifyTokens {
		translationOpts = append(translationOpts, translationService.WithVerifier(smClient))
	}
	translationSvc, err := translationService.New(limiter, sessionSvc, settingsSvc, detector,
		provider.NewRegistry(cfg.OpenAI,
			provider.WithStub(cfg.Translation.AllowStubProvider),
			provider.WithRegistryLogger(log),
		),
		translationOpts...,
	)
	if err != nil {
		return err
	}

	oauthSvc, err := oauthService.New(smClient, settingsSvc, signer, cfg.ServiceM8, cfg.Server.PublicURL,
		oauthService.WithLogger(log),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		CORS:           cfg.CORS,
		RequestTimeout: cfg.Server.WriteTimeout,
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
		Health:         health,
		RateLimit:      rlMiddleware.New(limiter, log, rlMiddleware.WithDisabled(cfg.RateLimit.Disabled)),
		Sessions:       sessionSvc,
		Detect:         langHandler.New(detector, log),
		Translate: translationHandler.New(translationSvc, log,
			translationHandler.WithMaxTextLength(cfg.Translation.MaxTextLength),
		),
		Session:  sessionHandler.New(sessionSvc, log),
		Settings: settingsHandler.New(settingsSvc, log),
		OAuth:    oauthHandler.New(oauthSvc, log),

		Admin:      rlHandler.New(limiter, log),
		AdminToken: cfg.Security.AdminToken,
	})
	srv := httpserver.New(cfg.Server, router, log)

	log.Info("starting m8translate", "addr", srv.Addr(), "environment", cfg.Server.Environment)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return limiter.RunSweeper(gctx, cfg.RateLimit.SweepInterval)
	})
	g.Go(func() error {
		return sessionSvc.RunSweeper(gctx, cfg.Session.SweepInterval)
	})

	return g.Wait()
}
