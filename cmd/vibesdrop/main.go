package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/VibesDrop/app/controllers"
	"github.com/ManuelReschke/VibesDrop/app/models"
	"github.com/ManuelReschke/VibesDrop/app/repository"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/config"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/env"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/farcaster"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/frame"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/kv"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/metrics"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/neynar"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/ogimage"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/router"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/s3export"
	"github.com/ManuelReschke/VibesDrop/views"
)

const shutdownTimeout = 10 * time.Second

func main() {
	env.SetupEnvFile()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[Main] Invalid configuration: %v", err)
	}

	ctx := context.Background()
	store, err := kv.Open(ctx, redisOptions(cfg))
	if err != nil {
		log.Fatalf("[Main] Could not connect to Redis: %v", err)
	}

	app := NewApplication(ctx, cfg, store)

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Fatalf("[Main] Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("[Main] Shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Errorf("[Main] Shutdown error: %v", err)
	}
	if err := store.Close(); err != nil {
		log.Errorf("[Main] Error closing Redis: %v", err)
	}
}

// NewApplication wires every component onto a fresh fiber app.
func NewApplication(ctx context.Context, cfg *config.Config, store *kv.Store) *fiber.App {
	neynarClient := neynar.NewClient(neynar.Config{
		APIKey:             cfg.NeynarAPIKey,
		BaseURL:            cfg.NeynarAPIURL,
		Channel:            cfg.NeynarChannel,
		EventURL:           cfg.NeynarEventURL,
		RatePerSec:         cfg.NeynarRateLimit,
		Timeout:            cfg.HTTPTimeout,
		MembershipFallback: cfg.NeynarMembershipFallback,
	})
	if cfg.NeynarMembershipFallback {
		log.Warn("[Main] NEYNAR_MEMBERSHIP_FALLBACK is on: membership is guessed from fid parity when Neynar is down")
	}

	repos := repository.NewRepositories(store,
		repository.WithRecordedHook(func(_ context.Context, o models.OptIn) {
			neynarClient.NotifyOptInEventAsync(o)
		}),
	)

	renderer := ogimage.NewRenderer(cfg.NeynarChannel)
	if err := renderer.Warm(); err != nil {
		log.Errorf("[Main] Could not pre-render frame images: %v", err)
	}

	builder := frame.NewBuilder(cfg.PublicBaseURL, cfg.NeynarChannel)
	hubClient := farcaster.NewHubClient(cfg.HubURL, cfg.HTTPTimeout)
	hubClient.FrameURL = cfg.PublicBaseURL
	screenViews := counter.New(store)

	adminCfg := controllers.AdminConfig{
		Repos:       repos,
		Profiles:    neynarClient,
		ScreenViews: screenViews,
		Channel:     cfg.NeynarChannel,
		Concurrency: cfg.ProfileLookupConcurrency,
	}
	if uploader := setupS3Export(ctx); uploader != nil {
		adminCfg.Uploader = uploader
	}

	app := fiber.New(fiber.Config{
		AppName:   "VibesDrop",
		Views:     views.NewEngine(),
		BodyLimit: 1 << 20,
		// route table on startup in dev only
		EnablePrintRoutes: cfg.IsDev(),
	})

	// recovery and logging
	app.Use(recover.New(), logger.New(), metrics.Instrument())

	// rate limit counters are shared by every instance behind the same redis
	var limiterStorage fiber.Storage
	if storage, err := newLimiterStorage(redisOptions(cfg)); err != nil {
		log.Errorf("[Main] Rate limiter falls back to in-memory counters: %v", err)
	} else {
		limiterStorage = storage
		app.Hooks().OnShutdown(storage.Close)
	}

	router.InstallRouter(app, &router.Dependencies{
		Config:         cfg,
		Frame:          controllers.NewFrameController(hubClient, neynarClient, repos.OptIn, builder, screenViews),
		Webhook:        controllers.NewWebhookController(repos.Webhook),
		Health:         controllers.NewHealthController(store, cfg.HubURL, cfg.PublicBaseURL),
		OG:             controllers.NewOGController(renderer),
		Main:           controllers.NewMainController(builder, cfg.NeynarChannel),
		Admin:          controllers.NewAdminController(adminCfg),
		LimiterStorage: limiterStorage,
		DocsFile:       findDocsFile(),
	})

	log.Infof("[Main] Serving frame for /%s at %s", cfg.NeynarChannel, cfg.PublicBaseURL)
	return app
}

func redisOptions(cfg *config.Config) kv.Options {
	return kv.Options{URL: cfg.RedisURL, TLSInsecure: cfg.RedisTLSInsecure}
}

// newLimiterStorage connects the rate limiter to the ledger's redis with the
// same address, credentials and TLS settings. The driver panics when its
// first ping fails; that is returned as an error.
func newLimiterStorage(opts kv.Options) (storage *redisstorage.Storage, err error) {
	storageCfg, err := limiterStorageConfig(opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			storage, err = nil, fmt.Errorf("limiter storage: %v", r)
		}
	}()
	return redisstorage.New(storageCfg), nil
}

func limiterStorageConfig(opts kv.Options) (redisstorage.Config, error) {
	redisOpts, err := opts.RedisOptions()
	if err != nil {
		return redisstorage.Config{}, err
	}
	host, portStr, err := net.SplitHostPort(redisOpts.Addr)
	if err != nil {
		return redisstorage.Config{}, fmt.Errorf("invalid redis address %q: %w", redisOpts.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return redisstorage.Config{}, fmt.Errorf("invalid redis port %q: %w", portStr, err)
	}
	return redisstorage.Config{
		Host:      host,
		Port:      port,
		Username:  redisOpts.Username,
		Password:  redisOpts.Password,
		Database:  redisOpts.DB,
		TLSConfig: redisOpts.TLSConfig,
	}, nil
}

func setupS3Export(ctx context.Context) *s3export.Client {
	s3Cfg, err := s3export.LoadConfig()
	if err != nil {
		log.Errorf("[Main] S3 export disabled: %v", err)
		return nil
	}
	if !s3Cfg.IsEnabled() {
		return nil
	}
	client, err := s3export.NewClient(ctx, s3Cfg)
	if err != nil {
		log.Errorf("[Main] S3 export disabled: %v", err)
		return nil
	}
	return client
}

func findDocsFile() string {
	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/vibesdrop to project root
		"../../../", // Fallback
	}
	for _, path := range basePaths {
		candidate := path + "public/docs/v1/openapi.yml"
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
