package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"traveldesk-service/internal/infrastructure/config"
	"traveldesk-service/internal/infrastructure/oauth"
	"traveldesk-service/internal/infrastructure/persistence"
	"traveldesk-service/internal/infrastructure/router"
	"traveldesk-service/internal/interface/cache"
	"traveldesk-service/internal/interface/completion"
	"traveldesk-service/internal/interface/events"
	"traveldesk-service/internal/interface/gmail"
	"traveldesk-service/internal/interface/repository"
	"traveldesk-service/internal/usecase"
	"traveldesk-service/pkg/logger"
	"traveldesk-service/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting traveldesk service", "version", cfg.AppVersion)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics("traveldesk")

	log.Info("Connecting to MongoDB")
	db, err := persistence.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}()

	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	if err := repository.MigrateReferenceData(gormDB); err != nil {
		log.Fatal("Reference data migration failed", "error", err)
	}
	if cfg.SeedRefData {
		if err := repository.SeedReferenceData(gormDB); err != nil {
			log.Fatal("Reference data seed failed", "error", err)
		}
	}

	airlineRepo := repository.NewGormAirlineRepository(gormDB)
	airportRepo := repository.NewGormAirportRepository(gormDB)
	recordRepo := repository.NewMongoTravelRecordRepository(db)

	redisCache := cache.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ParseCacheTTL, log.Named("cache"))
	defer redisCache.Close()

	publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaRecordsTopic, log.Named("events"))
	defer publisher.Close()

	completionClient := completion.NewOpenAIClient(completion.Options{
		APIKey:      cfg.CompletionAPIKey,
		BaseURL:     cfg.CompletionBaseURL,
		Model:       cfg.CompletionModel,
		Timeout:     cfg.CompletionTimeout,
		MaxTokens:   cfg.CompletionMaxTokens,
		Temperature: cfg.CompletionTemperature,
		RPS:         cfg.CompletionRPS,
	}, log.Named("completion"))

	// The notifier is built once here and injected; nothing queries
	// channel availability at call sites.
	notifier := repository.NewInAppNotifier(log.Named("notify"))
	if cfg.WhatsAppEndpoint != "" {
		notifier = repository.NewWhatsAppNotifier(cfg.WhatsAppEndpoint, cfg.WhatsAppToken, notifier, log.Named("notify"))
	}

	scheduler := usecase.NewReminderScheduler(
		recordRepo, notifier, redisCache, publisher, m,
		log.Named("scheduler"), cfg.RearmScanInterval, cfg.RearmHorizon)

	itinerarySvc := usecase.NewItineraryService(
		completionClient, airlineRepo, airportRepo, redisCache, m, log.Named("itinerary"))
	recordSvc := usecase.NewRecordService(
		recordRepo, airportRepo, scheduler, publisher, m, log.Named("records"))

	pingers := map[string]router.Pinger{
		"mongodb": func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
		"postgres": func(ctx context.Context) error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	handlers := router.NewHandlers(itinerarySvc, recordSvc, pingers, scheduler.ArmedCount, cfg.AppVersion, log.Named("http"))
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(handlers, router.Options{JWTSecret: []byte(cfg.JWTSecret), CORSOrigins: cfg.CORSOrigins}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		scheduler.Run(ctx)
		return nil
	})

	if cfg.IntakeEnabled {
		gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, log.Named("oauth"))
		intake, err := gmail.NewIntakeService(
			ctx, gmailOAuth.TokenSource(ctx), itinerarySvc, recordSvc,
			log.Named("intake"), cfg.GmailPollInterval, cfg.IntakeUserID)
		if err != nil {
			log.Fatal("Failed to create mailbox intake", "error", err)
		}
		g.Go(func() error {
			intake.Run(ctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("Service exited with error", "error", err)
	}
	log.Info("Traveldesk service stopped")
}
