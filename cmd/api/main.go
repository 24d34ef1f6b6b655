package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wellspring/internal/auth"
	"wellspring/internal/calendar"
	"wellspring/internal/cart"
	"wellspring/internal/config"
	"wellspring/internal/database"
	"wellspring/internal/events"
	"wellspring/internal/handler"
	"wellspring/internal/media"
	"wellspring/internal/payment"
	"wellspring/internal/repository"
	"wellspring/internal/router"
	"wellspring/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting wellspring API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(pool, logger)
	contentRepo := repository.NewContentRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	webhookRepo := repository.NewWebhookEventRepository(pool, logger)
	profileRepo := repository.NewProfileRepository(pool, logger)

	// Cart storage: Redis when available, process memory otherwise
	redisClient := newRedisClient(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	var cartStore cart.Store
	if redisClient != nil {
		cartStore = cart.NewRedisStore(redisClient, cfg.Cart.TTL, logger)
	} else {
		cartStore = cart.NewMemoryStore()
		logger.Info().Msg("using in-memory cart store (Redis disabled)")
	}
	cartService := cart.NewService(cartStore, cart.NewHub(), logger)

	// Booking calendar
	var cal calendar.Client = calendar.NopClient{}
	if cfg.Calendar.Enabled {
		googleClient, err := calendar.NewGoogleClient(ctx, calendar.GoogleConfig{
			CalendarID:      cfg.Calendar.CalendarID,
			CredentialsFile: cfg.Calendar.CredentialsFile,
			CredentialsJSON: cfg.Calendar.CredentialsJSON,
			TimeZone:        cfg.Calendar.TimeZone,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise calendar client, bookings will not be synced")
		} else {
			cal = googleClient
		}
	}

	// Media storage with S3 and local fallback
	localStorage := media.NewLocalStorage(cfg.Media.LocalDir, cfg.Media.PublicBaseURL, logger)
	var remoteStorage media.Storage
	s3Enabled := cfg.S3.Enabled
	if s3Enabled {
		remoteStorage, err = media.NewS3Storage(ctx, media.S3Config{
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 storage, falling back to local file system only")
			s3Enabled = false
		}
	} else {
		logger.Info().Msg("using local file system for media (S3 disabled)")
	}
	storage := media.NewFallbackStorage(remoteStorage, localStorage, cfg.S3.Prefix, s3Enabled, logger)

	// Domain events
	publisher, err := newPublisher(cfg.Broker, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer publisher.Close()

	bookings := events.NewBookingHandler(cal, cfg.Calendar.Location(), logger)
	stopConsumer := startConsumer(ctx, cfg.Broker, bookings, logger)
	defer func() {
		cancel()
		stopConsumer()
	}()

	// Initialize services
	catalogService := service.NewCatalogService(catalogRepo, logger)
	contentService := service.NewContentService(contentRepo, cfg.Content.DefaultLanguage, cfg.Content.SupportedLanguages, logger)
	checkoutService := service.NewCheckoutService(
		catalogService,
		orderRepo,
		payment.NewStripeGateway(cfg.Stripe.SecretKey, logger),
		service.CheckoutConfig{
			Currency:   cfg.Stripe.Currency,
			SuccessURL: cfg.Stripe.SuccessURL,
			CancelURL:  cfg.Stripe.CancelURL,
		},
		logger,
	)
	webhookService := service.NewWebhookService(
		payment.NewStripeVerifier(cfg.Stripe.WebhookSecret),
		orderRepo,
		webhookRepo,
		publisher,
		logger,
	)
	bookingService := service.NewBookingService(catalogRepo, cal, service.OpeningHours{
		Opens:    cfg.Calendar.OpenTime,
		Closes:   cfg.Calendar.CloseTime,
		Step:     time.Duration(cfg.Calendar.SlotStepMinutes) * time.Minute,
		Location: cfg.Calendar.Location(),
	}, logger)
	adminContentService := service.NewAdminContentService(contentRepo, storage, cfg.Content.SupportedLanguages, logger)
	orderService := service.NewOrderService(orderRepo, logger)
	profileService := service.NewProfileService(profileRepo, logger)

	// Initialize router
	handlers := router.Handlers{
		Page:     handler.NewPageHandler(contentService, logger),
		Catalog:  handler.NewCatalogHandler(catalogService, bookingService, logger),
		Cart:     handler.NewCartHandler(cartService, catalogService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, cartService, logger),
		Webhook:  handler.NewWebhookHandler(webhookService, logger),
		Profile:  handler.NewProfileHandler(profileService, logger),
		Admin:    handler.NewAdminHandler(adminContentService, orderService, cfg.Media.MaxUploadMB, logger),
	}
	opts := router.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		Verifier:         auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience, cfg.Auth.Issuer),
		Admins:           profileService,
		CartCookieName:   cfg.Cart.CookieName,
		CartCookieSecure: cfg.Cart.CookieSecure,
		CartTTL:          cfg.Cart.TTL,
		MediaDir:         cfg.Media.LocalDir,
	}
	if cfg.RateLimit.Enabled {
		if redisClient == nil {
			logger.Warn().Msg("rate limiting requires Redis, continuing without it")
		} else {
			opts.RateLimitClient = redisClient
			opts.RateLimit = cfg.RateLimit.Requests
			opts.RateLimitWindow = cfg.RateLimit.Window
		}
	}
	mux := router.New(handlers, opts, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop background consumers before draining HTTP
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newRedisClient connects to Redis when enabled. A failed ping disables it.
func newRedisClient(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unreachable, falling back to process memory")
		_ = client.Close()
		return nil
	}
	return client
}

func newPublisher(cfg config.BrokerConfig, logger zerolog.Logger) (events.Publisher, error) {
	switch cfg.Driver {
	case "amqp":
		return events.NewAMQPPublisher(cfg.AMQPURL, cfg.Topic, logger)
	case "kafka":
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.Topic, logger), nil
	default:
		logger.Info().Msg("no broker configured, domain events are dropped")
		return events.NopPublisher{}, nil
	}
}

// startConsumer runs the booking consumer for the configured broker and
// returns a function that waits for it to stop.
func startConsumer(ctx context.Context, cfg config.BrokerConfig, h events.Handler, logger zerolog.Logger) func() {
	done := make(chan struct{})

	switch cfg.Driver {
	case "amqp":
		go func() {
			defer close(done)
			events.RunAMQPConsumer(ctx, cfg.AMQPURL, cfg.Topic, h, logger)
		}()
	case "kafka":
		consumer := events.NewKafkaConsumer(cfg.KafkaBrokers, cfg.Topic, cfg.ConsumerGroup, h, logger)
		go func() {
			defer close(done)
			consumer.Run(ctx)
			if err := consumer.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close kafka consumer")
			}
		}()
	default:
		close(done)
	}

	return func() { <-done }
}
