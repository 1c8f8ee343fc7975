package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-nft-ticketing/internal/auth"
	"ms-nft-ticketing/internal/chainquery"
	chainquery_api "ms-nft-ticketing/internal/chainquery/api"
	"ms-nft-ticketing/internal/config"
	"ms-nft-ticketing/internal/database/migrations"
	"ms-nft-ticketing/internal/events"
	events_api "ms-nft-ticketing/internal/events/api"
	events_db "ms-nft-ticketing/internal/events/db"
	"ms-nft-ticketing/internal/issuer"
	"ms-nft-ticketing/internal/kafka"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/mint"
	mint_api "ms-nft-ticketing/internal/mint/api"
	"ms-nft-ticketing/internal/mint/chain"
	mint_db "ms-nft-ticketing/internal/mint/db"
	"ms-nft-ticketing/internal/mint/pass"
	rediswrap "ms-nft-ticketing/internal/mint/redis"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}

	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))
	return bunDB, redisClient
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting NFT Ticketing Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()

	client := &http.Client{
		Timeout: time.Second * 10,
	}
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	migrationOpts := migrations.DefaultOptions()
	if migrationOpts.AutoMigrate {
		logger.Info("DATABASE", "Running database migrations")
		runner := migrations.NewRunner(bunDB, migrationOpts)
		if err := runner.RunMigrations(); err != nil {
			logger.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
		}
		logger.Info("DATABASE", "✅ Database migrations applied")
	}

	var kafkaProducer *kafka.Producer
	if cfg.Kafka.Enabled {
		kafkaProducer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		logger.Info("KAFKA", "Kafka producer initialized successfully")

		requiredTopics := []string{
			cfg.Kafka.Topics.TicketMinted,
			cfg.Kafka.Topics.EventCreated,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
		defer kafkaProducer.Close()
	} else {
		logger.Warn("KAFKA", "Kafka disabled, mint and event notifications will not be streamed")
	}

	issuerClient := issuer.NewClient(cfg.Issuer, client, issuer.NewRedisTokenStore(redisClient), logger)

	aggregator := chainquery.NewAggregator(chainquery.NewResolver(cfg.Chain), client, logger)
	chainHandler := chainquery_api.NewHandler(aggregator, logger)

	var mintPublisher mint.Publisher
	var eventPublisher events.Publisher
	if kafkaProducer != nil {
		mintPublisher = kafkaProducer
		eventPublisher = kafkaProducer
	}

	mintService := mint.NewMintService(
		&mint_db.DB{Bun: bunDB},
		rediswrap.NewRedis(redisClient, cfg.Mint.LockTTL),
		chain.NewProvider(cfg.Mint.ProviderURL, client, logger),
		mintPublisher,
		pass.NewGenerator(),
		logger,
		cfg.Mint.TreasuryAddress,
		cfg.Mint.Value,
	)
	mintHandler := mint_api.NewHandler(mintService, logger)

	eventService := events.NewEventService(&events_db.DB{Bun: bunDB}, issuerClient, eventPublisher, logger)
	eventHandler := events_api.NewHandler(eventService, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Public Routes ---
	r.Get("/chain/query", chainHandler.QueryChainData)
	logger.Info("ROUTER", "Chain query endpoint registered at /chain/query")

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		logger.Info("AUTH", "JWT middleware applied to protected API routes")

		r.Route("/user/event", func(r chi.Router) {
			r.Get("/", eventHandler.GetEvents)
			r.Post("/", eventHandler.CreateEvent)
			r.Post("/mint", mintHandler.MintTicket)
			r.Get("/{eventId}", eventHandler.GetEvent)
		})
		logger.Info("ROUTER", "Event and mint routes registered under /user/event")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 NFT Ticketing Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ NFT Ticketing Service shutdown complete")
	}
}
