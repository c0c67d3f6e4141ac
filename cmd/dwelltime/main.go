// Package main provides the dwelltime compliance reporting service.
//
// The service ingests yard activity, appointment, and order feeds, computes
// dwell-time and on-time compliance tables, and serves them over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jcferry08/dwelltime/internal/api"
	"github.com/jcferry08/dwelltime/internal/api/middleware"
	"github.com/jcferry08/dwelltime/internal/config"
	"github.com/jcferry08/dwelltime/internal/feeds"
	"github.com/jcferry08/dwelltime/internal/ingest"
	"github.com/jcferry08/dwelltime/internal/storage"
)

// Version information.
const (
	version = "1.0.0-dev"
	name    = "dwelltime"
)

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s\n", name, version)
		os.Exit(0)
	}

	serverConfig := api.LoadServerConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: serverConfig.LogLevel,
	}))

	logger.Info("Starting dwelltime service",
		slog.String("service", name),
		slog.String("version", version),
	)

	logger.Info("Loaded server configuration",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.Duration("read_timeout", serverConfig.ReadTimeout),
		slog.Duration("write_timeout", serverConfig.WriteTimeout),
		slog.Duration("shutdown_timeout", serverConfig.ShutdownTimeout),
		slog.String("log_level", serverConfig.LogLevel.String()),
	)

	middlewareConfig := middleware.LoadConfig()
	rateLimiter := middleware.NewInMemoryRateLimiter(middlewareConfig)

	logger.Info("Rate limiter initialized",
		slog.Int("requests_per_second", middlewareConfig.RequestsPerSecond),
		slog.Int("burst", middlewareConfig.Burst),
		slog.Int("max_clients", middlewareConfig.MaxClients),
	)

	aliases := feeds.LoadAliases(
		config.GetEnvStr("DWELLTIME_ALIAS_FILE", feeds.DefaultAliasFile), logger)
	if err := aliases.Validate(); err != nil {
		logger.Error("Invalid column alias configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	deps := api.Dependencies{
		RateLimiter: rateLimiter,
		Aliases:     aliases,
	}

	// Storage is optional: without a DATABASE_URL the service keeps runs in
	// memory, which is enough for single-node and development use.
	storageConfig := storage.LoadConfig()
	if err := storageConfig.Validate(); err == nil {
		conn, err := storage.Connect(context.Background(), storageConfig, logger)
		if err != nil {
			logger.Error("Failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}

		defer func() { _ = conn.Close() }()

		deps.RunStore = storage.NewPostgresRunStore(conn, logger)
		deps.Health = conn

		logger.Info("Run store initialized",
			slog.String("database_url", storageConfig.MaskDatabaseURL()),
			slog.Int("database_max_open_conns", storageConfig.MaxOpenConns),
			slog.Int("database_max_idle_conns", storageConfig.MaxIdleConns),
			slog.Duration("database_conn_max_lifetime", storageConfig.ConnMaxLifetime),
			slog.Duration("database_conn_max_idle_time", storageConfig.ConnMaxIdleTime),
		)
	} else {
		deps.RunStore = storage.NewInMemoryRunStore()

		logger.Warn("DATABASE_URL not set, compliance runs are held in memory",
			slog.String("note", "Runs are lost on restart. Set DATABASE_URL for persistence."),
		)
	}

	if config.GetEnvBool("DWELLTIME_AUTH_ENABLED", false) {
		keyStore := storage.NewInMemoryKeyStore()

		seeded := storage.SeedKeyStoreFromEnv(keyStore, logger)
		if seeded == 0 {
			logger.Error("Authentication enabled but no valid keys in DWELLTIME_API_KEYS")
			os.Exit(1)
		}

		deps.KeyStore = keyStore

		logger.Info("API key authentication enabled", slog.Int("keys", seeded))
	} else {
		logger.Warn("API key authentication disabled",
			slog.String("security", "Only use in trusted networks (localhost, VPN, internal)"),
			slog.String("note", "Set DWELLTIME_AUTH_ENABLED=true to enable API key authentication"),
		)
	}

	ingestConfig := ingest.LoadConfig()
	if ingestConfig.Enabled {
		if err := ingestConfig.Validate(); err != nil {
			logger.Error("Invalid ingest configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}

		buffer := ingest.NewBuffer(ingestConfig.BufferLimit)
		consumer := ingest.NewConsumer(ingestConfig, buffer, logger)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go consumer.Run(ctx)

		defer func() { _ = consumer.Close() }()

		deps.Activity = buffer

		logger.Info("Kafka activity ingest enabled",
			slog.Any("brokers", ingestConfig.Brokers),
			slog.String("topic", ingestConfig.Topic),
			slog.String("group_id", ingestConfig.GroupID),
			slog.Int("buffer_limit", ingestConfig.BufferLimit),
		)
	}

	server := api.NewServer(serverConfig, deps)

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.Info("dwelltime service stopped")
}
