package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"claude-chat/internal/anthropic"
	"claude-chat/internal/api"
	"claude-chat/internal/api/handler"
	"claude-chat/internal/assistant"
	"claude-chat/internal/config"
	"claude-chat/internal/domain"
	"claude-chat/internal/repository/postgres"
	"claude-chat/internal/repository/redis"
	"claude-chat/internal/repository/sqlite"
	"claude-chat/internal/security"
	"claude-chat/internal/session"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.Server.Debug || cfg.Logging.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Database.Driver).
		Msg("Starting Claude Code Chat server")

	// Initialize storage
	users, conversations, pinger, closeDB, err := openDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer closeDB()

	// Sessions live in process memory only: a restart logs everyone out.
	encryptor, err := security.NewEncryptorFromSecret(cfg.Auth.SecretKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session encryptor")
	}
	sessions := session.NewStore(cfg.Auth.SessionDuration, encryptor)
	defer sessions.Clear()

	// Optional Redis for rate limiting
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
	}

	// Initialize router
	router := api.NewRouter(api.Deps{
		Config:        cfg,
		Users:         users,
		Conversations: conversations,
		DB:            pinger,
		Sessions:      sessions,
		Gateway:       assistant.NewCLIGateway(cfg.Assistant),
		Verifier:      anthropic.NewClient(),
		Redis:         redisClient,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// openDatabase wires the repositories for the configured driver.
func openDatabase(cfg *config.Config) (domain.UserRepository, domain.ConversationRepository, handler.Pinger, func(), error) {
	ctx := context.Background()

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return postgres.NewUserRepository(db),
			postgres.NewConversationRepository(db),
			db,
			db.Close,
			nil
	case "sqlite", "":
		db, err := sqlite.NewDB(ctx, cfg.Database.Path)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return sqlite.NewUserRepository(db),
			sqlite.NewConversationRepository(db),
			db,
			func() { db.Close() },
			nil
	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown database driver: %q", cfg.Database.Driver)
	}
}
