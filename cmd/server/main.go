package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aeroassist/backend/internal/ai"
	"github.com/aeroassist/backend/internal/chat"
	"github.com/aeroassist/backend/internal/config"
	"github.com/aeroassist/backend/internal/db"
	"github.com/aeroassist/backend/internal/events"
	"github.com/aeroassist/backend/internal/httpapi"
	"github.com/aeroassist/backend/internal/identity"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// A missing or unreachable database is not fatal: the server runs in
	// degraded mode and chat works without persisted history.
	var store *chat.Store
	if cfg.DBDSN == "" {
		log.Warn("DB_DSN not set, starting in degraded mode")
	} else if gdb, err := db.Connect(cfg.DBDSN); err != nil {
		log.Error("database connection failed, starting in degraded mode", zap.Error(err))
	} else {
		store = chat.NewStore(gdb)
		if err := store.Migrate(); err != nil {
			log.Fatal("migrate schema", zap.Error(err))
		}
		log.Info("database connected")
	}

	verifier := buildVerifier(cfg, log)
	provider := buildProvider(cfg, log)

	var pub events.Publisher = events.Noop{}
	var rabbit *events.RabbitPublisher
	if cfg.RabbitURL != "" {
		rabbit, err = events.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Warn("event queue unavailable, turn events disabled", zap.Error(err))
		} else {
			pub = rabbit
			defer rabbit.Close()
		}
	}

	sessions := chat.NewSessionManager(store, log)
	svc := chat.NewService(store, sessions, provider, pub, log)
	router := httpapi.NewRouter(svc, verifier, cfg, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Port), zap.Bool("degraded", store == nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

func buildVerifier(cfg config.Config, log *zap.Logger) identity.Verifier {
	var verifier identity.Verifier
	switch cfg.IdentityMode {
	case "jwt":
		if cfg.JWTSecret == "" {
			log.Warn("JWT_SECRET not set, all requests will be rejected")
		}
		verifier = identity.NewJWTVerifier(cfg.JWTSecret)
	default:
		if cfg.IdentityServiceURL == "" || cfg.IdentityServiceKey == "" {
			log.Warn("identity service not configured, all requests will be rejected")
		}
		verifier = identity.NewRemoteVerifier(cfg.IdentityServiceURL, cfg.IdentityServiceKey)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		verifier = identity.NewCachingVerifier(verifier, rdb, cfg.TokenCacheTTL)
		log.Info("identity token cache enabled", zap.Duration("ttl", cfg.TokenCacheTTL))
	}
	return verifier
}

func buildProvider(cfg config.Config, log *zap.Logger) ai.Provider {
	reg := ai.NewRegistry()
	reg.Register("openai", func() (ai.Provider, error) {
		return ai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	})
	reg.Register("openai-chat", func() (ai.Provider, error) {
		return ai.NewOpenAIChatProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	})

	provider, err := reg.Get(cfg.AIProvider)
	if err != nil {
		log.Fatal("select ai provider", zap.Error(err))
	}
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, chat requests will fail")
	}
	return provider
}
