package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/ai"
	"github.com/suPer8Hu/mindease/internal/chat"
	"github.com/suPer8Hu/mindease/internal/config"
	"github.com/suPer8Hu/mindease/internal/db"
	"github.com/suPer8Hu/mindease/internal/email"
	"github.com/suPer8Hu/mindease/internal/httpapi"
	"github.com/suPer8Hu/mindease/internal/httpapi/handlers"
	"github.com/suPer8Hu/mindease/internal/logger"
	"github.com/suPer8Hu/mindease/internal/notify"
	"github.com/suPer8Hu/mindease/internal/store/rabbitmq"
	"github.com/suPer8Hu/mindease/internal/store/redisstore"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.Must(cfg.LogLevel, cfg.LogFormat, "mindease-api")
	defer func() { _ = log.Sync() }()

	if strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	provider, err := newProvider(cfg)
	if err != nil {
		log.Fatal("ai provider", zap.Error(err))
	}

	contexts, closeContexts := newContextStore(cfg, log)
	defer closeContexts()

	sender, closeSender := newSender(cfg, log)
	defer closeSender()
	dispatcher := notify.NewDispatcher(cfg.AdminEmail, sender, log.Named("notify"))
	if !dispatcher.Enabled() {
		log.Warn("ADMIN_EMAIL not set, crisis notifications disabled")
	}

	r := httpapi.NewRouter(gdb, cfg, handlers.Deps{
		Provider:   provider,
		Contexts:   contexts,
		Dispatcher: dispatcher,
		Log:        log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("api listening", zap.String("addr", cfg.HTTPAddr), zap.String("ai_provider", cfg.AIProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	dispatcher.Wait()
}

func newProvider(cfg config.Config) (ai.Provider, error) {
	reg := ai.NewRegistry()
	reg.Register("ollama", func(_ context.Context, model string) (ai.Provider, error) {
		if model == "" {
			model = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, model), nil
	})
	reg.Register("groq", func(_ context.Context, model string) (ai.Provider, error) {
		if cfg.GroqAPIKey == "" {
			return nil, errors.New("GROQ_API_KEY is required")
		}
		if model == "" {
			model = cfg.GroqModel
		}
		return ai.NewGroqProvider(cfg.GroqBaseURL, cfg.GroqAPIKey, model), nil
	})
	reg.Register("openrouter", func(_ context.Context, model string) (ai.Provider, error) {
		if cfg.OpenRouterAPIKey == "" {
			return nil, errors.New("OPENROUTER_API_KEY is required")
		}
		if model == "" {
			model = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, model,
			cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})
	p, err := reg.Get(context.Background(), cfg.AIProvider, "")
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(reg.Names(), ", "))
	}
	return p, nil
}

func newContextStore(cfg config.Config, log *zap.Logger) (chat.ContextStore, func()) {
	if cfg.ChatContextStore == "redis" {
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rds.Ping(ctx); err != nil {
			log.Fatal("redis ping", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		return rds.ChatContexts(cfg.ChatContextTurns, cfg.ChatContextTTL), func() { _ = rds.Close() }
	}
	return chat.NewMemoryContextStore(cfg.ChatContextTurns, cfg.ChatContextTTL), func() {}
}

// newSender picks where alert emails go: straight to SMTP, or onto the
// queue for cmd/worker. Without either, alerts are dropped.
func newSender(cfg config.Config, log *zap.Logger) (notify.Sender, func()) {
	switch cfg.NotifyTransport {
	case "rabbit":
		pub, err := rabbitmq.NewAlertPublisher(cfg.RabbitURL, cfg.RabbitAlertQueue)
		if err != nil {
			log.Fatal("rabbit publisher", zap.Error(err))
		}
		return pub, func() { _ = pub.Close() }
	default:
		if !cfg.SMTPConfigured() {
			log.Warn("SMTP not configured, notifications will not be sent")
			return notify.NopSender{}, func() {}
		}
		return email.NewSender(email.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		}), func() {}
	}
}
