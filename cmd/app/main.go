package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"tutor-billing/internal/config"
	depositCreate "tutor-billing/internal/http-server/handlers/deposits/create"
	depositDelete "tutor-billing/internal/http-server/handlers/deposits/delete"
	depositGet "tutor-billing/internal/http-server/handlers/deposits/get"
	depositStatus "tutor-billing/internal/http-server/handlers/deposits/status"
	entityDelete "tutor-billing/internal/http-server/handlers/entities/delete"
	entityGet "tutor-billing/internal/http-server/handlers/entities/get"
	invoiceCreate "tutor-billing/internal/http-server/handlers/invoices/create"
	invoiceDelete "tutor-billing/internal/http-server/handlers/invoices/delete"
	invoiceGet "tutor-billing/internal/http-server/handlers/invoices/get"
	invoicePreview "tutor-billing/internal/http-server/handlers/invoices/preview"
	invoiceStatus "tutor-billing/internal/http-server/handlers/invoices/status"
	lessonCreate "tutor-billing/internal/http-server/handlers/lessons/create"
	lessonDelete "tutor-billing/internal/http-server/handlers/lessons/delete"
	lessonGet "tutor-billing/internal/http-server/handlers/lessons/get"
	lessonUpdate "tutor-billing/internal/http-server/handlers/lessons/update"
	parentCreate "tutor-billing/internal/http-server/handlers/parents/create"
	parentGet "tutor-billing/internal/http-server/handlers/parents/get"
	payoutDelete "tutor-billing/internal/http-server/handlers/payouts/delete"
	payoutGenerate "tutor-billing/internal/http-server/handlers/payouts/generate"
	payoutGet "tutor-billing/internal/http-server/handlers/payouts/get"
	payoutPenalty "tutor-billing/internal/http-server/handlers/payouts/penalty"
	payoutStatus "tutor-billing/internal/http-server/handlers/payouts/status"
	studentCreate "tutor-billing/internal/http-server/handlers/students/create"
	studentGet "tutor-billing/internal/http-server/handlers/students/get"
	tutorCreate "tutor-billing/internal/http-server/handlers/tutors/create"
	tutorEarnings "tutor-billing/internal/http-server/handlers/tutors/earnings"
	tutorGet "tutor-billing/internal/http-server/handlers/tutors/get"
	"tutor-billing/internal/idempotency"
	"tutor-billing/internal/notify"
	svc "tutor-billing/internal/service"
	"tutor-billing/internal/storage/memory"
	"tutor-billing/internal/storage/postgres"
	"tutor-billing/pkg/handlers/slogpretty"
	"tutor-billing/pkg/middleware/mwLogger"
	"tutor-billing/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// store is what main needs from a storage backend on top of the service contract.
type store interface {
	svc.Store
	Close() error
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := setupStorage(cfg, log)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	var keeper idempotency.Keeper = idempotency.Noop{}
	var redisKeeper *idempotency.RedisKeeper
	if cfg.Redis.Addr != "" {
		redisKeeper, err = idempotency.NewRedisKeeper(cfg.Redis.Addr, cfg.Redis.IdempotencyTTL)
		if err != nil {
			log.Error("Failed to init redis", sl.Err(err))
			os.Exit(1)
		}
		keeper = redisKeeper
	} else {
		log.Warn("Redis address is empty, Idempotency-Key headers are ignored")
	}

	var mailer notify.Mailer
	switch cfg.Mail.Provider {
	case config.MailSendGrid:
		mailer = notify.NewSendGridMailer(cfg.Mail.SendGridKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	default:
		mailer = notify.NewLogMailer(log)
	}

	service := svc.NewService(log, storage, keeper, mailer)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// People
	router.Post("/parents", parentCreate.New(log, service))
	router.Get("/parents", parentGet.New(log, service))
	router.Get("/parents/{id}", parentGet.New(log, service))
	router.Post("/students", studentCreate.New(log, service))
	router.Get("/students", studentGet.New(log, service))
	router.Get("/students/{id}", studentGet.New(log, service))
	router.Post("/tutors", tutorCreate.New(log, service))
	router.Get("/tutors", tutorGet.New(log, service))
	router.Get("/tutors/{id}", tutorGet.New(log, service))
	router.Get("/tutors/{id}/earnings", tutorEarnings.New(log, service))

	// Lessons
	router.Post("/lessons", lessonCreate.New(log, service))
	router.Get("/lessons", lessonGet.New(log, service))
	router.Get("/lessons/{id}", lessonGet.New(log, service))
	router.Put("/lessons/{id}", lessonUpdate.New(log, service))
	router.Delete("/lessons/{id}", lessonDelete.New(log, service))

	// Invoices
	router.Get("/invoices/preview", invoicePreview.New(log, service))
	router.Post("/invoices", invoiceCreate.New(log, service))
	router.Get("/invoices", invoiceGet.New(log, service))
	router.Get("/invoices/{id}", invoiceGet.New(log, service))
	router.Put("/invoices/{id}/status", invoiceStatus.New(log, service))
	router.Delete("/invoices/{id}", invoiceDelete.New(log, service))

	// Security deposits
	router.Post("/deposits", depositCreate.New(log, service))
	router.Get("/deposits", depositGet.New(log, service))
	router.Get("/deposits/{id}", depositGet.New(log, service))
	router.Put("/deposits/{id}/status", depositStatus.New(log, service))
	router.Delete("/deposits/{id}", depositDelete.New(log, service))

	// Payouts
	router.Post("/payouts/generate", payoutGenerate.New(log, service))
	router.Get("/payouts", payoutGet.New(log, service))
	router.Get("/payouts/{id}", payoutGet.New(log, service))
	router.Post("/payouts/{id}/penalty", payoutPenalty.New(log, service))
	router.Put("/payouts/{id}/status", payoutStatus.New(log, service))
	router.Delete("/payouts/{id}", payoutDelete.New(log, service))

	// Any document kind
	router.Get("/entities/{kind}/{id}", entityGet.New(log, service))
	router.Delete("/entities/{kind}/{id}", entityDelete.New(log, service))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if redisKeeper != nil {
		if err := redisKeeper.Close(); err != nil {
			log.Error("Failed to close redis", sl.Err(err))
		} else {
			log.Info("Redis closed")
		}
	}

	log.Info("Shutdown finished, server stopped")
}

func setupStorage(cfg *config.Config, log *slog.Logger) (store, error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		log.Warn("Using in-memory storage, data is lost on restart")
		return memory.New(), nil
	}

	storage, err := postgres.New(cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Migrate {
		if err := storage.Migrate(); err != nil {
			_ = storage.Close()
			return nil, err
		}
		log.Info("Migrations applied")
	}

	return storage, nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
