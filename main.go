package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"f1league-app/internal/app"
	"f1league-app/internal/auth"
	"f1league-app/internal/config"
	"f1league-app/internal/league"
	"f1league-app/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/* templates/partials/* static/css/* static/img/*
var content embed.FS

//go:embed migrations/*.sql migrations/postgres/*.sql
var migrations embed.FS

const devJWTSecret = "f1league-dev-secret"

func main() {
	onLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
	if !onLambda {
		_ = godotenv.Load(".env", ".env.local")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := app.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger, onLambda); err != nil {
		logger.Error("Shutting down", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, onLambda bool) error {
	ctx := context.Background()

	ref, err := app.LoadReference(cfg)
	if err != nil {
		return err
	}
	appStore, err := app.OpenStore(ctx, cfg, ref, migrations, logger)
	if err != nil {
		return err
	}
	defer appStore.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := league.NewService(appStore, ref, league.Options{
		Logger:  logger,
		Metrics: league.NewMetrics(registry),
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	secret := cfg.Admin.JWTSecret
	if secret == "" && cfg.IsDev() {
		secret = devJWTSecret
	}
	var tokens *auth.Tokens
	if secret != "" {
		if tokens, err = auth.NewTokens(secret); err != nil {
			return err
		}
	}
	if !cfg.AdminEnabled() {
		logger.Warn("Admin login disabled, set ADMIN_PASSWORD_HASH and JWT_SECRET to enable it")
	}

	templates, err := web.NewTemplates(content)
	if err != nil {
		return err
	}
	server := web.NewServer(svc, templates, web.Options{
		Tokens:        tokens,
		PasswordHash:  cfg.Admin.PasswordHash,
		SessionTTL:    cfg.Admin.SessionTTL,
		Logger:        logger,
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		DevMode:       cfg.IsDev(),
		SecureCookies: cfg.IsProd(),
	})

	staticFS, err := fs.Sub(content, "static")
	if err != nil {
		return err
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Mount("/", server.Routes())

	if onLambda {
		logger.Info("Starting in Lambda mode")
		adapter := httpadapter.New(r)
		lambda.Start(adapter.ProxyWithContext)
		return nil
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Received signal", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
