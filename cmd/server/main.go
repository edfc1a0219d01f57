package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"crimewatch/internal/config"
	"crimewatch/internal/domain/mailer"
	"crimewatch/internal/domain/report"
	"crimewatch/internal/infra/email"
	"crimewatch/internal/infra/ratelimit"
	"crimewatch/internal/infra/store"
	"crimewatch/internal/infra/template"
	"crimewatch/internal/router"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration. Missing transport credentials abort here rather
	// than serving traffic the dispatcher can never deliver.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "port", cfg.Server.Port, "mode", cfg.Server.Mode)

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	// Supabase store (reports + recipient directory)
	db, err := store.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		slog.Error("failed to initialize supabase store", "error", err)
		os.Exit(1)
	}
	slog.Info("supabase store initialized")

	// SMTP transport
	transport := email.NewSMTPTransport(email.Options{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		Secure:      cfg.SMTP.Secure,
		FromAddress: cfg.SMTP.FromAddress,
		FromName:    cfg.SMTP.FromName,
	})

	// Template Engine
	templatesDir := resolveTemplatesDir()
	tmplEngine, err := template.NewEngine(templatesDir)
	if err != nil {
		slog.Error("failed to initialize template engine", "error", err, "dir", templatesDir)
		os.Exit(1)
	}
	slog.Info("template engine initialized", "dir", templatesDir)

	// Recipient Rate Limiter
	recipientLimiter := ratelimit.NewRedisRecipientLimiter(
		cfg.Redis.Address,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.RecipientRateLimit.MaxPerHour,
	)
	defer recipientLimiter.Close()
	slog.Info("recipient rate limiter initialized", "max_per_hour", cfg.RecipientRateLimit.MaxPerHour)

	// Mailer service — verifies the transport handshake once at construction
	mailService := mailer.NewService(transport, tmplEngine, db, recipientLimiter, mailer.Options{
		AdminEmail:  cfg.Admin.Email,
		AdminEmails: cfg.Admin.Emails,
		BaseURL:     cfg.App.BaseURL,
	})

	// Handler
	mailHandler := mailer.NewHandler(mailService)

	// Router
	r := router.New(cfg, mailHandler)

	// ==========================================
	// Retention Sweeper
	// ==========================================

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()

	sweeper := report.NewSweeper(db, report.Config{
		Interval:        time.Duration(cfg.Sweeper.IntervalSec) * time.Second,
		RetentionWindow: time.Duration(cfg.Sweeper.RetentionHours) * time.Hour,
		RunImmediately:  cfg.Sweeper.RunImmediately,
	})

	go sweeper.Run(sweepCtx)

	// ==========================================
	// HTTP Server with Graceful Shutdown
	// ==========================================

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	sweepCancel() // Stop the sweeper first

	// Give outstanding requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// resolveTemplatesDir finds the templates directory.
func resolveTemplatesDir() string {
	// Check if running in Docker (production)
	if _, err := os.Stat("/app/templates"); err == nil {
		return "/app/templates"
	}

	// Development: resolve relative to the source file location
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "internal/infra/template/templates"
	}

	// Navigate from cmd/server/main.go to internal/infra/template/templates
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(projectRoot, "internal", "infra", "template", "templates")
}
