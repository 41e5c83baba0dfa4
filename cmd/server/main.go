package main

import (
	"context"   // Startup and shutdown contexts
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"report_portal/internal/api"        // HTTP handlers
	"report_portal/internal/blob"       // Object storage
	"report_portal/internal/config"     // Configuration
	"report_portal/internal/db"         // Database connection
	"report_portal/internal/mail"       // Upload notifications
	"report_portal/internal/metrics"    // Prometheus metrics
	"report_portal/internal/middleware" // Gate policy
	"report_portal/internal/service"    // Use cases
	"report_portal/internal/session"    // Session store
	"report_portal/internal/store"      // Repositories

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err) // Missing storage credentials etc.
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	gdb, err := db.Open(cfg.DSN(), cfg.DBMaxOpenConns, !cfg.IsProd)
	if err != nil {
		logrus.Fatalf("database: %v", err)
	}

	// Setup Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	blobs, local, err := blob.Open(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to set up %s blob storage: %v", cfg.BlobBackend, err)
	}

	var notifier service.Notifier = mail.Disabled{}
	if cfg.MailEnabled() {
		notifier = mail.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.PublicBaseURL)
	} else {
		logrus.Warn("GMAIL_USER/GMAIL_PASS not set, upload notifications are disabled")
	}

	m := metrics.New("")
	users := store.NewUserRepository(gdb)
	sessions := session.NewRedisStore(rdb, cfg.SessionTTL)
	reports := service.NewReportService(users, store.NewReportRepository(gdb), blobs,
		blob.NewFetcher(60*time.Second, cfg.MaxUploadBytes), notifier, m, cfg.SignedURLTTL)

	deps := api.Deps{
		Auth:           service.NewAuthService(users, sessions, m),
		Reports:        reports,
		Sessions:       sessions,
		Metrics:        m,
		Gate:           middleware.GatePolicy{RedirectAuthenticatedFromLogin: cfg.RedirectAuthenticatedFromLogin},
		Cookie:         api.CookieConfig{Name: cfg.SessionCookie, TTL: cfg.SessionTTL, Secure: cfg.IsProd},
		MaxUploadBytes: cfg.MaxUploadBytes,
		TrustedProxies: cfg.TrustedProxies,
	}
	if local != nil {
		deps.LocalBlobs = local // Serve signed URLs of the local backend
	}
	router, err := api.NewRouter(deps)
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go serve(srv, "app")

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go serve(metricsSrv, "metrics")
	}

	<-ctx.Done()
	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("HTTP server shutdown failed")
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	reports.Wait() // Let pending notifications finish
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func serve(srv *http.Server, name string) {
	logrus.WithFields(logrus.Fields{"listener": name, "addr": srv.Addr}).Info("Server running")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatalf("%s listener failed: %v", name, err)
	}
}
