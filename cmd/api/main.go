package main

import (
	"context"
	"log"
	"time"

	"github.com/01moynul/tenantdesk-golang/internal/auth"
	"github.com/01moynul/tenantdesk-golang/internal/config"
	"github.com/01moynul/tenantdesk-golang/internal/database"
	"github.com/01moynul/tenantdesk-golang/internal/email"
	"github.com/01moynul/tenantdesk-golang/internal/handlers"
	"github.com/01moynul/tenantdesk-golang/internal/ingest"
	"github.com/01moynul/tenantdesk-golang/internal/logger"
	"github.com/01moynul/tenantdesk-golang/internal/reports"
	"github.com/01moynul/tenantdesk-golang/internal/routes"
	"github.com/01moynul/tenantdesk-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Auth.SecretKey == "" {
		log.Fatal("CRITICAL ERROR: SECRET_KEY environment variable is not set.")
	}

	// 1. --- Logger ---
	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat, "tenantdesk-api")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// 2. --- Main Database Connection ---
	db, err := database.OpenDB(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db, cfg.Database.ForeignKeys); err != nil {
		zlog.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 3. --- Login codes ---
	var otpStore auth.OTPStore
	memoryOTP := auth.NewMemoryOTPStore()
	if cfg.Auth.OTPStore == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			zlog.Fatal("Failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		defer client.Close()
		otpStore = auth.NewRedisOTPStore(client)
	} else {
		otpStore = memoryOTP

		// --- Background Worker ---
		// Expired codes are never read again; drop them so the map does not grow.
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				if n := memoryOTP.Sweep(); n > 0 {
					zlog.Debug("Swept expired login codes", zap.Int("count", n))
				}
			}
		}()
	}

	var mailer email.Mailer = email.NewLogMailer(zlog)
	if cfg.Mail.ResendAPIKey != "" {
		mailer = email.NewResendMailer(cfg.Mail.ResendURL, cfg.Mail.ResendAPIKey, cfg.Mail.From, zlog)
	} else {
		zlog.Warn("RESEND_API_KEY not set; login codes will only be logged")
	}

	ingestMode, err := ingest.ParseMode(cfg.IngestMode)
	if err != nil {
		zlog.Fatal("Invalid ingest mode", zap.Error(err))
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		Store:         store.New(db, zlog),
		Ingest:        ingest.New(db, zlog),
		Reports:       reports.New(db),
		Tokens:        auth.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenTTL),
		OTP:           auth.NewOTPService(otpStore, cfg.Auth.OTPTTL),
		Mailer:        mailer,
		Log:           zlog,
		OTPTTL:        cfg.Auth.OTPTTL,
		CookieSecure:  cfg.Auth.CookieSecure,
		WebhookSecret: cfg.WebhookSecret,
		IngestMode:    ingestMode,
	}
	if cfg.WebhookSecret == "" {
		zlog.Warn("SHOPIFY_WEBHOOK_SECRET not set; webhook signatures are not checked")
	}

	// --- Router Setup ---
	gin.SetMode(gin.ReleaseMode)
	router := routes.SetupRouter(app, cfg.AllowedOrigins)

	// --- Start Server ---
	zlog.Info("Starting tenantdesk API server", zap.String("port", cfg.Port), zap.String("db_driver", cfg.Database.Driver))
	if err := router.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("Failed to start server", zap.Error(err))
	}
}
