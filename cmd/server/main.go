package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogapi/internal/config"
	"blogapi/internal/db"
	"blogapi/internal/logger"
	"blogapi/internal/router"
	"blogapi/internal/services"
	"blogapi/internal/store"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.IsRelease())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.InstallValidator()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx := context.Background()

	gdb, err := db.Open(cfg.DatabaseURL, zl)
	if err != nil {
		return err
	}

	storage, err := services.NewS3Storage(ctx, services.S3Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return err
	}

	mailer, err := services.NewMailer(cfg.MailDriver, services.MailerOptions{
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUser:     cfg.SMTPUser,
		SMTPPass:     cfg.SMTPPass,
		SMTPTimeout:  cfg.SMTPTimeout,
		ResendAPIKey: cfg.ResendAPIKey,
		From:         cfg.MailFrom,
	}, zl)
	if err != nil {
		return err
	}

	// Stores
	users := store.NewUserStore(gdb)
	tokens := store.NewTokenStore(gdb)
	posts := store.NewPostStore(gdb)
	comments := store.NewCommentStore(gdb)
	categories := store.NewCategoryStore(gdb)

	// Services
	hasher := services.NewBcryptHasher(cfg.BcryptCost)
	sessions := services.NewSessionSigner(cfg.JWTSecret, cfg.SessionTTL)

	engine := router.New(router.Deps{
		Auth:       services.NewAuthService(users, tokens, hasher, sessions, mailer, cfg.BaseURL),
		Sessions:   sessions,
		Users:      services.NewUserService(users, posts, hasher, storage, zl),
		Posts:      services.NewPostService(posts, storage, zl),
		Comments:   services.NewCommentService(comments, users, posts),
		Categories: services.NewCategoryService(categories),
		Log:        zl,

		ClientOrigin:    cfg.BaseURL,
		UploadMaxBytes:  cfg.UploadMaxBytes,
		RateLimitWindow: cfg.RateLimitWindow,
		RateLimitMax:    cfg.RateLimitMax,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting", zap.String("addr", srv.Addr), zap.String("mail_driver", cfg.MailDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		zl.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zl.Info("server exited")
	return nil
}
