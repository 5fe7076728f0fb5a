package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/kevinaaaquil/book-inventory/backend/config"
	"github.com/kevinaaaquil/book-inventory/backend/handlers"
	"github.com/kevinaaaquil/book-inventory/backend/middleware"
	"github.com/kevinaaaquil/book-inventory/backend/service"
	"github.com/kevinaaaquil/book-inventory/backend/store"
)

func main() {
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	cfg.LogSummary(logrus.StandardLogger())

	ctx := context.Background()
	db, err := openStore(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("store")
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logrus.WithError(err).Warn("store close")
		}
	}()

	if err := seed(ctx, cfg, db); err != nil {
		logrus.WithError(err).Fatal("seed")
	}

	var exporter *service.Exporter
	if cfg.S3Bucket != "" {
		s3Service, err := service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			logrus.WithError(err).Fatal("s3")
		}
		exporter = &service.Exporter{Books: db, Objects: s3Service}
	} else {
		logrus.Warn("AWS_S3_BUCKET not set; inventory export is disabled")
	}

	router := handlers.NewRouter(handlers.Deps{
		Store:       db,
		Tokens:      service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL),
		Lookup:      service.NewISBNLookup(cfg.GeminiAPIKey),
		Exporter:    exporter,
		AuthLimiter: middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
		CORSOrigin:  cfg.CORSOrigin,
		Logger:      logrus.StandardLogger(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithField("port", cfg.Port).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("shutdown")
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logrus.Warn("using in-memory store; data is lost on exit")
		return store.NewMemory(), nil
	}
	return store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName, cfg.StoreTimeout)
}

// seed creates the bootstrap admin when a password is configured and, on
// request, the sample catalogue owned by that admin.
func seed(ctx context.Context, cfg *config.Config, db store.Store) error {
	if cfg.AdminPassword == "" {
		if cfg.SeedSampleBooks {
			logrus.Warn("SEED_SAMPLE_BOOKS needs ADMIN_PASSWORD; skipping")
		}
		return nil
	}
	admin, err := service.EnsureAdmin(ctx, db, cfg.AdminUsername, cfg.AdminName, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if cfg.SeedSampleBooks {
		if _, err := service.SeedSampleBooks(ctx, db, admin); err != nil {
			return err
		}
	}
	return nil
}
