package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"movie-tracker/internal/config"
	"movie-tracker/internal/db"
	"movie-tracker/internal/email"
	apihttp "movie-tracker/internal/http"
	"movie-tracker/internal/repository"
	"movie-tracker/internal/service"
	"movie-tracker/internal/tmdb"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	tokenRepo := repository.NewPgVerificationTokenRepository(pool)
	watchlistRepo := repository.NewPgWatchlistRepository(pool)
	watchedRepo := repository.NewPgWatchedRepository(pool)

	emailSender := email.Sender(email.NewDisabledSender("email sender not configured"))
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.AppBaseURL)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var tokenStore service.RefreshTokenStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}
	jwtSvc := service.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)

	accountSvc := service.NewAccountService(
		logger,
		userRepo,
		tokenRepo,
		emailSender,
		cfg.BcryptCost,
		time.Duration(cfg.VerificationTokenTTLHours)*time.Hour,
	)
	contentSvc := service.NewContentService(watchlistRepo, watchedRepo)
	tmdbClient := tmdb.NewHTTPClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey)

	accountHandler := apihttp.NewAccountHandler(logger, accountSvc, jwtSvc)
	contentHandler := apihttp.NewContentHandler(logger, contentSvc)
	searchHandler := apihttp.NewSearchHandler(logger, tmdbClient)
	router := apihttp.NewRouter(logger, jwtSvc, accountHandler, contentHandler, searchHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
