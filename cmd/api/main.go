package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-api-authsession/internal/config"
	"github.com/go-api-authsession/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-api-authsession/internal/infrastructure/jwt"
	redisinfra "github.com/go-api-authsession/internal/infrastructure/redis"
	s3infra "github.com/go-api-authsession/internal/infrastructure/s3"
	"github.com/go-api-authsession/internal/infrastructure/smtp"
	"github.com/go-api-authsession/internal/infrastructure/sns"
	transporthttp "github.com/go-api-authsession/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("dynamodb: %v", err)
	}
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Session bindings and verification codes live in Redis. Refuse to start
	// without it: every authenticated request depends on the binding check.
	redisClient := redisinfra.NewClient(cfg)
	defer redisClient.Close()
	if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
		log.Fatalf("redis: %v", err)
	}

	s3Client := s3infra.NewClient(cfg)

	var mailer smtp.Mailer
	switch cfg.MailTransport {
	case "sns":
		m, err := sns.NewTopicMailer(cfg)
		if err != nil {
			log.Fatalf("sns mailer: %v", err)
		}
		mailer = m
	default:
		mailer = smtp.NewMailer(cfg)
	}

	deps := &transporthttp.Deps{
		AccountRepo:  dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts, cfg.DynamoTables.Counters, cfg.StoreTimeout),
		SessionStore: redisinfra.NewSessionStore(redisClient, cfg.StoreTimeout),
		CodeStore:    redisinfra.NewCodeStore(redisClient, cfg.StoreTimeout),
		AvatarStore:  s3infra.NewAvatarStore(s3Client, cfg.S3BucketName),
		Codec:        jwtinfra.NewCodec([]byte(cfg.JWTSecret)),
		Mailer:       mailer,
		Ping: func(ctx context.Context) error {
			return redisinfra.Ping(ctx, redisClient)
		},
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
