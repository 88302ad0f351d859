package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/example/checkout/internal/config"
	"github.com/example/checkout/internal/email"
	"github.com/example/checkout/internal/infrastructure/kafka"
	"github.com/example/checkout/internal/infrastructure/store"
	"github.com/example/checkout/internal/notification"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Notifier] Configuration error: %v", err)
	}

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] Payment Notification Service")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v (topic %s)", cfg.KafkaBrokers, cfg.KafkaTopic)
	log.Printf("[Notifier] SMTP: %s:%s", cfg.SMTPHost, cfg.SMTPPort)

	orderStore, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[Notifier] Failed to initialize store: %v", err)
	}
	defer cleanup()

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailFrom, cfg.MerchantEmail)
	handler := notification.NewHandler(emailSvc, orderStore)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, "payment-notifier")
	defer consumer.Close()

	go func() {
		log.Println("[Notifier] Consuming payment notifications...")
		if err := consumer.Consume(ctx, handler.HandleMessage); err != nil {
			if ctx.Err() == nil {
				log.Printf("[Notifier] Consumer error: %v", err)
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()
}

func buildStore(ctx context.Context, cfg *config.Config) (store.OrderStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		client := dynamodb.NewFromConfig(awsCfg)
		return store.NewDynamoOrderStore(client, cfg.DynamoOrdersTable, cfg.DynamoEventsTable), func() {}, nil
	default:
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresOrderStore(db), func() { db.Close() }, nil
	}
}
