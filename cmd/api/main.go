package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/example/checkout/internal/api"
	"github.com/example/checkout/internal/auth"
	"github.com/example/checkout/internal/checkout"
	"github.com/example/checkout/internal/config"
	"github.com/example/checkout/internal/gateway"
	"github.com/example/checkout/internal/infrastructure/kafka"
	"github.com/example/checkout/internal/infrastructure/store"
	"github.com/example/checkout/internal/notifier"
	"github.com/example/checkout/internal/query"
	"github.com/example/checkout/internal/reconcile"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Configuration error: %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Checkout Service")
	log.Println("[API] ========================================")
	log.Printf("[API] Store backend: %s", cfg.StoreBackend)
	log.Printf("[API] Kafka: %v (topic %s)", cfg.KafkaBrokers, cfg.KafkaTopic)

	orderStore, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[API] Failed to initialize store: %v", err)
	}
	defer cleanup()

	// Notifier publishes to Kafka; cmd/notifier consumes and mails.
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()
	paidNotifier := notifier.NewKafkaNotifier(producer)

	gatewayClient := gateway.NewHTTPClient(cfg.GatewayBaseURL, cfg.GatewaySecretKey, cfg.GatewayTimeout)
	verifier := gateway.NewVerifier(cfg.GatewayWebhookSecret, cfg.WebhookTolerance)

	checkoutSvc := checkout.NewService(gatewayClient, orderStore, checkout.Config{
		Currency:       cfg.Currency,
		SuccessURL:     cfg.SuccessURL,
		CancelURL:      cfg.CancelURL,
		GatewayTimeout: cfg.GatewayTimeout,
	})
	reconciler := reconcile.New(verifier, orderStore, paidNotifier)
	queryHandler := query.NewHandler(orderStore)

	jwtService := auth.NewJWTService(cfg.JWTSecret, 15*time.Minute)

	handlers := api.NewHandlers(checkoutSvc, reconciler, queryHandler)
	router := api.NewRouter(api.RouterConfig{
		Handlers:   handlers,
		JWTService: jwtService,
		APIKeyHash: cfg.APIKeyHash,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}

func buildStore(ctx context.Context, cfg *config.Config) (store.OrderStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		client := dynamodb.NewFromConfig(awsCfg)
		log.Printf("[API] Using DynamoDB tables %s / %s", cfg.DynamoOrdersTable, cfg.DynamoEventsTable)
		return store.NewDynamoOrderStore(client, cfg.DynamoOrdersTable, cfg.DynamoEventsTable), func() {}, nil
	default:
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("[API] Connected to PostgreSQL")
		return store.NewPostgresOrderStore(db), func() { db.Close() }, nil
	}
}
