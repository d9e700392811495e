package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fashionmart/storefront/internal/cart"
	"github.com/fashionmart/storefront/internal/catalog"
	"github.com/fashionmart/storefront/internal/checkout"
	"github.com/fashionmart/storefront/internal/config"
	"github.com/fashionmart/storefront/internal/httpapi"
	"github.com/fashionmart/storefront/internal/orders"
	"github.com/fashionmart/storefront/internal/payment"
	"github.com/fashionmart/storefront/internal/storage"
	"github.com/fashionmart/storefront/internal/subscribers"
	"github.com/fashionmart/storefront/internal/users"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal("mongo connection failed", zap.Error(err))
	}
	defer db.Client().Disconnect(context.Background())
	log.Info("connected to mongo", zap.String("uri", cfg.MongoURI))

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := cart.EnsureIndexes(indexCtx, db); err != nil {
		log.Fatal("cart indexes failed", zap.Error(err))
	}
	if err := checkout.EnsureIndexes(indexCtx, db); err != nil {
		log.Fatal("checkout indexes failed", zap.Error(err))
	}
	if err := orders.EnsureIndexes(indexCtx, db); err != nil {
		log.Fatal("order indexes failed", zap.Error(err))
	}
	if err := users.EnsureIndexes(indexCtx, db); err != nil {
		log.Fatal("user indexes failed", zap.Error(err))
	}
	if err := subscribers.EnsureIndexes(indexCtx, db); err != nil {
		log.Fatal("subscriber indexes failed", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	catalogSvc := catalog.NewService(catalog.NewMongoRepository(db))
	cartSvc := cart.NewService(cart.NewMongoRepository(db), cart.NewRedisCache(redisClient), catalogSvc, log)

	checkoutRepo := checkout.NewMongoRepository(db)
	checkoutSvc := checkout.NewService(checkoutRepo, log)

	orderRepo := orders.NewMongoRepository(db)
	orderSvc := orders.NewService(orderRepo)

	userSvc := users.NewService(users.NewMongoRepository(db), log)
	subSvc := subscribers.NewService(subscribers.NewMongoRepository(db), log)
	tokens := users.NewTokenIssuer(cfg.JWTSecret)
	charger := payment.NewGateway(cfg.PaymentGatewayURL, cfg.PaymentTimeout, log)

	// Outbox poller publishes finalized checkouts to Kafka; the consumer on
	// the other side materializes orders.
	writer := checkout.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...)
	defer writer.Close()
	poller := checkout.NewOutboxPoller(checkoutRepo, writer, log)
	go poller.Run(ctx)

	reader := orders.NewKafkaReader(cfg.KafkaTopic, cfg.KafkaGroupID, cfg.KafkaBrokers...)
	consumer := orders.NewConsumer(orderRepo, reader, log)
	go consumer.Run(ctx)
	defer consumer.Close()

	router := httpapi.NewRouter(httpapi.Deps{
		Carts:       cartSvc,
		Catalog:     catalogSvc,
		Checkouts:   checkoutSvc,
		Orders:      orderSvc,
		Users:       userSvc,
		Subscribers: subSvc,
		Charger:     charger,
		Tokens:      tokens,
		Log:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("http server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
