package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dairydock/catalog-service/config"
	"github.com/dairydock/catalog-service/internal/asset"
	assethandler "github.com/dairydock/catalog-service/internal/asset/handler"
	assetprovider "github.com/dairydock/catalog-service/internal/asset/provider"
	assetrepository "github.com/dairydock/catalog-service/internal/asset/repository"
	assetusecase "github.com/dairydock/catalog-service/internal/asset/usecase"
	"github.com/dairydock/catalog-service/internal/catalog"
	cataloghandler "github.com/dairydock/catalog-service/internal/catalog/handler"
	categoryhandler "github.com/dairydock/catalog-service/internal/category/handler"
	categoryrepository "github.com/dairydock/catalog-service/internal/category/repository"
	categoryusecase "github.com/dairydock/catalog-service/internal/category/usecase"
	offerhandler "github.com/dairydock/catalog-service/internal/offer/handler"
	offerrepository "github.com/dairydock/catalog-service/internal/offer/repository"
	offerusecase "github.com/dairydock/catalog-service/internal/offer/usecase"
	producthandler "github.com/dairydock/catalog-service/internal/product/handler"
	productlistener "github.com/dairydock/catalog-service/internal/product/listener"
	productrepository "github.com/dairydock/catalog-service/internal/product/repository"
	productusecase "github.com/dairydock/catalog-service/internal/product/usecase"
	"github.com/dairydock/catalog-service/internal/server"
	"github.com/dairydock/catalog-service/pkg/broker"
	"github.com/dairydock/catalog-service/pkg/cache"
	"github.com/dairydock/catalog-service/pkg/logger"
	"github.com/dairydock/catalog-service/pkg/mongodb"
	"github.com/dairydock/catalog-service/pkg/search"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg := config.LoadEnv()

	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.Server.AppEnv == "development",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	appLogger.Info("starting catalog service", zap.String("env", cfg.Server.AppEnv))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := mongodb.Connect(ctx, &mongodb.Config{
		URI:            cfg.Mongo.URI,
		ConnectTimeout: time.Duration(cfg.Mongo.ConnectTimeout) * time.Second,
		MaxPoolSize:    uint64(cfg.Mongo.MaxPoolSize),
	})
	if err != nil {
		appLogger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			appLogger.Error("failed to disconnect mongodb", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.Mongo.Database)

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Search is an accelerator, not a dependency: the catalog answers every
	// query from the store when the cluster is down.
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("elasticsearch unavailable, full-text search disabled", zap.Error(err))
		esClient = nil
	}

	var assetProvider asset.Provider
	switch cfg.Storage.Backend {
	case "s3":
		assetProvider, err = assetprovider.NewS3Provider(assetprovider.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
			PublicURL: cfg.Storage.PublicURL,
		})
	default:
		assetProvider, err = assetprovider.NewLocalProvider(assetprovider.LocalConfig{
			BasePath: cfg.Storage.BasePath,
			BaseURL:  cfg.Storage.BaseURL,
		})
	}
	if err != nil {
		appLogger.Fatal("failed to initialize asset storage", zap.Error(err))
	}
	appLogger.Info("asset storage ready", zap.String("backend", assetProvider.Name()))

	categoryRepo := categoryrepository.NewMongoRepository(db)
	productRepo := productrepository.NewMongoRepository(db)
	if err := categoryRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Fatal("failed to ensure category indexes", zap.Error(err))
	}
	if err := productRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Fatal("failed to ensure product indexes", zap.Error(err))
	}
	imageRepo := assetrepository.NewMongoRepository(db)
	offerRepo := offerrepository.NewMongoRepository(db)

	categoryUC := categoryusecase.NewCategoryUseCase(categoryRepo, assetProvider, appLogger)
	productUC := productusecase.NewProductUseCase(productRepo, redisClient, esClient, assetProvider, appLogger)
	imageUC := assetusecase.NewAssetUseCase(imageRepo, assetProvider, appLogger)
	offerUC := offerusecase.NewOfferUseCase(offerRepo, appLogger)
	catalogUC := catalog.NewCatalogUseCase(categoryUC, productUC)

	consumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer consumer.Close()

	orderListener := productlistener.NewOrderListener(consumer, productUC, appLogger)
	go orderListener.Start(ctx)

	srv := server.New(cfg, appLogger,
		categoryhandler.NewCategoryHandler(categoryUC, appLogger),
		producthandler.NewProductHandler(productUC, appLogger),
		assethandler.NewImageHandler(imageUC, appLogger),
		offerhandler.NewOfferHandler(offerUC, appLogger),
		cataloghandler.NewCatalogHandler(catalogUC, appLogger),
	)

	go func() {
		if err := srv.Run(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http server shutdown failed", zap.Error(err))
	}
}
