package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/referral-checker/app/config"
	"github.com/referral-checker/app/controllers"
	"github.com/referral-checker/app/services"
	"github.com/referral-checker/routes"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	_ = godotenv.Load()
	loadConfig()

	if err := config.Load(viper.GetString("checker.config")); err != nil {
		log.Fatalf("Cannot load checker config: %v", err)
	}

	// 2. Khởi tạo logger
	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting Referral Checker Service",
		zap.Bool("strict_normalize", config.C.StrictNormalize),
		zap.Ints("tiers", config.C.Tiers))

	// 3. Khởi tạo cache theo backend
	backend := viper.GetString("cache.backend")
	cacheService, closeCache, err := initCache(backend, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.String("backend", backend), zap.Error(err))
	}
	defer closeCache()

	// 4. Khởi tạo services
	analysisService := services.NewAnalysisService(config.C, cacheService, logger)
	exportService := services.NewExportService(config.C, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	analysisService.StartJobJanitor(ctx, time.Minute)

	// 5. Khởi tạo controllers
	analysisController := controllers.NewAnalysisController(analysisService, exportService, cacheService, logger)
	adminController := controllers.NewAdminController(analysisService, cacheService, backend, logger)

	// 6. Khởi tạo Gin router
	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, analysisController, adminController, logger)

	// 7. Khởi động server
	port := viper.GetString("app.port")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", port), zap.String("cache_backend", backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// loadConfig load configuration từ file và env vars
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("checker.config", "config/checker.yaml")
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.l1_size", 1000)
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "referral_checker")

	// APP_PORT, CACHE_BACKEND, REDIS_URL, MONGO_URL...
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}
}

// initLogger khởi tạo structured logger
func initLogger() *zap.Logger {
	var cfg zap.Config
	if viper.GetString("app.env") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}

	return logger
}

// initCache chọn cache backend: memory | redis | mongo | hybrid
func initCache(backend string, logger *zap.Logger) (services.ICacheService, func(), error) {
	ttl := viper.GetDuration("cache.ttl")
	l1Size := viper.GetInt("cache.l1_size")

	switch backend {
	case "memory":
		cache := services.NewCacheService(ttl)
		ctx, cancel := context.WithCancel(context.Background())
		cache.StartCleanupWorker(ctx, 5*time.Minute)
		return cache, cancel, nil

	case "redis":
		cache, err := services.NewRedisCacheService(viper.GetString("redis.url"), ttl, logger)
		if err != nil {
			return nil, nil, err
		}
		return cache, func() { _ = cache.Close() }, nil

	case "mongo", "hybrid":
		client, err := initMongoDB(logger)
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("Error disconnecting MongoDB", zap.Error(err))
			}
		}

		mongoCache, err := services.NewMongoCacheService(client.Database(viper.GetString("mongo.database")), l1Size, ttl, logger)
		if err != nil {
			disconnect()
			return nil, nil, err
		}
		if backend == "mongo" {
			if err := mongoCache.WarmUp(context.Background(), l1Size/2); err != nil {
				logger.Warn("Failed to warm up cache", zap.Error(err))
			}
			return mongoCache, disconnect, nil
		}

		redisCache, err := services.NewRedisCacheService(viper.GetString("redis.url"), ttl, logger)
		if err != nil {
			disconnect()
			return nil, nil, err
		}
		hybrid := services.NewHybridCacheService(redisCache, mongoCache, logger)
		if err := hybrid.WarmUpFromMongoDB(context.Background(), l1Size/2); err != nil {
			logger.Warn("Failed to warm up cache", zap.Error(err))
		}
		return hybrid, func() {
			_ = hybrid.Close()
			disconnect()
		}, nil

	default:
		return nil, nil, fmt.Errorf("cache backend không hỗ trợ: %q", backend)
	}
}

// initMongoDB khởi tạo kết nối MongoDB
func initMongoDB(logger *zap.Logger) (*mongo.Client, error) {
	mongoURL := viper.GetString("mongo.url")

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("không thể kết nối MongoDB: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("không thể ping MongoDB: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", viper.GetString("mongo.database")))
	return client, nil
}
