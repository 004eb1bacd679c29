package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/referral-checker/app/services"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const defaultPurgeInterval = 10 * time.Minute

// purgeInterval trả về interval hợp lệ cho ticker, giá trị <= 0 dùng mặc định
func purgeInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultPurgeInterval
	}
	return d
}

// Worker dọn cache kết quả phân tích hết hạn trong MongoDB theo chu kỳ
func main() {
	_ = godotenv.Load()

	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.l1_size", 1000)
	viper.SetDefault("mongo.url", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "referral_checker")
	viper.SetDefault("worker.interval", defaultPurgeInterval)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}

	var logger *zap.Logger
	var err error
	if viper.GetString("app.env") == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}
	defer logger.Sync()

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(viper.GetString("mongo.url")))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("Error disconnecting MongoDB", zap.Error(err))
		}
	}()

	cache, err := services.NewMongoCacheService(
		client.Database(viper.GetString("mongo.database")),
		viper.GetInt("cache.l1_size"),
		viper.GetDuration("cache.ttl"),
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to create cache service", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interval := purgeInterval(viper.GetDuration("worker.interval"))
	logger.Info("Starting cache purge worker", zap.Duration("interval", interval))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if _, err := cache.PurgeExpired(ctx); err != nil {
				logger.Error("Purge failed", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
}
