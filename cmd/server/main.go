package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"studenthub/internal/api"     // Custom package for API handlers and routing
	"studenthub/internal/config"  // Custom package for configuration
	"studenthub/internal/images"  // Image host client
	"studenthub/internal/oauth"   // Google ID token verification
	"studenthub/internal/payment" // Payment gateway client

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// External collaborators
	gateway := payment.NewClient(cfg.GatewayURL, cfg.GatewayKey, cfg.GatewaySecret) // Payment gateway
	imgs := images.NewClient(cfg.ImageHostURL, cfg.ImageHostKey)                    // Image host
	google := oauth.NewGoogleVerifier("", cfg.GoogleClient)                         // Google token verifier

	// Wire up all routes
	r := api.NewRouter(db, redisClient, cfg, gateway, imgs, google)

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
