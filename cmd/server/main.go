package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging
	"time"    // Connection pool lifetimes

	"ledger_service/internal/api"    // Custom package for API handlers
	"ledger_service/internal/config" // Custom package for configuration
	"ledger_service/internal/engine" // Transaction engine
	"ledger_service/internal/store"  // Ledger store

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

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Configure the connection pool; it bounds how many postings can wait on
	// the same wallet row lock at once
	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

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

	// The store is the sole writer of balances; the engine is the only
	// component that creates transactions
	ledgerStore := store.New(db, cfg.DefaultPageSize, cfg.MaxPageSize)
	txEngine := engine.New(ledgerStore)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Wallet routes
	r.GET("/wallets", api.ListWalletsHandler(ledgerStore, redisClient, cfg))    // List wallets endpoint
	r.POST("/wallets", api.CreateWalletHandler(ledgerStore, redisClient))       // Create wallet endpoint
	r.GET("/wallets/:id", api.GetWalletHandler(ledgerStore, redisClient))       // Get wallet endpoint
	r.PATCH("/wallets/:id", api.UpdateWalletHandler(ledgerStore, redisClient))  // Update wallet label endpoint
	r.DELETE("/wallets/:id", api.DeleteWalletHandler(ledgerStore, redisClient)) // Delete wallet endpoint

	// Transaction routes (no update or delete; postings are immutable)
	r.GET("/transactions", api.ListTransactionsHandler(ledgerStore, redisClient, cfg)) // List transactions endpoint
	r.POST("/transactions", api.CreateTransactionHandler(txEngine, redisClient))       // Create transaction endpoint
	r.GET("/transactions/:id", api.GetTransactionHandler(ledgerStore, redisClient))    // Get transaction endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
