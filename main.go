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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/veridian-id/authz/api/cache"
	"github.com/veridian-id/authz/api/config"
	"github.com/veridian-id/authz/api/controller"
	"github.com/veridian-id/authz/api/db"
	logger "github.com/veridian-id/authz/api/logging"
	"github.com/veridian-id/authz/api/metrics"
	"github.com/veridian-id/authz/api/pdp/engine"
	"github.com/veridian-id/authz/api/repository"
	"github.com/veridian-id/authz/api/router"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger()
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	cfg := config.GetConfig()

	// Initialize metrics
	sink, err := metrics.NewOTelSink()
	if err != nil {
		logger.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	// Initialize the cache stack
	multiLayer, err := cache.NewMultiLayer(
		cache.NewRedisBackend(db.RedisClient),
		cache.Options{
			L1MaxCapacity:         cfg.Cache.L1MaxCapacity,
			L1TTL:                 time.Duration(cfg.Cache.L1TTLSecs) * time.Second,
			JitterRange:           time.Duration(cfg.Cache.JitterRangeSecs) * time.Second,
			LoadTimeout:           cfg.Cache.LoadTimeout,
			L2FallbackEnabled:     cfg.Cache.L2FallbackEnabled,
			BloomFilterEnabled:    cfg.Cache.BloomFilterEnabled,
			BloomExpectedElements: cfg.Cache.BloomExpectedElements,
			BloomFalsePositives:   cfg.Cache.BloomFalsePositiveRate,
		},
		sink,
	)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}

	// Initialize repositories
	roleRepository := repository.NewNeo4jRoleRepository(db.Neo4jDriver)
	policyRepository := repository.NewNeo4jPolicyRepository(db.Neo4jDriver)

	// Initialize the decision engine
	snapshots := engine.NewSnapshotStore(
		multiLayer,
		roleRepository,
		policyRepository,
		time.Duration(cfg.Cache.RoleTTLSecs)*time.Second,
		time.Duration(cfg.Cache.PolicyTTLSecs)*time.Second,
	)
	decisionEngine := engine.NewEngine(snapshots)

	// Warm the cache for hot tenants in the background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Cache.WarmingEnabled {
		warmer := cache.NewWarmer(cfg.Cache.WarmTenants, snapshots.Warmup)
		warmer.Start(ctx)
		defer warmer.Stop()
	}

	// Initialize controllers
	authorizationController := controller.NewAuthorizationController(decisionEngine)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(authorizationController, 100, time.Minute) // 100 requests per minute

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
