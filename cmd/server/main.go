package main

import (
	"context"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/scribehq/scribe/internal/api/handlers"
	"github.com/scribehq/scribe/internal/api/middleware"
	"github.com/scribehq/scribe/internal/collab"
	"github.com/scribehq/scribe/internal/config"
	"github.com/scribehq/scribe/internal/crypto"
	"github.com/scribehq/scribe/internal/database"
	"github.com/scribehq/scribe/internal/document/runtime"
	"github.com/scribehq/scribe/internal/relay"
	"github.com/scribehq/scribe/internal/store"
	"github.com/scribehq/scribe/internal/websocket"
	"github.com/scribehq/scribe/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}

	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Open database
	logger.Infof("Opening database: %s", cfg.DatabasePath)
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	st := store.New(db)

	// Initialize JWT manager
	logger.Infof("Initializing JWT manager...")
	jwtManager, err := crypto.NewJWTManager(cfg.MasterSecret)
	if err != nil {
		logger.Errorf("Failed to create JWT manager: %v", err)
		os.Exit(1)
	}

	// Optional cross-instance change relay
	var changeRelay *relay.Relay
	if cfg.RedisAddr != "" {
		logger.Infof("Connecting change relay to redis at %s", cfg.RedisAddr)
		changeRelay, err = relay.New(context.Background(), cfg.RedisAddr)
		if err != nil {
			logger.Errorf("Failed to connect relay: %v", err)
			os.Exit(1)
		}
		defer changeRelay.Close()
	}

	// Initialize Socket.IO server
	logger.Infof("Initializing Socket.IO server...")
	var publisher runtime.Publisher
	if changeRelay != nil {
		publisher = changeRelay
	}
	socketServer := websocket.NewSocketServer(st, jwtManager, publisher, websocket.Options{
		PingInterval: cfg.PingInterval,
		PingTimeout:  cfg.PingTimeout,
	})
	defer socketServer.Close()

	if changeRelay != nil {
		changeRelay.Subscribe(context.Background(), func(documentID string, change collab.Change) {
			socketServer.Documents().EnqueueRelayedChange(context.Background(), documentID, change)
		})
	}

	// Create Gin router
	router := gin.Default()

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Logging middleware
	router.Use(middleware.LoggingMiddleware())

	// Root endpoint - returns plain text for client validation
	router.GET("/", func(c *gin.Context) {
		c.String(200, "Welcome to Scribe Server!")
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st, jwtManager)
	documentHandler := handlers.NewDocumentHandler(st, socketServer.Documents())

	// Public routes (no auth required)
	v1 := router.Group("/v1")
	{
		v1.POST("/auth", authHandler.PostAuth)

		v1.POST("/version", func(c *gin.Context) {
			c.JSON(200, gin.H{"version": "1.0.0"})
		})
	}

	// Protected routes (auth required)
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager))
	{
		// Documents
		protected.GET("/documents", documentHandler.ListDocuments)
		protected.POST("/documents", documentHandler.CreateDocument)
		protected.GET("/documents/:id", documentHandler.GetDocument)
		protected.DELETE("/documents/:id", documentHandler.DeleteDocument)
		protected.GET("/documents/:id/blocks", documentHandler.GetDocumentBlocks)
	}

	// Read-only presence feed (token rides in the query string)
	router.GET("/v1/presence", socketServer.HandlePresenceFeed)

	// Mount Socket.IO endpoint at /v1/updates (accessible without auth for handshake)
	// Auth will be checked after connection is established
	router.Any("/v1/updates", socketServer.HandleSocketIO())
	router.Any("/v1/updates/*any", socketServer.HandleSocketIO())

	// Start HTTP server
	logger.Infof("Scribe Server starting on http://localhost%s", cfg.Addr)
	logger.Infof("Database: %s", cfg.DatabasePath)
	logger.Infof("JWT signing enabled")

	if err := router.Run(cfg.Addr); err != nil {
		logger.Errorf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
