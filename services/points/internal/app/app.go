package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"itnfit/pkg/cache"
	"itnfit/pkg/config"
	"itnfit/pkg/database"
	"itnfit/pkg/event"
	"itnfit/pkg/jwt"
	"itnfit/pkg/logger"
	"itnfit/pkg/middleware"
	"itnfit/pkg/queue"
	pointsAMQP "itnfit/services/points/internal/controller/amqp"
	pointsHTTP "itnfit/services/points/internal/controller/http"
	"itnfit/services/points/internal/notifier"
	"itnfit/services/points/internal/repo/persistent"
	"itnfit/services/points/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "itnfit/services/points/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	bus         *event.Bus
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	// Redis carries rate limits and the change stream; both are required
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		return nil, err
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (continuing without earn queue)", err)
		queueClient = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		jwtService:  jwt.NewService(cfg.JWTSecret),
		queueClient: queueClient,
		bus:         event.NewBus(),
	}, nil
}

func (a *App) Run() error {
	// Initialize repositories
	pointsRepo := persistent.NewPointsRepository(a.db)

	// Initialize use cases
	pointsUseCase := usecase.NewPointsUseCase(
		pointsRepo,
		a.bus,
		a.log,
		usecase.WithUsageRequestTTL(a.cfg.UsageRequestTTL),
	)

	// Fan ledger changes out to every replica's WebSocket clients
	bridge := notifier.NewRedisBridge(a.redisClient, a.log)
	pointsUseCase.Subscribe(bridge.Handle)

	if a.queueClient != nil {
		consumer := pointsAMQP.NewEarnConsumer(pointsUseCase, a.log)
		if err := consumer.Start(a.queueClient); err != nil {
			a.log.Error("Failed to start earn consumer: %v", err)
			return err
		}
	}

	// Initialize HTTP handlers
	pointsHandler := pointsHTTP.NewPointsHandler(pointsUseCase, a.log)
	streamHandler := pointsHTTP.NewStreamHandler(a.redisClient, a.jwtService, a.log)

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "dropped_events": a.bus.Dropped()}
		if a.queueClient != nil {
			if depth, err := a.queueClient.GetQueueLength(); err == nil {
				status["earn_queue_depth"] = depth
			}
		}
		c.JSON(http.StatusOK, status)
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// WebSocket authenticates through the token query parameter
	r.GET("/api/v1/points/ws", streamHandler.HandleWebSocket)

	api := r.Group("/api/v1/points")
	api.Use(middleware.AuthMiddleware(a.jwtService))
	api.Use(middleware.RateLimitMiddleware(a.redisClient, 100, time.Minute))
	{
		api.GET("/balance", pointsHandler.GetBalance)
		api.GET("/history", pointsHandler.GetHistory)

		api.POST("/usage-requests", pointsHandler.CreateUsageRequest)
		api.GET("/usage-requests", pointsHandler.ListUsageRequests)
		api.GET("/usage-requests/:id", pointsHandler.GetUsageRequest)
		api.DELETE("/usage-requests/:id", pointsHandler.CancelUsageRequest)

		staff := api.Group("")
		staff.Use(middleware.RequireRole(jwt.RoleStaff))
		{
			staff.POST("/earn", pointsHandler.Earn)
			staff.GET("/usage-requests/code/:code", pointsHandler.LookupByCode)
			// codes are short, so guessing is throttled separately
			staff.POST("/usage-requests/code/:code/confirm",
				middleware.RateLimitMiddleware(a.redisClient, a.cfg.ConfirmRateLimit, time.Minute),
				pointsHandler.ConfirmUsage,
			)
		}
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Points service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down points service...")
}

func (a *App) Shutdown() error {
	// The context is used to inform the server it has 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var shutdownErr error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.Error("Server forced to shutdown: %v", err)
			shutdownErr = err
		}
	}

	// Stop consuming before draining the bus so no new events arrive
	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}
	a.bus.Close()

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	a.log.Info("Points service exited")
	_ = a.log.Sync()
	return shutdownErr
}
