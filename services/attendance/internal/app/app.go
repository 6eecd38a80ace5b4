package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"itnfit/pkg/cache"
	"itnfit/pkg/config"
	"itnfit/pkg/database"
	"itnfit/pkg/geofence"
	"itnfit/pkg/jwt"
	"itnfit/pkg/logger"
	"itnfit/pkg/middleware"
	"itnfit/pkg/queue"
	attendanceHTTP "itnfit/services/attendance/internal/controller/http"
	"itnfit/services/attendance/internal/repo/persistent"
	"itnfit/services/attendance/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "itnfit/services/attendance/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	validator   *geofence.Validator
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	facility, err := config.LoadFacility(cfg.FacilityConfigPath)
	if err != nil {
		log.Error("Failed to load facility config: %v", err)
		return nil, err
	}
	validator, err := NewValidator(facility)
	if err != nil {
		log.Error("Failed to build validator: %v", err)
		return nil, err
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v (check-in dedupe falls back to the database)", err)
		redisClient = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (check-ins will not be rewarded)", err)
		queueClient = nil
	}

	log.Info("Facility %s at %.4f,%.4f radius %.0fm", facility.Name, facility.Latitude, facility.Longitude, facility.AllowedRadiusMeters)

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		jwtService:  jwt.NewService(cfg.JWTSecret),
		queueClient: queueClient,
		validator:   validator,
	}, nil
}

// NewValidator builds the check-in validator for a facility.
func NewValidator(f *config.Facility) (*geofence.Validator, error) {
	tz, err := time.LoadLocation(f.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("unknown facility time zone %q: %w", f.TimeZone, err)
	}
	return geofence.NewValidator(
		geofence.Location{
			Latitude:            f.Latitude,
			Longitude:           f.Longitude,
			AllowedRadiusMeters: f.AllowedRadiusMeters,
		},
		geofence.Hours{
			WeekdayOpen:  f.WeekdayOpenHour,
			WeekdayClose: f.WeekdayCloseHour,
			WeekendOpen:  f.WeekendOpenHour,
			WeekendClose: f.WeekendCloseHour,
		},
		f.QRCode,
		tz,
	), nil
}

func (a *App) Run() error {
	// Initialize repositories
	attendanceRepo := persistent.NewAttendanceRepository(a.db)

	// A nil *queue.Client must not become a non-nil interface
	var publisher usecase.EarnPublisher
	if a.queueClient != nil {
		publisher = a.queueClient
	}

	// Initialize use cases
	attendanceUseCase := usecase.NewAttendanceUseCase(
		attendanceRepo,
		a.validator,
		a.redisClient,
		publisher,
		a.cfg.AttendanceReward,
		a.log,
	)

	// Initialize HTTP handlers
	attendanceHandler := attendanceHTTP.NewAttendanceHandler(attendanceUseCase, a.log)

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1/attendance")
	api.Use(middleware.AuthMiddleware(a.jwtService))
	if a.redisClient != nil {
		api.Use(middleware.RateLimitMiddleware(a.redisClient, 30, time.Minute))
	}
	{
		api.POST("/check-in", attendanceHandler.CheckIn)
		api.POST("/validate", attendanceHandler.Validate)
		api.GET("/history", attendanceHandler.GetHistory)
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Attendance service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down attendance service...")
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

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	a.log.Info("Attendance service exited")
	_ = a.log.Sync()
	return shutdownErr
}
