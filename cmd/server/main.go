// Package main runs the academic event platform HTTP server with
// WebSocket seat updates and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atena-events/backend/config"
	"github.com/atena-events/backend/internal/activities"
	"github.com/atena-events/backend/internal/auth"
	"github.com/atena-events/backend/internal/certificates"
	"github.com/atena-events/backend/internal/enrollments"
	"github.com/atena-events/backend/internal/events"
	"github.com/atena-events/backend/internal/middleware"
	"github.com/atena-events/backend/internal/presence"
	"github.com/atena-events/backend/internal/realtime"
	"github.com/atena-events/backend/internal/responsibilities"
	"github.com/atena-events/backend/internal/users"
	"github.com/atena-events/backend/internal/worker"
	"github.com/atena-events/backend/pkg/database"
	"github.com/atena-events/backend/pkg/queue"
	"github.com/atena-events/backend/pkg/redis"
	"github.com/atena-events/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	evaluator := certificates.NewEvaluator(certificates.MinimumAttendance{
		Ratio: cfg.Certificates.MinAttendanceRatio,
	})
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, logger)

	// Activities, schedules, rooms, categories
	activityRepo := activities.NewRepository(pool)
	activityHandler := activities.NewHandler(activityRepo, logger)

	// Enrollments
	enrollmentRepo := enrollments.NewRepository(pool)
	enrollmentService := enrollments.NewService(enrollmentRepo, hub, logger)
	enrollmentHandler := enrollments.NewHandler(enrollmentService, logger)

	// Presence and certificate readiness
	presenceRepo := presence.NewRepository(pool)
	presenceTracker := presence.NewTracker(presenceRepo, evaluator, jobQueue, logger)
	presenceHandler := presence.NewHandler(presenceTracker)

	// Responsibilities
	respRepo := responsibilities.NewRepository(pool)
	respService := responsibilities.NewService(respRepo)
	respHandler := responsibilities.NewHandler(respService)

	// Users and deactivation guard
	userRepo := users.NewRepository(pool)
	userService := users.NewService(userRepo)
	userHandler := users.NewHandler(userService)

	// Background worker (readiness aggregation into Redis)
	readinessProcessor := worker.NewReadinessProcessor(pool, rdb.Client, jobQueue, evaluator,
		time.Duration(cfg.Certificates.CacheTTLMinutes)*time.Minute, logger)

	jwtValidate := func(token string) (string, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", err
		}
		return claims.UserID.String(), nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Users
		api.GET("/user", userHandler.List)
		api.GET("/user/:userId", userHandler.Get)
		api.DELETE("/user/:userId", middleware.RequireRole("admin"), userHandler.Deactivate)

		// Responsibilities (organized events + responsible activities)
		api.GET("/user/responsibility/:userId", respHandler.Find)
		api.GET("/user/responsibility/:userId/event", respHandler.FindEvents)
		api.GET("/user/responsibility/:userId/activity", respHandler.FindActivities)
		api.GET("/user/:userId/teaching", respHandler.FindTeaching)

		// Events and organizers
		api.GET("/event", eventHandler.List)
		api.POST("/event", middleware.RequireRole("admin"), eventHandler.Create)
		api.GET("/event/:eventId", eventHandler.Get)
		api.PUT("/event/:eventId", middleware.RequireRole("admin"), eventHandler.Update)
		api.DELETE("/event/:eventId", middleware.RequireRole("admin"), eventHandler.Delete)
		api.POST("/event/:eventId/organizer/:userId", middleware.RequireRole("admin"), eventHandler.AddOrganizer)
		api.DELETE("/event/:eventId/organizer/:userId", middleware.RequireRole("admin"), eventHandler.RemoveOrganizer)

		// Activities, schedules, staff
		api.GET("/event/:eventId/activity", activityHandler.ListByEvent)
		api.POST("/event/:eventId/activity", middleware.RequireRole("admin"), activityHandler.Create)
		api.GET("/activity/:activityId", activityHandler.Get)
		api.PUT("/activity/:activityId", middleware.RequireRole("admin"), activityHandler.Update)
		api.DELETE("/activity/:activityId", middleware.RequireRole("admin"), activityHandler.Delete)
		api.POST("/activity/:activityId/schedule", middleware.RequireRole("admin"), activityHandler.AddSchedule)
		api.DELETE("/schedule/:scheduleId", middleware.RequireRole("admin"), activityHandler.RemoveSchedule)
		api.PUT("/activity/:activityId/user/:userId", middleware.RequireRole("admin"), activityHandler.SetStaff)
		api.DELETE("/activity/:activityId/user/:userId", middleware.RequireRole("admin"), activityHandler.RemoveStaff)

		// Rooms and categories
		api.GET("/category", activityHandler.ListCategories)
		api.POST("/category", middleware.RequireRole("admin"), activityHandler.CreateCategory)
		api.GET("/room", activityHandler.ListRooms)
		api.POST("/room", middleware.RequireRole("admin"), activityHandler.CreateRoom)

		// Enrollment
		api.POST("/activity/registry/:activityId/:userId", enrollmentHandler.Enroll)
		api.DELETE("/activity/registry/:activityId/:userId", enrollmentHandler.Cancel)
		api.PUT("/activity/:activityId/rate/:userId", enrollmentHandler.Rate)

		// Presence
		api.POST("/registration/:registrationId/presence/:scheduleId", presenceHandler.Record)
		api.GET("/registration/:registrationId/presence", presenceHandler.List)
	}

	// WebSocket seat-availability feed (token in query)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go readinessProcessor.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
