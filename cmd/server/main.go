package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	identityapp "github.com/tutorlink/backend/internal/application/identity"
	messagingapp "github.com/tutorlink/backend/internal/application/messaging"
	tutoringapp "github.com/tutorlink/backend/internal/application/tutoring"
	"github.com/tutorlink/backend/internal/infrastructure/auth"
	"github.com/tutorlink/backend/internal/infrastructure/config"
	"github.com/tutorlink/backend/internal/infrastructure/event"
	"github.com/tutorlink/backend/internal/infrastructure/logger"
	"github.com/tutorlink/backend/internal/infrastructure/persistence"
	"github.com/tutorlink/backend/internal/infrastructure/planner"
	"github.com/tutorlink/backend/internal/infrastructure/telemetry"
	"github.com/tutorlink/backend/internal/interfaces/http/handler"
	"github.com/tutorlink/backend/internal/interfaces/http/middleware"
	"github.com/tutorlink/backend/internal/interfaces/http/router"
	"github.com/tutorlink/backend/internal/interfaces/ws"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting TutorLink backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracing(cfg.Telemetry.Enabled, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Token blacklist: Redis when reachable, in-memory otherwise. The
	// in-memory fallback means revocations do not survive a restart.
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing Redis token blacklist", zap.Error(err))
			}
		}()
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	convRepo := persistence.NewGormConversationRepository(db.DB)
	msgRepo := persistence.NewGormMessageRepository(db.DB)
	notifRepo := persistence.NewGormNotificationRepository(db.DB)
	subjectRepo := persistence.NewGormSubjectRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	sessionRepo := persistence.NewGormSessionRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	planRepo := persistence.NewGormStudyPlanRepository(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, eventBus, log)
	userService := identityapp.NewUserService(userRepo, eventBus, log)

	// The live hub and the messaging service depend on each other: the
	// service reads presence from the hub, the hub hands markRead frames
	// to the service. Wire the second edge after both exist.
	hub := ws.NewHub(cfg.WS, convRepo, userService, log)
	messagingService := messagingapp.NewMessagingService(
		convRepo, msgRepo, notifRepo, userRepo, eventBus, hub.Presence(), log)
	hub.SetReadMarker(messagingService)

	notificationService := messagingapp.NewNotificationService(notifRepo, cfg.Messaging.NotificationPageSize, log)

	// Tutoring services
	subjectService := tutoringapp.NewSubjectService(subjectRepo, log)
	taskService := tutoringapp.NewTaskService(taskRepo, subjectRepo, userRepo, log)
	sessionService := tutoringapp.NewSessionService(sessionRepo, subjectRepo, userRepo, log)
	reviewService := tutoringapp.NewReviewService(reviewRepo, sessionRepo, log)
	planService := tutoringapp.NewPlanService(planRepo, subjectRepo, planner.NewHeuristicGenerator(log), log)

	// Post-commit event handlers: durable notifications first, then live
	// fan-out. Handler failures are logged by the bus and never unwind
	// the write that produced the event.
	notifier := messagingapp.NewNotifier(notifRepo, log)
	eventBus.Subscribe(notifier)
	dispatcher := ws.NewLiveDispatcher(hub, log)
	eventBus.Subscribe(dispatcher)

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if tracerProvider.IsEnabled() {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	router.Setup(engine, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		Conversation: handler.NewConversationHandler(messagingService),
		Notification: handler.NewNotificationHandler(notificationService),
		Subject:      handler.NewSubjectHandler(subjectService),
		Task:         handler.NewTaskHandler(taskService),
		Session:      handler.NewSessionHandler(sessionService, reviewService),
		Review:       handler.NewReviewHandler(reviewService),
		Plan:         handler.NewPlanHandler(planService),
		Health:       handler.NewHealthHandler(db, version),
	}, middleware.RequireAuth(authService, log))

	// Live surface: the websocket endpoint authenticates during the
	// handshake rather than through the HTTP auth middleware
	gateway := ws.NewGateway(hub, authService, cfg.WS, log)
	engine.GET("/ws", gateway.Handle)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
