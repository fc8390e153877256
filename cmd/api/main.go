package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook-api/internal/config"
	"github.com/noah-isme/gema-gradebook-api/internal/database"
	"github.com/noah-isme/gema-gradebook-api/internal/events"
	"github.com/noah-isme/gema-gradebook-api/internal/handler"
	"github.com/noah-isme/gema-gradebook-api/internal/middleware"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
	"github.com/noah-isme/gema-gradebook-api/internal/router"
	"github.com/noah-isme/gema-gradebook-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	probes := map[string]handler.HealthProbe{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	// Redis and NATS are optional; without them grades are computed on every read
	// and grading events are only logged.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		probes["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
		probes["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	identities := service.NewIdentityResolver(userRepo, logger)
	ledger := service.NewWeightLedger(courseRepo, assignmentRepo, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	gradeCache := service.NewGradeCache(redisClient, cfg.GradeCacheTTL, logger)
	publisher := events.NewNATSPublisher(natsConn, cfg.EventSubjectPrefix, logger)

	gradeAggregator := service.NewGradeAggregator(courseRepo, assignmentRepo, submissionRepo, identities, gradeCache, cfg.EmptyCategoryPolicy, logger)
	attendanceAggregator := service.NewAttendanceAggregator(attendanceRepo, identities, logger)
	summaryService := service.NewStudentSummaryService(enrollmentRepo, identities, gradeAggregator, attendanceAggregator, logger)
	modeController := service.NewGradingModeController(courseRepo, assignmentRepo, validate, activityService, publisher, gradeCache, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, ledger, validate, activityService, gradeCache, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, identities, validate, gradeCache, logger)
	gradingService := service.NewGradingService(submissionRepo, assignmentRepo, identities, validate, activityService, gradeCache, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, courseRepo, identities, validate, logger)
	courseService := service.NewCourseService(courseRepo, validate, activityService, logger)
	adminPolicy := service.NewAuthorizationPolicy(cfg.AdminAllowList, identities)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:         &logger,
		RequestTimeout: cfg.RequestTimeout,
		AccessLog:      cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		GradeHandler:      handler.NewGradeHandler(gradeAggregator, attendanceAggregator, summaryService, identities, logger),
		WeightHandler:     handler.NewWeightHandler(ledger, validate, logger),
		GradingHandler:    handler.NewGradingHandler(modeController, activityService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, gradingService, identities, logger),
		AttendanceHandler: handler.NewAttendanceHandler(attendanceService, logger),
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		IdentityHandler:   handler.NewIdentityHandler(identities),
		HealthProbes:      probes,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		Guards: handler.Guards{
			Staff: middleware.RequireRole("teacher", "admin"),
			Admin: middleware.RequireAdmin(adminPolicy),
			Write: middleware.RateLimit("grading-write", cfg.WriteRateLimit, cfg.WriteRateWindow),
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Msg("gradebook api started")
	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
