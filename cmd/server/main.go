package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mxmkrg/fittrack/internal/api"
	"github.com/mxmkrg/fittrack/internal/coach"
	"github.com/mxmkrg/fittrack/internal/config"
	"github.com/mxmkrg/fittrack/internal/notify"
	"github.com/mxmkrg/fittrack/internal/repository/mongo"
	"github.com/mxmkrg/fittrack/internal/service"
	"github.com/mxmkrg/fittrack/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.Info("Starting FitTrack server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logrus.WithError(err).Fatal("Could not load config")
	}
	logrus.Info("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logrus.WithError(err).Fatal("Could not connect to MongoDB")
	}
	defer func() {
		logrus.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logrus.WithError(err).Error("Failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logrus.Info("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureProfileIndexes(ctx, appDB.Collection("user_profiles"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureRoutineIndexes(ctx, appDB.Collection("routines"))
		mongo.EnsureWorkoutIndexes(ctx, appDB)
		logrus.Info("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize S3 storage")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	profileRepo := mongo.NewMongoProfileRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	routineRepo := mongo.NewMongoRoutineRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	txRunner := mongo.NewTxRunner(dbClient)

	// --- Revalidation Hook ---
	var revalidator notify.Revalidator = notify.Noop{}
	if cfg.Revalidate.URL != "" {
		revalidator = notify.NewHTTP(cfg.Revalidate.URL)
		logrus.WithField("url", cfg.Revalidate.URL).Info("View revalidation hook enabled.")
	}

	// --- Coach Text Provider ---
	var coachService service.CoachService
	if cfg.Coach.Endpoint != "" {
		generator, err := coach.NewHTTPGenerator(cfg.Coach)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize coach text provider")
		}
		coachService = service.NewCoachService(generator, profileRepo, cfg.Coach.TokenBudget)
		logrus.Info("Coach text provider enabled.")
	}

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, workoutRepo, routineRepo, profileRepo, txRunner, cfg.JWT.Secret, cfg.JWT.Expiration)
	workoutService := service.NewWorkoutService(workoutRepo, exerciseRepo, routineRepo, txRunner, revalidator)
	routineService := service.NewRoutineService(routineRepo, txRunner, revalidator)
	exerciseService := service.NewExerciseService(exerciseRepo)
	statsService := service.NewStatsService(workoutRepo)
	profileService := service.NewProfileService(profileRepo, fileStorage)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		authService,
		workoutService,
		routineService,
		exerciseService,
		statsService,
		profileService,
		coachService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logrus.WithField("address", cfg.Server.Address).Info("Server starting")

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("ListenAndServe error")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logrus.WithError(err).Fatal("Server forced to shutdown")
	}

	logrus.Info("Server exiting.")
}
