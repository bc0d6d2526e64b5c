package api

import (
	"net/http"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	workoutService service.WorkoutService,
	routineService service.RoutineService,
	exerciseService service.ExerciseService,
	statsService service.StatsService,
	profileService service.ProfileService,
	coachService service.CoachService,
) {
	authHandler := NewAuthHandler(authService)
	workoutHandler := NewWorkoutHandler(workoutService)
	routineHandler := NewRoutineHandler(routineService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	statsHandler := NewStatsHandler(statsService)
	profileHandler := NewProfileHandler(profileService)
	coachHandler := NewCoachHandler(coachService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, ok := callerID(c)
			if !ok {
				return
			}
			role, _ := c.Get(ContextUserRoleKey)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
		})
		protected.DELETE("/me", authHandler.DeleteAccount)

		// --- Workout Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.Plan)
			workoutGroup.GET("", workoutHandler.List)
			workoutGroup.DELETE("", workoutHandler.ClearAll)
			workoutGroup.POST("/archive-old", workoutHandler.ArchiveOld)

			workoutGroup.GET("/:workoutId", workoutHandler.Get)
			workoutGroup.PATCH("/:workoutId", workoutHandler.Update)
			workoutGroup.DELETE("/:workoutId", workoutHandler.Delete)
			workoutGroup.POST("/:workoutId/start", workoutHandler.Start)
			workoutGroup.POST("/:workoutId/complete", workoutHandler.Complete)
			workoutGroup.POST("/:workoutId/archive", workoutHandler.Archive)
			workoutGroup.POST("/:workoutId/unarchive", workoutHandler.Unarchive)
		}

		// --- Routine Routes ---
		routineGroup := protected.Group("/routines")
		{
			routineGroup.POST("", routineHandler.Create)
			routineGroup.GET("", routineHandler.List)
			routineGroup.DELETE("", routineHandler.Clear)
			routineGroup.POST("/seed", routineHandler.Seed)
			routineGroup.DELETE("/:routineId", routineHandler.Delete)
			routineGroup.POST("/:routineId/start", workoutHandler.StartFromRoutine)
		}

		// --- Exercise Catalog Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.Search)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.Get)
			// Seeding rewrites the global catalog; admins only.
			exerciseGroup.POST("/seed", RoleMiddleware(domain.RoleAdmin), exerciseHandler.Seed)
		}

		// --- Stats Routes ---
		statsGroup := protected.Group("/stats")
		{
			statsGroup.GET("/summary", statsHandler.Summary)
			statsGroup.GET("/streak", statsHandler.Streak)
		}

		// --- Profile Routes ---
		profileGroup := protected.Group("/profile")
		{
			profileGroup.GET("", profileHandler.Get)
			profileGroup.PUT("", profileHandler.Upsert)
			profileGroup.POST("/avatar/upload-url", profileHandler.RequestAvatarUpload)
			profileGroup.POST("/avatar/confirm", profileHandler.ConfirmAvatar)
			profileGroup.GET("/avatar/url", profileHandler.AvatarURL)
			profileGroup.POST("/photos/upload-url", profileHandler.RequestProgressPhotoUpload)
		}

		// --- Coach Routes ---
		protected.POST("/coach/chat", coachHandler.Chat)
	}
}
