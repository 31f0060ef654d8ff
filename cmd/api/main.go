package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/abilitylink/jobboard_be/internal/config"
	"github.com/abilitylink/jobboard_be/internal/db"
	"github.com/abilitylink/jobboard_be/internal/handlers"
	"github.com/abilitylink/jobboard_be/internal/middleware"
	"github.com/abilitylink/jobboard_be/internal/models"
	"github.com/abilitylink/jobboard_be/internal/realtime"
	"github.com/abilitylink/jobboard_be/internal/services/analytics"
	"github.com/abilitylink/jobboard_be/internal/services/rating"
	"github.com/abilitylink/jobboard_be/internal/services/recommend"
	"github.com/abilitylink/jobboard_be/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Println("Redis unavailable, analytics cache disabled:", err)
		rdb = nil
	}

	hub := realtime.NewHub()
	go hub.Run()

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.SeekerProfile{},
		&models.Company{},
		&models.Job{},
		&models.JobApplication{},
		&models.SavedJob{},
		&models.RecommendationRating{},
	); err != nil {
		log.Fatal(err)
	}

	// Stores
	ratingStore := store.NewRatingStore(gdb)
	jobStore := store.NewJobStore(gdb)
	userStore := store.NewUserStore(gdb)
	analyticsStore := store.NewAnalyticsStore(gdb)

	// AI scorer. Without an API key the recommendation endpoints report
	// scoring as unavailable instead of crashing the whole API.
	var scorer recommend.Scorer
	if cfg.GeminiAPIKey != "" {
		gs, err := recommend.NewGeminiScorer(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal("Gemini init failed:", err)
		}
		scorer = gs
	} else {
		log.Println("GEMINI_API_KEY not set, recommendation generation disabled")
	}

	// Services
	ratingSvc := rating.NewService(ratingStore, store.NewDirectory(userStore, jobStore))
	generator := recommend.NewGenerator(ratingStore, jobStore, userStore, scorer, hub)
	analyticsSvc := analytics.NewService(ratingStore, analyticsStore, userStore, rdb)

	// Handlers
	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	jobH := handlers.NewJobHandler(gdb)
	companyH := handlers.NewCompanyHandler(gdb)
	profileH := handlers.NewProfileHandler(gdb)
	ratingH := handlers.NewRatingHandler(ratingSvc)
	recommendH := handlers.NewRecommendationHandler(generator)
	analyticsH := handlers.NewAnalyticsHandler(analyticsSvc)
	notifyH := handlers.NewNotifyHandler(hub)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Get("/jobs", jobH.ListPublic)
	api.Get("/jobs/:id", jobH.GetDetail)

	// protected (JWT cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	// ratings
	protected.Get("/recommendation-ratings", ratingH.List)
	protected.Post("/recommendation-ratings", ratingH.Create)
	protected.Get("/recommendation-ratings/stats/user/:userId", ratingH.UserStats)
	protected.Get("/recommendation-ratings/stats/job/:jobId", ratingH.JobStats)
	protected.Get("/recommendation-ratings/:id", ratingH.Get)
	protected.Put("/recommendation-ratings/:id", ratingH.Update)
	protected.Delete("/recommendation-ratings/:id", ratingH.Delete)

	// analytics before :userId so the static segment wins
	protected.Get("/recommendations/analytics",
		middleware.RequireRoles("admin"),
		analyticsH.Report,
	)
	protected.Post("/recommendations/analytics",
		middleware.RequireRoles("admin"),
		analyticsH.Action,
	)

	// recommendations
	protected.Get("/recommendations/:userId", recommendH.Get)
	protected.Post("/recommendations/:userId", recommendH.Update)
	protected.Delete("/recommendations/:userId", recommendH.Delete)

	// seeker profile wizard
	wizard := protected.Group("/profile", middleware.RequireRoles("jobseeker"))
	wizard.Get("/", profileH.Get)
	wizard.Post("/photo", profileH.UpdatePhoto)
	wizard.Patch("/basics", profileH.UpdateBasics)
	wizard.Patch("/skills", profileH.UpdateSkills)
	wizard.Patch("/preferences", profileH.UpdatePreferences)
	wizard.Patch("/accessibility", profileH.UpdateAccessibility)
	wizard.Post("/submit", profileH.Submit)

	// seeker job actions
	protected.Post("/jobs/:id/apply",
		middleware.RequireRoles("jobseeker"),
		jobH.Apply,
	)
	protected.Post("/jobs/:id/save",
		middleware.RequireRoles("jobseeker"),
		jobH.Save,
	)
	protected.Delete("/jobs/:id/save",
		middleware.RequireRoles("jobseeker"),
		jobH.Unsave,
	)
	protected.Get("/saved-jobs",
		middleware.RequireRoles("jobseeker"),
		jobH.ListSaved,
	)
	protected.Get("/applications",
		middleware.RequireRoles("jobseeker"),
		jobH.ListApplications,
	)

	// employer
	employer := protected.Group("/employer", middleware.RequireRoles("employer"))
	employer.Put("/company", companyH.Upsert)
	employer.Get("/company", companyH.GetMine)
	employer.Get("/jobs", jobH.ListMine)
	employer.Post("/jobs", jobH.Create)
	employer.Put("/jobs/:id", jobH.Update)
	employer.Patch("/jobs/:id/publish", jobH.Publish)
	employer.Patch("/jobs/:id/close", jobH.Close)
	employer.Get("/jobs/:id/applications", jobH.ListApplicants)

	// WebSocket endpoint, auth via query param
	app.Get("/ws/notify", websocket.New(notifyH.WebSocketHandler))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
