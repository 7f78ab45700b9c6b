package routes

import (
	"errors"

	"legalaware/backend/config"
	"legalaware/backend/controllers"
	"legalaware/backend/middleware"
	"legalaware/backend/services"
	"legalaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// NewApp builds the fiber app with the shared middleware stack.
func NewApp(cfg *config.Config, log *utils.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "legalaware",
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.LogMode != "production"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(log))

	return app
}

func errorHandler(log *utils.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.Error(c, fe.Code, fe)
		}
		return utils.Respond(c, log, err, "Server error")
	}
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, log *utils.Logger, progress *services.ProgressService, gatherer prometheus.Gatherer) {
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "message": "Server is running"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, log, progress)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Article routes
	articleController := controllers.NewArticleController(db, cfg, log, progress)
	articles := app.Group("/api/articles")
	articles.Get("/", articleController.GetArticles)
	articles.Get("/:id", articleController.GetArticle)
	articles.Post("/:id/read", authMiddleware, articleController.MarkRead)
	articles.Post("/:id/like", authMiddleware, articleController.LikeArticle)
	articles.Post("/", authMiddleware, adminMiddleware, articleController.CreateArticle)
	articles.Put("/:id", authMiddleware, adminMiddleware, articleController.UpdateArticle)
	articles.Delete("/:id", authMiddleware, adminMiddleware, articleController.DeleteArticle)

	// Quiz routes
	quizController := controllers.NewQuizController(db, cfg, log, progress)
	quiz := app.Group("/api/quiz")
	quiz.Get("/", quizController.GetQuizzes)
	quiz.Get("/:id", authMiddleware, quizController.GetQuiz)
	quiz.Post("/:id/submit", authMiddleware, quizController.SubmitQuiz)
	quiz.Post("/", authMiddleware, adminMiddleware, quizController.CreateQuiz)
	quiz.Put("/:id", authMiddleware, adminMiddleware, quizController.UpdateQuiz)
	quiz.Delete("/:id", authMiddleware, adminMiddleware, quizController.DeleteQuiz)

	// Comment routes
	commentsController := controllers.NewCommentsController(db, cfg, log, progress)
	comments := app.Group("/api/comments")
	comments.Get("/article/:articleId", commentsController.GetArticleComments)
	comments.Post("/", authMiddleware, commentsController.AddComment)
	comments.Post("/:id/like", authMiddleware, commentsController.LikeComment)
	comments.Post("/:id/reply", authMiddleware, commentsController.ReplyComment)
	comments.Delete("/:id", authMiddleware, commentsController.DeleteComment)

	// User routes
	userController := controllers.NewUserController(db, cfg, log)
	users := app.Group("/api/users", authMiddleware)
	users.Get("/profile", userController.GetProfile)
	users.Put("/profile", userController.UpdateProfile)
	users.Post("/bookmark/:articleId", userController.ToggleBookmark)
	users.Get("/quiz-history", userController.GetQuizHistory)

	// Gamification routes
	gamificationController := controllers.NewGamificationController(db, cfg, log, progress)
	game := app.Group("/api/gamification")
	game.Get("/leaderboard", gamificationController.GetLeaderboard)
	game.Get("/daily-challenge", authMiddleware, gamificationController.GetDailyChallenge)
	game.Post("/complete-challenge", authMiddleware, gamificationController.CompleteChallenge)
	game.Get("/achievements", authMiddleware, gamificationController.GetAchievements)
	game.Get("/stats", authMiddleware, gamificationController.GetStats)
	game.Get("/activity", authMiddleware, gamificationController.GetActivity)

	// Admin routes
	analyticsController := controllers.NewAnalyticsController(db, cfg, log)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/analytics", analyticsController.GetPlatformAnalytics)
}
