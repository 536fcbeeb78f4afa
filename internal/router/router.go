package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/learnedu/learnedu-backend/internal/config"
	"github.com/learnedu/learnedu-backend/internal/handler"
	"github.com/learnedu/learnedu-backend/internal/middleware"
	"github.com/learnedu/learnedu-backend/internal/response"
	"github.com/learnedu/learnedu-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Exam      *handler.ExamHandler
	Result    *handler.ResultHandler
	Hierarchy *handler.HierarchyHandler
	Admin     *handler.AdminHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// The read cache is created by the caller so the attempt manager can flush
// it on websocket submits too.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	readCache *middleware.ResponseCache,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-Cache"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Short-lived read cache for the hot GET endpoints. Any successful
	// write flushes it, so a fresh submission is visible immediately.
	router.Use(readCache.Middleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/signup", handlers.Auth.Signup)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireStudentJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Group (JWT) ────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireStudentJWT(authService))
	{
		api.GET("/exams/mine", handlers.Exam.ListMine)
		api.GET("/exams/:exam_id", handlers.Exam.Get)
		api.GET("/exams/:exam_id/instructions", handlers.Exam.Instructions)
		api.POST("/exams/:exam_id/start", handlers.Exam.Start)

		api.POST("/practice-exams", handlers.Exam.CreatePractice)

		api.POST("/exam-results", handlers.Result.Submit)
		api.GET("/exam-results/mine", handlers.Result.ListMine)
		api.GET("/exam-results/:exam_id", handlers.Result.Get)

		api.GET("/classes", handlers.Hierarchy.ListClasses)
		api.GET("/classes/:class_id/groups", handlers.Hierarchy.ListGroups)
		api.GET("/groups/:group_id/subjects", handlers.Hierarchy.ListSubjects)
		api.GET("/subjects/:subject_id/chapters", handlers.Hierarchy.ListChapters)
		api.GET("/chapters/:chapter_id/topics", handlers.Hierarchy.ListTopics)
	}

	// ─── 3. Admin Group (JWT, admin role) ──────────────────────────────
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireAdminJWT(authService))
	{
		admin.PATCH("/exams/:exam_id/publish", handlers.Admin.Publish)
	}

	// ─── 4. WebSocket Group (WS Auth via query token) ──────────────────
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireWSAuth(authService))
	{
		wsGroup.GET("/exams/:exam_id/stream", handlers.WS.AttemptStream)
	}

	return router
}
