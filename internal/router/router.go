package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hireloop/assessd/internal/config"
	"github.com/hireloop/assessd/internal/handler"
	"github.com/hireloop/assessd/internal/middleware"
	"github.com/hireloop/assessd/internal/response"
	"github.com/hireloop/assessd/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Assessment *handler.AssessmentHandler
	Proctor    *handler.ProctorHandler
	Recruiter  *handler.RecruiterHandler
	Report     *handler.ReportHandler
	MonitorWS  *handler.MonitorWSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the public assessment surface (per IP). Generous
	// enough for the 20s heartbeat + 30s snapshot cadence plus retries.
	assessmentLimiter := middleware.NewRateLimiter(60, time.Minute)

	// ─── 1. Assessment Group (Entry Token In Body, Rate Limited) ───────
	// The entry token is validated inside the handlers because it travels
	// in the request body on this surface.
	assessment := router.Group("/api/v1/assessment")
	assessment.Use(assessmentLimiter.Middleware())
	{
		assessment.POST("/start", handlers.Assessment.Start)
		assessment.POST("/submit", handlers.Assessment.Submit)
		assessment.POST("/heartbeat", handlers.Proctor.Heartbeat)
		assessment.POST("/snapshot", handlers.Proctor.Snapshot)
		// The report is a GET, so the token travels as ?token= and the
		// middleware validates it.
		assessment.GET("/report", middleware.RequireEntryToken(authService), handlers.Report.GetOwnReportPDF)
	}

	// ─── 2. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/recruiter/login", handlers.Auth.RecruiterLogin)
	}

	// ─── 3. Recruiter Group (JWT) ──────────────────────────────────────
	recruiterAPI := router.Group("/api/v1/recruiter")
	recruiterAPI.Use(middleware.RequireRecruiterJWT(authService))
	{
		recruiterAPI.GET("/tests", handlers.Recruiter.ListTests)
		recruiterAPI.POST("/tests", handlers.Recruiter.CreateTest)
		recruiterAPI.POST("/tests/:test_id/questions", handlers.Recruiter.AddQuestion)
		recruiterAPI.POST("/candidates", handlers.Recruiter.CreateCandidate)
		recruiterAPI.POST("/invites", handlers.Recruiter.Invite)
		recruiterAPI.GET("/attempts/:attempt_id", handlers.Recruiter.GetAttemptStatus)
		recruiterAPI.GET("/attempts/:attempt_id/report", handlers.Report.GetAttemptPDF)
	}

	// ─── 4. WebSocket Group (Recruiter JWT via query token) ────────────
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireRecruiterJWT(authService))
	{
		wsGroup.GET("/recruiter/tests/:test_id/monitor", handlers.MonitorWS.MonitorStream)
	}

	return router
}
