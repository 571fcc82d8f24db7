package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resurate/internal/auth"
	"resurate/internal/files"
	"resurate/internal/resumes"
	"resurate/internal/services/health"
	"resurate/internal/shared/config"
	"resurate/internal/shared/metrics"
	"resurate/internal/shared/server/middleware"
	"resurate/internal/shared/server/respond"
	"resurate/internal/users"
	"resurate/internal/web"
	"resurate/internal/wipe"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config   config.Config
	Verifier middleware.TokenVerifier
	Gate     *auth.Gate
	Health   *health.Service
	Users    *users.Handler
	Resumes  *resumes.Handler
	Files    *files.Handler
	Wipe     *wipe.Handler
	Google   *auth.GoogleService
	Forms    *auth.FormHandler
	Web      *web.Handler
	Limiter  *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" || deps.Config.Env == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Session(deps.Verifier),
	)

	uploads := middleware.RateLimitConfig{
		Group:   middleware.UploadGroup,
		Quota:   middleware.PerMinute(deps.Config.UploadsPerMinute),
		Limiter: deps.Limiter,
	}
	if uploads.Limiter == nil {
		uploads.Limiter = middleware.NewRateLimiter(nil)
	}
	uploadLimit := middleware.RateLimit(uploads)
	uploads.OnLimited = deps.Web.Limited
	pageUploadLimit := middleware.RateLimit(uploads)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, deps.Health.Status())
	})
	api.GET("/ready", func(c *gin.Context) {
		checks, ok := deps.Health.Readiness(c.Request.Context())
		if !ok {
			c.Header("Retry-After", "1")
			respond.JSON(c, http.StatusServiceUnavailable, gin.H{"ready": false, "checks": checks})
			return
		}
		respond.OK(c, gin.H{"ready": true, "checks": checks})
	})
	api.GET("/metrics", metrics.Handler())
	deps.Users.RegisterRoutes(api)
	if deps.Google != nil {
		deps.Google.RegisterRoutes(api)
	}

	protected := api.Group("", deps.Gate.API())
	deps.Resumes.RegisterRoutes(protected, uploadLimit)
	deps.Files.RegisterRoutes(protected)
	deps.Wipe.RegisterRoutes(protected)

	deps.Forms.RegisterRoutes(r, deps.Gate.Page(false))
	deps.Web.RegisterRoutes(r, pageUploadLimit)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
