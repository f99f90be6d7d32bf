package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vendoreval-backend/internal/evaluations"
	"vendoreval-backend/internal/recommendations"
	"vendoreval-backend/internal/services/health"
	"vendoreval-backend/internal/shared/config"
	"vendoreval-backend/internal/shared/metrics"
	"vendoreval-backend/internal/shared/server/middleware"
	"vendoreval-backend/internal/shared/server/respond"
	"vendoreval-backend/internal/submissions"
	"vendoreval-backend/internal/users"
	"vendoreval-backend/internal/vendors"
)

// RouterDeps holds the handlers the router mounts.
type RouterDeps struct {
	Config                config.Config
	Health                *health.Service
	EvaluationHandler     *evaluations.Handler
	VendorHandler         *vendors.Handler
	UserHandler           *users.Handler
	SubmissionHandler     *submissions.Handler
	RecommendationHandler *recommendations.Handler
	RateLimiter           *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	cfg := deps.Config
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.GroupSubmit: {Rate: cfg.SubmitRatePerSec, Burst: cfg.SubmitBurst},
			},
			GroupFor: middleware.SubmissionGroupFor,
			Limiter:  deps.RateLimiter,
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status, ok := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	api.GET("/metrics", metrics.Handler())

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.VendorHandler != nil {
		deps.VendorHandler.RegisterRoutes(api)
	}
	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.RegisterRoutes(api)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterRoutes(api)
	}
	if deps.RecommendationHandler != nil {
		deps.RecommendationHandler.RegisterRoutes(api)
	}

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
