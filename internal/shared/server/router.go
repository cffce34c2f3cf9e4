package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "compliance-backend/internal/auth"
	"compliance-backend/internal/dashboard"
	"compliance-backend/internal/documents"
	"compliance-backend/internal/notifications"
	"compliance-backend/internal/orgs"
	"compliance-backend/internal/processing"
	"compliance-backend/internal/shared/config"
	"compliance-backend/internal/shared/metrics"
	"compliance-backend/internal/shared/server/middleware"
	"compliance-backend/internal/shared/server/respond"
	"compliance-backend/internal/usage"
	"compliance-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up. Nil handlers are
// skipped so tests can mount a subset.
type RouterDeps struct {
	Config               config.Config
	DocumentsHandler     *documents.Handler
	ProcessingHandler    *processing.Handler
	UsageHandler         *usage.Handler
	NotificationsHandler *notifications.Handler
	DashboardHandler     *dashboard.Handler
	UsersHandler         *users.Handler
	OrgsHandler          *orgs.Handler
	GoogleAuth           *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(rateLimits()),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(api)
	}
	if deps.ProcessingHandler != nil {
		deps.ProcessingHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
	}
	if deps.NotificationsHandler != nil {
		deps.NotificationsHandler.RegisterRoutes(api)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.OrgsHandler != nil {
		deps.OrgsHandler.RegisterRoutes(api)
	}
	if deps.Config.Env == "dev" && deps.UsageHandler != nil {
		dev := api.Group("/dev")
		deps.UsageHandler.RegisterDevRoutes(dev)
	}

	return r
}

// rateLimits throttles the expensive routes harder than reads. Uploads and
// extraction kickoffs share the "ingest" bucket.
func rateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"ingest": {Rate: 1, Burst: 5},
			"read":   {Rate: 10, Burst: 30},
		},
		DefaultGroup: "read",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method != http.MethodPost {
				return "read"
			}
			path := c.Request.URL.Path
			if strings.HasSuffix(path, "/process") || strings.HasSuffix(path, "/documents") {
				return "ingest"
			}
			return "read"
		},
	}
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
