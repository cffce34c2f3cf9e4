package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/shared/server/middleware"
	"compliance-backend/internal/shared/server/respond"
)

// Handler exposes the dashboard endpoint.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches dashboard routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.summary)
}

func (h *Handler) summary(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}

	summary, err := h.Svc.Summary(c.Request.Context(), orgID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build dashboard", nil)
		return
	}
	respond.OK(c, summary)
}
