package orgs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/shared/server/middleware"
	"compliance-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/org", h.get)
	rg.DELETE("/org", h.purge)
}

func (h *Handler) get(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}
	org, err := h.Svc.Get(c.Request.Context(), orgID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "org not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load org", nil)
		return
	}
	respond.JSON(c, http.StatusOK, org)
}

// purge is the danger-zone endpoint: it wipes the tenant's documents,
// jobs, notifications, and quota state.
func (h *Handler) purge(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}
	if err := h.Svc.Purge(c.Request.Context(), orgID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "org not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to purge org", nil)
		return
	}
	respond.OK(c, gin.H{"purged": true})
}
