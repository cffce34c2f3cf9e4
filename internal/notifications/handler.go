package notifications

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/shared/server/middleware"
	"compliance-backend/internal/shared/server/respond"
)

// Handler exposes notification endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches notification routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.list)
	rg.POST("/notifications/:id/read", h.markRead)
}

func (h *Handler) list(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}

	unreadOnly := strings.EqualFold(c.Query("unread"), "true")
	limit := 50
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	list, err := h.Svc.List(c.Request.Context(), orgID, unreadOnly, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list notifications", nil)
		return
	}
	if list == nil {
		list = []Notification{}
	}
	respond.OK(c, gin.H{"notifications": list})
}

func (h *Handler) markRead(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}

	if err := h.Svc.MarkRead(c.Request.Context(), orgID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "notification not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update notification", nil)
		return
	}
	respond.OK(c, gin.H{"read": true})
}
