package documents

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/compliance"
	"compliance-backend/internal/shared/server/middleware"
	"compliance-backend/internal/shared/server/respond"
)

// Handler exposes document endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.POST("/documents/classify", h.classify)
	rg.GET("/documents", h.list)
	rg.GET("/documents/current", h.current)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/history", h.history)
	rg.DELETE("/documents/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	defer file.Close()

	doc, err := h.svc.Upload(c.Request.Context(), orgID, header.Filename, file)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "file is not an accepted document", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store document", nil)
		return
	}

	c.Set("documentID", doc.ID)
	respond.JSON(c, http.StatusCreated, NewDocumentView(doc, h.svc.now()))
}

type classifyRequest struct {
	LicenseNumber  string `json:"licenseNumber"`
	OwnerName      string `json:"ownerName"`
	ExpirationDate string `json:"expirationDate"`
}

func (h *Handler) classify(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}

	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	verdict, err := h.svc.Classify(c.Request.Context(), orgID, compliance.Candidate{
		LicenseNumber:  req.LicenseNumber,
		OwnerName:      req.OwnerName,
		ExpirationDate: req.ExpirationDate,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "classification failed", nil)
		return
	}

	c.Set("classifierVerdict", verdictLabel(verdict))
	respond.OK(c, verdict)
}

func (h *Handler) list(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}

	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	docs, err := h.svc.List(c.Request.Context(), orgID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	now := h.svc.now()
	views := make([]DocumentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, NewDocumentView(doc, now))
	}
	respond.OK(c, gin.H{"documents": views})
}

func (h *Handler) current(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}

	views, err := h.svc.Current(c.Request.Context(), orgID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	respond.OK(c, gin.H{"documents": views})
}

func (h *Handler) get(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}

	doc, err := h.svc.Get(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
		return
	}
	respond.OK(c, NewDocumentView(doc, h.svc.now()))
}

func (h *Handler) history(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}

	docs, err := h.svc.History(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load history", nil)
		return
	}

	now := h.svc.now()
	views := make([]DocumentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, NewDocumentView(doc, now))
	}
	respond.OK(c, gin.H{"documents": views})
}

func (h *Handler) remove(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	if orgID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "org context required", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), orgID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		return
	}
	respond.OK(c, gin.H{"deleted": true})
}

func verdictLabel(v compliance.Verdict) string {
	switch {
	case v.IsDuplicate:
		return "duplicate"
	case v.IsRenewal:
		return "renewal"
	case v.IsHistorical:
		return "historical"
	default:
		return "new"
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
