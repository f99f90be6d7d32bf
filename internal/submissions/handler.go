package submissions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vendoreval-backend/internal/recommendations"
	"vendoreval-backend/internal/shared/server/middleware"
	"vendoreval-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the submissions service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches submission routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	pair := rg.Group("/evaluations/:id/vendors/:vendorId")
	pair.Use(h.requireVendorAccess)
	pair.GET("/responses", h.listResponses)
	pair.PUT("/responses", h.saveResponses)
	pair.GET("/progress", h.progress)
	pair.POST("/submit", h.submit)
	pair.POST("/reconcile", middleware.RequireAdmin(), h.reconcile)
}

type saveRequest struct {
	Responses []Input `json:"responses"`
}

func (h *Handler) requireVendorAccess(c *gin.Context) {
	if !middleware.CanActForVendor(c, c.Param("vendorId")) {
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed for this vendor", nil)
		return
	}
	c.Next()
}

func (h *Handler) listResponses(c *gin.Context) {
	items, err := h.Svc.ListResponses(c.Request.Context(), c.Param("id"), c.Param("vendorId"))
	if err != nil {
		writeError(c, err, "failed to list responses")
		return
	}
	respond.Items(c, items)
}

func (h *Handler) saveResponses(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	result, err := h.Svc.SaveResponses(c.Request.Context(), c.Param("id"), c.Param("vendorId"), req.Responses)
	if err != nil {
		writeError(c, err, "failed to save responses")
		return
	}
	c.Set("saveOutcome", string(result.Outcome))
	status := http.StatusOK
	if result.Outcome == OutcomeFailed {
		status = http.StatusUnprocessableEntity
	}
	respond.JSON(c, status, result)
}

func (h *Handler) progress(c *gin.Context) {
	progress, err := h.Svc.Progress(c.Request.Context(), c.Param("id"), c.Param("vendorId"))
	if err != nil {
		writeError(c, err, "failed to compute progress")
		return
	}
	respond.OK(c, progress)
}

func (h *Handler) submit(c *gin.Context) {
	result, err := h.Svc.Submit(c.Request.Context(), c.Param("id"), c.Param("vendorId"))
	if err != nil {
		if errors.Is(err, ErrIncomplete) {
			respond.Error(c, http.StatusConflict, "incomplete", "all required questions must be answered", gin.H{
				"progress": result.Progress,
			})
			return
		}
		writeError(c, err, "failed to submit evaluation")
		return
	}
	respond.OK(c, result)
}

func (h *Handler) reconcile(c *gin.Context) {
	result, err := h.Svc.Reconcile(c.Request.Context(), c.Param("id"), c.Param("vendorId"))
	if err != nil {
		writeError(c, err, "failed to reconcile recommendations")
		return
	}
	respond.OK(c, gin.H{"result": result, "counts": result.Counts()})
}

func writeError(c *gin.Context, err error, fallback string) {
	var scopeErr *recommendations.InvalidScopeError
	switch {
	case errors.As(err, &scopeErr):
		respond.Error(c, http.StatusBadRequest, "invalid_scope", scopeErr.Error(), gin.H{"violations": scopeErr.Violations})
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotAssigned):
		respond.Error(c, http.StatusNotFound, "not_assigned", "vendor is not assigned to this evaluation", nil)
	case errors.Is(err, ErrAlreadySubmitted):
		respond.Error(c, http.StatusConflict, "already_submitted", "evaluation already submitted", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
