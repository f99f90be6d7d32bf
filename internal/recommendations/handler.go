package recommendations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vendoreval-backend/internal/shared/server/middleware"
	"vendoreval-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the recommendations service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches recommendation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/evaluations/:id/recommendations", h.listByEvaluation)
	rg.GET("/evaluations/:id/recommendations/summary", middleware.RequireAdmin(), h.summary)
	rg.GET("/vendors/:id/recommendations", h.listByVendor)
	rg.GET("/recommendations/:id", h.get)
	rg.PATCH("/recommendations/:id", h.updateStatus)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// listByEvaluation returns every vendor's items to admins and only the
// caller's own items to vendors.
func (h *Handler) listByEvaluation(c *gin.Context) {
	evaluationID := c.Param("id")
	var (
		recs []Recommendation
		err  error
	)
	if middleware.IsAdmin(c) {
		recs, err = h.Svc.ListByEvaluation(c.Request.Context(), evaluationID)
	} else {
		vendorID := middleware.VendorIDFromContext(c)
		if vendorID == "" {
			respond.Error(c, http.StatusForbidden, "forbidden", "vendor scope required", nil)
			return
		}
		recs, err = h.Svc.ListByPair(c.Request.Context(), evaluationID, vendorID)
	}
	if err != nil {
		writeError(c, err, "failed to list recommendations")
		return
	}
	respond.Items(c, recs)
}

func (h *Handler) listByVendor(c *gin.Context) {
	vendorID := c.Param("id")
	if !middleware.CanActForVendor(c, vendorID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed for this vendor", nil)
		return
	}
	recs, err := h.Svc.ListByVendor(c.Request.Context(), vendorID)
	if err != nil {
		writeError(c, err, "failed to list recommendations")
		return
	}
	respond.Items(c, recs)
}

func (h *Handler) summary(c *gin.Context) {
	summary, err := h.Svc.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to summarize recommendations")
		return
	}
	respond.OK(c, summary)
}

func (h *Handler) get(c *gin.Context) {
	rec, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load recommendation")
		return
	}
	if !middleware.CanActForVendor(c, rec.VendorID) {
		// Hide existence from other vendors.
		respond.Error(c, http.StatusNotFound, "not_found", "recommendation not found", nil)
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	ctx := c.Request.Context()
	rec, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load recommendation")
		return
	}
	if !middleware.CanActForVendor(c, rec.VendorID) {
		respond.Error(c, http.StatusNotFound, "not_found", "recommendation not found", nil)
		return
	}
	updated, err := h.Svc.UpdateStatus(ctx, rec.ID, req.Status)
	if err != nil {
		writeError(c, err, "failed to update recommendation")
		return
	}
	respond.OK(c, updated)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "recommendation not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
