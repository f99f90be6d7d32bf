package vendors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vendoreval-backend/internal/shared/server/middleware"
	"vendoreval-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the vendors service.
type Handler struct {
	Svc *Service
	// OwnerChanged is called after a vendor's owner is updated.
	OwnerChanged func(vendorID string)
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, ownerChanged func(vendorID string)) *Handler {
	return &Handler{Svc: svc, OwnerChanged: ownerChanged}
}

// RegisterRoutes attaches vendor routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := middleware.RequireAdmin()
	rg.POST("/vendors", admin, h.create)
	rg.GET("/vendors", admin, h.list)
	rg.GET("/vendors/:id", h.get)
	rg.PUT("/vendors/:id/owner", admin, h.setOwner)
}

type ownerRequest struct {
	OwnerProfileID *string `json:"owner_profile_id"`
}

func (h *Handler) create(c *gin.Context) {
	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	vendor, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "failed to create vendor")
		return
	}
	respond.Created(c, vendor)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list vendors")
		return
	}
	respond.Items(c, items)
}

func (h *Handler) get(c *gin.Context) {
	vendorID := c.Param("id")
	if !middleware.CanActForVendor(c, vendorID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed for this vendor", nil)
		return
	}
	vendor, err := h.Svc.Get(c.Request.Context(), vendorID)
	if err != nil {
		writeError(c, err, "failed to load vendor")
		return
	}
	respond.OK(c, vendor)
}

func (h *Handler) setOwner(c *gin.Context) {
	var req ownerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	vendor, err := h.Svc.SetOwner(c.Request.Context(), c.Param("id"), req.OwnerProfileID)
	if err != nil {
		writeError(c, err, "failed to update vendor owner")
		return
	}
	if h.OwnerChanged != nil {
		h.OwnerChanged(vendor.ID)
	}
	respond.OK(c, vendor)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "vendor not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
