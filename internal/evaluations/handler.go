package evaluations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vendoreval-backend/internal/shared/server/middleware"
	"vendoreval-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the evaluations service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches evaluation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := middleware.RequireAdmin()

	rg.POST("/evaluations", admin, h.create)
	rg.GET("/evaluations", h.list)
	rg.GET("/evaluations/:id", h.get)
	rg.PATCH("/evaluations/:id", admin, h.updateStatus)

	rg.POST("/evaluations/:id/questions", admin, h.addQuestion)
	rg.GET("/evaluations/:id/questions", h.listQuestions)
	rg.PATCH("/questions/:id", admin, h.updateQuestion)

	rg.POST("/evaluations/:id/vendors", admin, h.assign)
	rg.GET("/evaluations/:id/vendors", admin, h.listAssignments)
	rg.GET("/vendors/:id/evaluations", h.listVendorAssignments)
}

type statusRequest struct {
	Status string `json:"status"`
}

type assignRequest struct {
	VendorID string `json:"vendor_id"`
}

func (h *Handler) create(c *gin.Context) {
	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	evaluation, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err, "failed to create evaluation")
		return
	}
	respond.Created(c, evaluation)
}

// list returns all evaluations to admins and assigned ones to vendors.
func (h *Handler) list(c *gin.Context) {
	ctx := c.Request.Context()
	if middleware.IsAdmin(c) {
		items, err := h.Svc.List(ctx)
		if err != nil {
			writeError(c, err, "failed to list evaluations")
			return
		}
		respond.Items(c, items)
		return
	}
	vendorID := middleware.VendorIDFromContext(c)
	if vendorID == "" {
		respond.Error(c, http.StatusForbidden, "forbidden", "vendor scope required", nil)
		return
	}
	items, err := h.Svc.ListForVendor(ctx, vendorID)
	if err != nil {
		writeError(c, err, "failed to list evaluations")
		return
	}
	respond.Items(c, items)
}

func (h *Handler) get(c *gin.Context) {
	if !h.canView(c) {
		return
	}
	evaluation, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load evaluation")
		return
	}
	respond.OK(c, evaluation)
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	evaluation, err := h.Svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err, "failed to update evaluation")
		return
	}
	respond.OK(c, evaluation)
}

func (h *Handler) addQuestion(c *gin.Context) {
	var req QuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	question, err := h.Svc.AddQuestion(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err, "failed to add question")
		return
	}
	respond.Created(c, question)
}

func (h *Handler) listQuestions(c *gin.Context) {
	if !h.canView(c) {
		return
	}
	questions, err := h.Svc.ListQuestions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to list questions")
		return
	}
	respond.Items(c, questions)
}

func (h *Handler) updateQuestion(c *gin.Context) {
	var req QuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	question, err := h.Svc.UpdateQuestion(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err, "failed to update question")
		return
	}
	respond.OK(c, question)
}

func (h *Handler) assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	assignment, err := h.Svc.AssignVendor(c.Request.Context(), c.Param("id"), req.VendorID)
	if err != nil {
		writeError(c, err, "failed to assign vendor")
		return
	}
	respond.Created(c, assignment)
}

func (h *Handler) listAssignments(c *gin.Context) {
	items, err := h.Svc.ListAssignmentsByEvaluation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to list assignments")
		return
	}
	respond.Items(c, items)
}

func (h *Handler) listVendorAssignments(c *gin.Context) {
	vendorID := c.Param("id")
	if !middleware.CanActForVendor(c, vendorID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed for this vendor", nil)
		return
	}
	items, err := h.Svc.ListAssignmentsByVendor(c.Request.Context(), vendorID)
	if err != nil {
		writeError(c, err, "failed to list assignments")
		return
	}
	respond.Items(c, items)
}

// canView lets admins through and vendors only into evaluations they are
// assigned to. It writes the error response itself.
func (h *Handler) canView(c *gin.Context) bool {
	if middleware.IsAdmin(c) {
		return true
	}
	vendorID := middleware.VendorIDFromContext(c)
	if vendorID == "" {
		respond.Error(c, http.StatusForbidden, "forbidden", "vendor scope required", nil)
		return false
	}
	if _, err := h.Svc.GetAssignment(c.Request.Context(), c.Param("id"), vendorID); err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "evaluation not found", nil)
			return false
		}
		writeError(c, err, "failed to load assignment")
		return false
	}
	return true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "evaluation not found", nil)
	case errors.Is(err, ErrQuestionNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "question not found", nil)
	case errors.Is(err, ErrAssignmentNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "assignment not found", nil)
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
