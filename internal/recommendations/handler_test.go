package recommendations

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vendoreval-backend/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	seed := []Recommendation{
		{ID: "rec-1", ResponseID: "resp-1", EvaluationID: "eval-1", VendorID: "vendor-1", QuestionID: "q-1", Text: "a", Status: StatusPending, Priority: PriorityHigh, CreatedAt: now, UpdatedAt: now},
		{ID: "rec-2", ResponseID: "resp-2", EvaluationID: "eval-1", VendorID: "vendor-2", QuestionID: "q-1", Text: "a", Status: StatusPending, Priority: PriorityMedium, CreatedAt: now, UpdatedAt: now},
	}
	for _, res := range repo.UpsertBatch(context.Background(), seed) {
		if res.Err != nil {
			t.Fatalf("seed: %v", res.Err)
		}
	}
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth("test"))
	NewHandler(NewService(repo)).RegisterRoutes(api)
	return r, repo
}

func doRequest(r http.Handler, method, path, role, vendorID string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	if vendorID != "" {
		req.Header.Set("X-Vendor-Id", vendorID)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestListByEvaluationScopesVendorCallers(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := doRequest(r, http.MethodGet, "/api/v1/evaluations/eval-1/recommendations", "", "vendor-1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Items []Recommendation `json:"items"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].ID != "rec-1" {
		t.Fatalf("expected only vendor-1 item, got %+v", body.Items)
	}

	resp = doRequest(r, http.MethodGet, "/api/v1/evaluations/eval-1/recommendations", "admin", "", nil)
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 2 {
		t.Fatalf("expected admin to see 2 items, got %d", len(body.Items))
	}
}

func TestListByVendorForbidsOtherVendors(t *testing.T) {
	r, _ := newTestRouter(t)
	resp := doRequest(r, http.MethodGet, "/api/v1/vendors/vendor-2/recommendations", "vendor", "vendor-1", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestPatchStatusUpdatesOnlyStatus(t *testing.T) {
	r, repo := newTestRouter(t)
	resp := doRequest(r, http.MethodPatch, "/api/v1/recommendations/rec-1", "vendor", "vendor-1",
		[]byte(`{"status":"in_progress"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	rec, err := repo.GetByID(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Status != StatusInProgress || rec.Text != "a" || rec.Priority != PriorityHigh {
		t.Fatalf("unexpected row after patch: %+v", rec)
	}
}

func TestPatchStatusRejectsUnknownStatus(t *testing.T) {
	r, _ := newTestRouter(t)
	resp := doRequest(r, http.MethodPatch, "/api/v1/recommendations/rec-1", "admin", "", []byte(`{"status":"done"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetHidesOtherVendorsItems(t *testing.T) {
	r, _ := newTestRouter(t)
	resp := doRequest(r, http.MethodGet, "/api/v1/recommendations/rec-2", "vendor", "vendor-1", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSummaryRequiresAdmin(t *testing.T) {
	r, _ := newTestRouter(t)
	resp := doRequest(r, http.MethodGet, "/api/v1/evaluations/eval-1/recommendations/summary", "vendor", "vendor-1", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
	resp = doRequest(r, http.MethodGet, "/api/v1/evaluations/eval-1/recommendations/summary", "admin", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var summary Summary
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Total != 2 || summary.Open != 2 || summary.ByPriority[PriorityHigh] != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
