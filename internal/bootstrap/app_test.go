package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vendoreval-backend/internal/shared/config"
)

func testConfig() config.Config {
	return config.Config{
		Env:                        "dev",
		RecommendationBatchSize:    10,
		ReconcileLookupConcurrency: 2,
		DirectoryCacheTTL:          time.Minute,
		SubmitRatePerSec:           100,
		SubmitBurst:                100,
	}
}

func call(t *testing.T, app *App, method, path, role, vendorID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "caller-1")
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	if vendorID != "" {
		req.Header.Set("X-Vendor-Id", vendorID)
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %s: %v", resp.Body.String(), err)
	}
}

func TestBuildWithoutDatabaseUsesMemory(t *testing.T) {
	app, err := Build(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if app.DB != nil {
		t.Fatalf("expected no database")
	}
	resp := call(t, app, http.MethodGet, "/api/v1/health", "", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "production"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

// End to end over HTTP: an admin sets up an evaluation, a vendor answers
// and a recommendation assigned to the vendor owner appears.
func TestEvaluationFlow(t *testing.T) {
	app, err := Build(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if resp := call(t, app, http.MethodPut, "/api/v1/users/owner-1", "admin", "", map[string]any{
		"email": "owner@acme.test", "role": "vendor", "vendor_id": "acme",
	}); resp.Code != http.StatusOK {
		t.Fatalf("upsert user: %d %s", resp.Code, resp.Body.String())
	}
	if resp := call(t, app, http.MethodPost, "/api/v1/vendors", "admin", "", map[string]any{
		"vendor_id": "acme", "name": "Acme",
	}); resp.Code != http.StatusCreated {
		t.Fatalf("create vendor: %d %s", resp.Code, resp.Body.String())
	}

	resp := call(t, app, http.MethodPost, "/api/v1/evaluations", "admin", "", map[string]any{"title": "Security"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create evaluation: %d %s", resp.Code, resp.Body.String())
	}
	var evaluation struct {
		ID string `json:"evaluation_id"`
	}
	decode(t, resp, &evaluation)

	resp = call(t, app, http.MethodPost, "/api/v1/evaluations/"+evaluation.ID+"/questions", "admin", "", map[string]any{
		"text": "Is MFA enforced?", "recommendation_text": "Add MFA",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("add question: %d %s", resp.Code, resp.Body.String())
	}
	var question struct {
		ID string `json:"question_id"`
	}
	decode(t, resp, &question)

	if resp := call(t, app, http.MethodPost, "/api/v1/evaluations/"+evaluation.ID+"/vendors", "admin", "", map[string]any{
		"vendor_id": "acme",
	}); resp.Code != http.StatusCreated {
		t.Fatalf("assign: %d %s", resp.Code, resp.Body.String())
	}

	resp = call(t, app, http.MethodPut, "/api/v1/evaluations/"+evaluation.ID+"/vendors/acme/responses", "", "acme", map[string]any{
		"responses": []map[string]any{{"question_id": question.ID, "answer": "No", "response_value": "No"}},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("save: %d %s", resp.Code, resp.Body.String())
	}

	resp = call(t, app, http.MethodGet, "/api/v1/vendors/acme/recommendations", "", "acme", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list recommendations: %d %s", resp.Code, resp.Body.String())
	}
	var list struct {
		Items []struct {
			Text       string  `json:"recommendation_text"`
			Priority   int     `json:"priority"`
			Status     string  `json:"status"`
			AssignedTo *string `json:"assigned_to"`
		} `json:"items"`
	}
	decode(t, resp, &list)
	if len(list.Items) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(list.Items))
	}
	item := list.Items[0]
	if item.Text != "Add MFA" || item.Priority != 1 || item.Status != "pending" {
		t.Fatalf("unexpected recommendation: %+v", item)
	}
	if item.AssignedTo == nil || *item.AssignedTo != "owner-1" {
		t.Fatalf("expected assignment to owner-1, got %v", item.AssignedTo)
	}

	resp = call(t, app, http.MethodPost, "/api/v1/evaluations/"+evaluation.ID+"/vendors/acme/submit", "", "acme", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", resp.Code, resp.Body.String())
	}
}
