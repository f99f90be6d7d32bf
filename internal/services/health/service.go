package health

import (
	"context"
	"database/sql"

	"vendoreval-backend/internal/shared/storage/db"
)

// Service encapsulates health-related checks.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service. A nil database means the
// in-memory repositories are in use.
func NewService(database *sql.DB) *Service {
	return &Service{DB: database}
}

// Status reports overall health and, when configured, database reachability.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	out := map[string]any{"ok": true, "storage": "memory"}
	if s == nil || s.DB == nil {
		return out, true
	}
	out["storage"] = "postgres"
	if err := db.Ping(ctx, s.DB); err != nil {
		out["ok"] = false
		out["database"] = err.Error()
		return out, false
	}
	out["database"] = "ok"
	return out, true
}
