package recommendations

import "context"

// Repo is the full recommendation persistence surface. The engine only
// needs the embedded Store.
type Repo interface {
	Store
	GetByID(ctx context.Context, recommendationID string) (Recommendation, error)
	ListByPair(ctx context.Context, evaluationID, vendorID string) ([]Recommendation, error)
	ListByEvaluation(ctx context.Context, evaluationID string) ([]Recommendation, error)
	ListByVendor(ctx context.Context, vendorID string) ([]Recommendation, error)
	// UpdateStatus changes the workflow status and nothing else.
	UpdateStatus(ctx context.Context, recommendationID string, status Status) (Recommendation, error)
}
