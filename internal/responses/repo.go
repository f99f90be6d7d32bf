package responses

import "context"

// Repo defines persistence operations for responses. Responses are never deleted.
type Repo interface {
	// Upsert inserts the response or updates answer and value in place for an
	// existing composite key. The returned row carries the stored ID.
	Upsert(ctx context.Context, response Response) (Response, error)
	GetByID(ctx context.Context, responseID string) (Response, error)
	ListByPair(ctx context.Context, evaluationID, vendorID string) ([]Response, error)
}
