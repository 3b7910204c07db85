package activity

import "context"

type Service interface {
	Create(ctx context.Context, req CreateActivityRequest, requester Requester) (*CreateActivityResponse, error)
	// Dispatch updates the activity named by req.ActivityID, or creates one when it is empty.
	Dispatch(ctx context.Context, req SingleRequest, requester Requester) (*CreateActivityResponse, error)
	Unassign(ctx context.Context, req UnassignRequest, requester Requester) (*CreateActivityResponse, error)
}
