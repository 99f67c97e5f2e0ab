package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Submission validation errors
	ErrEmptyQuery        = fmt.Errorf("query is empty")
	ErrNoSourcesSelected = fmt.Errorf("no discovery source selected")
	ErrNoReadyActor      = fmt.Errorf("no ready actor available")

	// Search lifecycle errors
	ErrSearchFailed  = fmt.Errorf("search failed")
	ErrSearchTimeout = fmt.Errorf("search timed out waiting for the backend")

	// Action errors
	ErrNoActionTarget = fmt.Errorf("item has no identity to act on")
	ErrActionPending  = fmt.Errorf("an action is already in flight for this item")
	ErrActionThrottle = fmt.Errorf("join rate limit reached")
	ErrUnknownActor   = fmt.Errorf("unknown actor")

	// Transport errors
	ErrBridgeClosed = fmt.Errorf("event bridge closed")

	// Storage errors
	ErrSnapshotMissing = fmt.Errorf("no session snapshot stored")
	ErrSnapshotStale   = fmt.Errorf("session snapshot expired")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidPage     = fmt.Errorf("page out of range")
	ErrInvalidPageSize = fmt.Errorf("page size not allowed")
)
