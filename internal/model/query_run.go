package model

// RunState is the server-side state of a query run.
type RunState string

const (
	RunStateReady            RunState = "QUERY_STATE_READY"
	RunStateRunning          RunState = "QUERY_STATE_RUNNING"
	RunStateStreamingResults RunState = "QUERY_STATE_STREAMING_RESULTS"
	RunStateSuccess          RunState = "QUERY_STATE_SUCCESS"
	RunStateFailed           RunState = "QUERY_STATE_FAILED"
	RunStateCanceled         RunState = "QUERY_STATE_CANCELED"
)

// IsSuccess reports whether the run finished and its results can be fetched.
func (s RunState) IsSuccess() bool {
	return s == RunStateSuccess
}

// IsFailure reports whether the run reached a terminal state without results.
func (s RunState) IsFailure() bool {
	return s == RunStateFailed || s == RunStateCanceled
}

// QueryRun is a single execution of a submitted query.
type QueryRun struct {
	ID           string   `json:"id"`
	State        RunState `json:"state"`
	ErrorName    *string  `json:"errorName,omitempty"`
	ErrorMessage *string  `json:"errorMessage,omitempty"`
}
