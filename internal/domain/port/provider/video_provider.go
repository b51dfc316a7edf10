package provider

import (
	"context"
)

// Status is the normalized lifecycle state of a provider prediction.
// Heterogeneous provider states all map onto this enum at the client
// boundary; succeeded and failed are terminal and sticky.
type Status string

// Prediction statuses
const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether the status is succeeded or failed
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Prediction is the normalized result shape for a provider job. VideoURL is
// set once the prediction succeeds; Err carries the provider's failure text
// for failed predictions observed through polling.
type Prediction struct {
	ID       string
	Status   Status
	VideoURL string
	Err      string
}

// VideoProvider is the single boundary to a third-party video generation
// service. Implementations classify provider failures into the domain
// error taxonomy before returning them; callers never inspect raw
// provider messages.
type VideoProvider interface {
	// Generate submits a prediction and blocks until it reaches a terminal
	// state or ctx expires. A prediction that terminates in failure is
	// returned as a classified error, not as a failed Prediction.
	Generate(ctx context.Context, model string, input map[string]any) (*Prediction, error)

	// CreateJob submits a prediction and returns immediately with a job
	// handle for later polling through GetJob.
	CreateJob(ctx context.Context, model string, input map[string]any) (*Prediction, error)

	// GetJob fetches the current state of a previously created prediction.
	// Unlike Generate, a failed prediction is returned with StatusFailed
	// and its Err text so the caller can drive the record transition and
	// the paired refund.
	GetJob(ctx context.Context, id string) (*Prediction, error)
}
