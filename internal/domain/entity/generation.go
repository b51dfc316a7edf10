package entity

import (
	"time"

	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"

	"github.com/google/uuid"
)

// MediaType distinguishes video and image generations
type MediaType string

// Media types
const (
	MediaVideo MediaType = "video"
	MediaImage MediaType = "image"
)

// GenerationStatus represents the lifecycle state of a generation record.
// Terminal states are sticky: a completed or failed record never changes
// status again.
type GenerationStatus string

// Generation statuses
const (
	GenerationProcessing GenerationStatus = "processing"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

// Generation is the persisted record of a resolved (or in-flight asynchronous)
// generation request. Immutable after creation except for the single
// processing -> {completed, failed} status transition.
type Generation struct {
	ID            string // uuid
	AccountID     string
	Type          MediaType
	URL           string // empty until success
	ThumbnailURL  string
	Prompt        string
	Model         string // pricing-table key, e.g. "minimax/hailuo-02"
	ModelName     string // human-readable display name
	Duration      string
	AspectRatio   string
	Status        GenerationStatus
	Error         string // normalized error text on failure
	CreditsCost   int64
	ProviderJobID string // provider-side job handle for the polling mode
	CreatedAt     time.Time
}

// NewGeneration creates a generation record for a request that has been
// submitted to a provider. Status starts at processing; sync callers mark
// it terminal immediately after the provider returns.
func NewGeneration(accountID string, mediaType MediaType, prompt, model, duration, aspectRatio string, cost int64, timeProvider coreport.TimeProvider) (*Generation, error) {
	if accountID == "" {
		return nil, errs.ErrInvalidAccountID
	}
	if prompt == "" {
		return nil, errs.ErrEmptyPrompt
	}

	return &Generation{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Type:        mediaType,
		Prompt:      prompt,
		Model:       model,
		ModelName:   ModelDisplayName(model),
		Duration:    duration,
		AspectRatio: aspectRatio,
		Status:      GenerationProcessing,
		CreditsCost: cost,
		CreatedAt:   timeProvider.Now(),
	}, nil
}

// MarkCompleted records the result URL and moves the record to its
// terminal completed state.
func (g *Generation) MarkCompleted(url string) {
	g.Status = GenerationCompleted
	g.URL = url
	if g.ThumbnailURL == "" {
		g.ThumbnailURL = url
	}
}

// MarkFailed moves the record to its terminal failed state with the
// normalized error text.
func (g *Generation) MarkFailed(errorText string) {
	g.Status = GenerationFailed
	g.Error = errorText
}

// IsTerminal reports whether the record reached completed or failed
func (g *Generation) IsTerminal() bool {
	return g.Status == GenerationCompleted || g.Status == GenerationFailed
}
