package provider

import (
	"context"
)

// ImageOptions are the tunable parameters of an image generation
type ImageOptions struct {
	Size    string // e.g. "1024x1024", "1792x1024", "1024x1792"
	Quality string // "standard" or "hd"
}

// Image is the normalized result of an image generation
type Image struct {
	ID            string
	URL           string
	RevisedPrompt string
}

// ImageProvider is the boundary to a third-party image generation service.
// Failures are classified into the domain error taxonomy at this boundary.
type ImageProvider interface {
	// GenerateImage produces one image for the prompt, blocking until done
	GenerateImage(ctx context.Context, prompt string, opts ImageOptions) (*Image, error)
}
