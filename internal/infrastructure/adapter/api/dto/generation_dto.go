package dto

// GenerateRequest represents the API request for a video generation.
// Duration accepts both the canonical "10s" string and a bare number of
// seconds; it is parsed once at this boundary.
type GenerateRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	Duration    any    `json:"duration"`
	AspectRatio string `json:"aspect_ratio"`
	Model       string `json:"model" binding:"required"`
	AccountID   string `json:"accountId"`
	Async       bool   `json:"async"`
}

// GenerationResponse represents the API response for a generation record
type GenerationResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	VideoURL    string `json:"video_url,omitempty"`
	Prompt      string `json:"prompt"`
	Model       string `json:"model"`
	ModelName   string `json:"modelName"`
	Duration    string `json:"duration,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
	Error       string `json:"error,omitempty"`
	CreditsCost int64  `json:"creditsCost"`
	Balance     int64  `json:"balance"`
	CreatedAt   string `json:"createdAt"`
}

// StatusResponse represents the API response for a status poll
type StatusResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ImageRequest represents the API request for an image generation
type ImageRequest struct {
	Prompt    string `json:"prompt" binding:"required"`
	Size      string `json:"size"`
	Quality   string `json:"quality"`
	AccountID string `json:"accountId"`
}

// ImageResponse represents the API response for an image generation
type ImageResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	URL         string `json:"url"`
	CreditsCost int64  `json:"creditsCost"`
	Balance     int64  `json:"balance"`
}
