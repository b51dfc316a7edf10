// Package openai implements the video and image provider ports against
// the OpenAI API: the videos endpoint for the sora family and the images
// endpoint for gpt-image-1.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
	port "github.com/littlehunt-studios/generation-processor/internal/domain/port/provider"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/provider"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com/v1"

	portraitSize  = "720x1280"
	landscapeSize = "1280x720"
)

// Config holds the settings for the OpenAI client
type Config struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	PollInterval    time.Duration
	MaxPollDuration time.Duration
}

// Client talks to the OpenAI videos and images APIs. It implements both
// the VideoProvider and the ImageProvider ports.
type Client struct {
	config       Config
	httpClient   *http.Client
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewClient creates an OpenAI client from the provider configuration
func NewClient(config Config, timeProvider coreport.TimeProvider, logger coreport.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 5 * time.Minute
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}
	if config.MaxPollDuration <= 0 {
		config.MaxPollDuration = 10 * time.Minute
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// videoResponse is the wire shape of an OpenAI video job
type videoResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate submits a video job and polls until it reaches a terminal
// state. A failed job surfaces as a classified error.
//
// Possible errors:
//   - ErrProviderAuth: the API key was rejected
//   - ErrModelNotFound: the sora model is not available on this account
//   - ErrProviderCapacity: the model is at capacity
//   - ErrContentModerationRejected: the safety system flagged the request
//   - ErrConfigurationMissing: no API key is configured
//   - ErrProviderUnknown: any other provider failure
func (c *Client) Generate(ctx context.Context, model string, input map[string]any) (*port.Prediction, error) {
	prediction, err := c.createVideo(ctx, model, input)
	if err != nil {
		return nil, err
	}

	deadline := c.timeProvider.Now().Add(c.config.MaxPollDuration)
	for !prediction.Status.IsTerminal() {
		if c.timeProvider.Now().After(deadline) {
			return nil, errs.NewProviderError(providerName, model,
				fmt.Sprintf("video %s still %s after %s", prediction.ID, prediction.Status, c.config.MaxPollDuration),
				errs.ErrProviderUnknown)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		c.timeProvider.Sleep(coreport.Duration(c.config.PollInterval))

		prediction, err = c.GetJob(ctx, prediction.ID)
		if err != nil {
			return nil, err
		}
	}

	if prediction.Status == port.StatusFailed {
		return nil, provider.ClassifyFailure(providerName, model, prediction.Err)
	}
	return prediction, nil
}

// CreateJob submits a video job and returns immediately with its handle
func (c *Client) CreateJob(ctx context.Context, model string, input map[string]any) (*port.Prediction, error) {
	return c.createVideo(ctx, model, input)
}

// requireKey refuses to issue a request without a credential. A missing
// key would otherwise surface as a provider 401 and read as a revoked
// token rather than a deployment problem.
func (c *Client) requireKey() error {
	if c.config.APIKey == "" {
		return errs.NewConfigurationError("OPENAI_API_KEY")
	}
	return nil
}

// GetJob fetches the current state of a video job. A failed job is
// returned with its error text rather than as an error.
func (c *Client) GetJob(ctx context.Context, id string) (*port.Prediction, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/videos/%s", c.config.BaseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewProviderError(providerName, "", err.Error(), errs.ErrProviderUnknown)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, provider.ClassifyStatus(providerName, "", resp.StatusCode, extractMessage(rawBody))
	}

	var wire videoResponse
	if err := json.Unmarshal(rawBody, &wire); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	return c.toPrediction(&wire), nil
}

// createVideo translates the normalized input onto the videos endpoint.
// The duration arrives as "Ns" and the aspect as portrait/landscape; the
// API wants bare seconds and a pixel size.
func (c *Client) createVideo(ctx context.Context, model string, input map[string]any) (*port.Prediction, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"model":  apiModelName(model),
		"prompt": input["prompt"],
	}
	if duration, ok := input["duration"].(string); ok && duration != "" {
		payload["seconds"] = strings.TrimSuffix(duration, "s")
	}
	if aspect, ok := input["aspect_ratio"].(string); ok {
		if aspect == "portrait" {
			payload["size"] = portraitSize
		} else {
			payload["size"] = landscapeSize
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal video request: %w", err)
	}

	endpoint := c.config.BaseURL + "/videos"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build video request: %w", err)
	}
	c.setHeaders(req)

	c.logger.Debug("Submitting OpenAI video job", map[string]any{
		"model": model,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewProviderError(providerName, model, err.Error(), errs.ErrProviderUnknown)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode >= 300 {
		message := extractMessage(rawBody)
		c.logger.Warn("OpenAI video request failed", map[string]any{
			"status":  resp.StatusCode,
			"model":   model,
			"message": message,
		})
		return nil, provider.ClassifyStatus(providerName, model, resp.StatusCode, message)
	}

	var wire videoResponse
	if err := json.Unmarshal(rawBody, &wire); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}

	prediction := c.toPrediction(&wire)
	c.logger.Info("OpenAI video job created", map[string]any{
		"video_id": prediction.ID,
		"model":    model,
		"status":   string(prediction.Status),
	})
	return prediction, nil
}

// imageWire is the wire shape of an images/generations response
type imageWire struct {
	Data []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// GenerateImage produces one gpt-image-1 image, blocking until done.
//
// Possible errors:
//   - ErrProviderAuth: the API key was rejected
//   - ErrProviderCapacity: the image endpoint is rate limiting
//   - ErrContentModerationRejected: the safety system flagged the prompt
//   - ErrConfigurationMissing: no API key is configured
//   - ErrProviderUnknown: any other provider failure
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts port.ImageOptions) (*port.Image, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"model":  "gpt-image-1",
		"prompt": prompt,
		"n":      1,
	}
	if opts.Size != "" {
		payload["size"] = opts.Size
	}
	if opts.Quality != "" {
		payload["quality"] = opts.Quality
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal image request: %w", err)
	}

	endpoint := c.config.BaseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewProviderError(providerName, "gpt-image-1", err.Error(), errs.ErrProviderUnknown)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode >= 300 {
		message := extractMessage(rawBody)
		c.logger.Warn("OpenAI image request failed", map[string]any{
			"status":  resp.StatusCode,
			"message": message,
		})
		return nil, provider.ClassifyStatus(providerName, "gpt-image-1", resp.StatusCode, message)
	}

	var wire imageWire
	if err := json.Unmarshal(rawBody, &wire); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if len(wire.Data) == 0 {
		return nil, errs.NewProviderError(providerName, "gpt-image-1", "empty data in image response", errs.ErrProviderUnknown)
	}

	return &port.Image{
		URL:           wire.Data[0].URL,
		RevisedPrompt: wire.Data[0].RevisedPrompt,
	}, nil
}

// toPrediction normalizes the video job onto the port shape. Completed
// videos are downloadable through the content endpoint; that URL is what
// the gallery stores.
func (c *Client) toPrediction(wire *videoResponse) *port.Prediction {
	prediction := &port.Prediction{
		ID:     wire.ID,
		Status: mapStatus(wire.Status),
	}
	if prediction.Status == port.StatusSucceeded {
		prediction.VideoURL = fmt.Sprintf("%s/videos/%s/content", c.config.BaseURL, wire.ID)
	}
	if wire.Error != nil {
		prediction.Err = wire.Error.Message
	}
	return prediction
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// apiModelName strips the catalog's provider prefix: the catalog stores
// "openai/sora-2" but the API expects "sora-2"
func apiModelName(model string) string {
	return strings.TrimPrefix(model, "openai/")
}

// mapStatus folds OpenAI video states onto the port enum
func mapStatus(status string) port.Status {
	switch status {
	case "queued":
		return port.StatusStarting
	case "in_progress":
		return port.StatusProcessing
	case "completed":
		return port.StatusSucceeded
	case "failed":
		return port.StatusFailed
	default:
		return port.StatusProcessing
	}
}

// extractMessage pulls the human-readable message out of an OpenAI error body
func extractMessage(rawBody []byte) string {
	var wire struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rawBody, &wire); err == nil && wire.Error.Message != "" {
		return wire.Error.Message
	}
	return strings.TrimSpace(string(rawBody))
}
