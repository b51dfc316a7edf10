// Package replicate implements the video provider port against the
// Replicate predictions API.
package replicate

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
	providerName   = "replicate"
	defaultBaseURL = "https://api.replicate.com/v1"
)

// Config holds the settings for the Replicate client
type Config struct {
	APIToken        string
	BaseURL         string
	RequestTimeout  time.Duration
	PollInterval    time.Duration
	MaxPollDuration time.Duration
}

// Client talks to the Replicate predictions API and implements the
// VideoProvider port. Failures are classified into the domain error
// taxonomy before they leave this package.
type Client struct {
	config       Config
	httpClient   *http.Client
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewClient creates a Replicate client from the provider configuration
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

// predictionResponse is the wire shape of a Replicate prediction
type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  json.RawMessage `json:"error"`
}

// Generate submits a prediction with Prefer: wait and polls until it
// reaches a terminal state. A failed prediction surfaces as a classified
// error.
//
// Possible errors:
//   - ErrProviderAuth: the API token was rejected
//   - ErrModelNotFound: the model identifier is unknown to Replicate
//   - ErrProviderCapacity: Replicate is rate limiting or at capacity
//   - ErrContentModerationRejected: the prompt or output was flagged
//   - ErrConfigurationMissing: no API token is configured
//   - ErrProviderUnknown: any other provider failure
func (c *Client) Generate(ctx context.Context, model string, input map[string]any) (*port.Prediction, error) {
	prediction, err := c.createPrediction(ctx, model, input, true)
	if err != nil {
		return nil, err
	}

	deadline := c.timeProvider.Now().Add(c.config.MaxPollDuration)
	for !prediction.Status.IsTerminal() {
		if c.timeProvider.Now().After(deadline) {
			return nil, errs.NewProviderError(providerName, model,
				fmt.Sprintf("prediction %s still %s after %s", prediction.ID, prediction.Status, c.config.MaxPollDuration),
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

// CreateJob submits a prediction and returns immediately with its handle
func (c *Client) CreateJob(ctx context.Context, model string, input map[string]any) (*port.Prediction, error) {
	return c.createPrediction(ctx, model, input, false)
}

// GetJob fetches the current state of a prediction. A failed prediction is
// returned with its error text rather than as an error, so the caller can
// drive the record transition and the paired refund.
func (c *Client) GetJob(ctx context.Context, id string) (*port.Prediction, error) {
	endpoint := fmt.Sprintf("%s/predictions/%s", c.config.BaseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	c.setHeaders(req)

	wire, err := c.doRequest(req, "")
	if err != nil {
		return nil, err
	}
	return c.toPrediction(wire), nil
}

// createPrediction posts to the model-scoped predictions endpoint. With
// wait set, the Prefer header asks Replicate to hold the connection until
// the prediction finishes or the hold window elapses.
func (c *Client) createPrediction(ctx context.Context, model string, input map[string]any, wait bool) (*port.Prediction, error) {
	endpoint := fmt.Sprintf("%s/models/%s/predictions", c.config.BaseURL, model)

	body, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return nil, fmt.Errorf("marshal prediction input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build prediction request: %w", err)
	}
	c.setHeaders(req)
	if wait {
		req.Header.Set("Prefer", "wait=60")
	}

	c.logger.Debug("Submitting Replicate prediction", map[string]any{
		"model": model,
		"wait":  wait,
	})

	wire, err := c.doRequest(req, model)
	if err != nil {
		return nil, err
	}

	prediction := c.toPrediction(wire)
	c.logger.Info("Replicate prediction created", map[string]any{
		"prediction_id": prediction.ID,
		"model":         model,
		"status":        string(prediction.Status),
	})
	return prediction, nil
}

// doRequest executes the call and decodes the prediction body, classifying
// any non-2xx response
func (c *Client) doRequest(req *http.Request, model string) (*predictionResponse, error) {
	if c.config.APIToken == "" {
		return nil, errs.NewConfigurationError("REPLICATE_API_TOKEN")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewProviderError(providerName, model, err.Error(), errs.ErrProviderUnknown)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read replicate response: %w", err)
	}

	if resp.StatusCode >= 300 {
		message := extractMessage(rawBody)
		c.logger.Warn("Replicate request failed", map[string]any{
			"status":  resp.StatusCode,
			"model":   model,
			"message": message,
		})
		return nil, provider.ClassifyStatus(providerName, model, resp.StatusCode, message)
	}

	var wire predictionResponse
	if err := json.Unmarshal(rawBody, &wire); err != nil {
		return nil, fmt.Errorf("decode replicate response: %w", err)
	}
	return &wire, nil
}

// toPrediction normalizes the wire prediction onto the port shape
func (c *Client) toPrediction(wire *predictionResponse) *port.Prediction {
	return &port.Prediction{
		ID:       wire.ID,
		Status:   mapStatus(wire.Status),
		VideoURL: firstOutputURL(wire.Output),
		Err:      rawToString(wire.Error),
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// mapStatus folds Replicate's prediction states onto the port enum.
// Canceled predictions count as failed, the caller refunds them the same way.
func mapStatus(status string) port.Status {
	switch status {
	case "starting", "queued":
		return port.StatusStarting
	case "processing":
		return port.StatusProcessing
	case "succeeded":
		return port.StatusSucceeded
	case "failed", "canceled":
		return port.StatusFailed
	default:
		return port.StatusProcessing
	}
}

// firstOutputURL handles both output shapes Replicate uses: a bare URL
// string for single-file models and an array of URLs for multi-output ones
func firstOutputURL(output json.RawMessage) string {
	if len(output) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(output, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(output, &many); err == nil && len(many) > 0 {
		return many[0]
	}
	return ""
}

// rawToString renders the error field, which Replicate returns as either
// a string or a structured object
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

// extractMessage pulls the human-readable message out of an error body
func extractMessage(rawBody []byte) string {
	var wire struct {
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(rawBody, &wire); err == nil {
		if wire.Detail != "" {
			return wire.Detail
		}
		if wire.Title != "" {
			return wire.Title
		}
	}
	return strings.TrimSpace(string(rawBody))
}
