package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	domainerr "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
	generationUseCase "github.com/littlehunt-studios/generation-processor/internal/domain/usecase/generation"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/api/dto"
)

// GenerationHandler handles generation-related HTTP requests
type GenerationHandler struct {
	generationService *generationUseCase.Service
	galleryPageSize   int
	logger            coreport.Logger
}

// NewGenerationHandler creates a new generation handler instance
func NewGenerationHandler(
	generationService *generationUseCase.Service,
	galleryPageSize int,
	logger coreport.Logger,
) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		galleryPageSize:   galleryPageSize,
		logger:            logger,
	}
}

// Generate handles the POST /generate endpoint
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid generation request format", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	// A request with no account behind it is unauthenticated, not malformed
	if req.AccountID == "" {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidAccountID),
			Message: "No account on this request. Sign in first.",
		})
		return
	}

	durationSeconds, err := parseDurationSeconds(req.Duration)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: err.Error(),
		})
		return
	}

	result, err := h.generationService.Generate(c.Request.Context(), generationUseCase.GenerateRequest{
		AccountID:       req.AccountID,
		Prompt:          req.Prompt,
		Model:           req.Model,
		DurationSeconds: durationSeconds,
		AspectRatio:     req.AspectRatio,
		Async:           req.Async,
	})
	if err != nil {
		h.logger.Error("Generation request failed", map[string]any{
			"account_id": req.AccountID,
			"model":      req.Model,
			"error":      err.Error(),
		})
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toGenerationResponse(result.Generation, result.Balance))
}

// Status handles the GET /status/:jobId endpoint. The job identifier is
// the generation record id returned by an async generate call.
func (h *GenerationHandler) Status(c *gin.Context) {
	generationID := c.Param("jobId")

	gen, err := h.generationService.CheckStatus(c.Request.Context(), generationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{
		ID:       gen.ID,
		Status:   string(gen.Status),
		VideoURL: gen.URL,
		Error:    gen.Error,
	})
}

// GenerateImage handles the POST /image endpoint
func (h *GenerationHandler) GenerateImage(c *gin.Context) {
	var req dto.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}
	if req.AccountID == "" {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidAccountID),
			Message: "No account on this request. Sign in first.",
		})
		return
	}

	result, err := h.generationService.GenerateImage(c.Request.Context(), generationUseCase.ImageRequest{
		AccountID: req.AccountID,
		Prompt:    req.Prompt,
		Size:      req.Size,
		Quality:   req.Quality,
	})
	if err != nil {
		h.logger.Error("Image request failed", map[string]any{
			"account_id": req.AccountID,
			"error":      err.Error(),
		})
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImageResponse{
		ID:          result.Generation.ID,
		Status:      string(result.Generation.Status),
		URL:         result.Generation.URL,
		CreditsCost: result.Generation.CreditsCost,
		Balance:     result.Balance,
	})
}

// ListVideos handles the GET /account/:accountId/videos endpoint
func (h *GenerationHandler) ListVideos(c *gin.Context) {
	accountID := c.Param("accountId")
	limit := parseLimit(c.Query("limit"))
	if limit == 0 {
		limit = h.galleryPageSize
	}

	generations, err := h.generationService.ListGenerations(c.Request.Context(), accountID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]dto.GenerationResponse, 0, len(generations))
	for _, gen := range generations {
		responses = append(responses, toGenerationResponse(gen, 0))
	}
	c.JSON(http.StatusOK, responses)
}

// parseDurationSeconds accepts the canonical "10s" string, a bare numeric
// string, or a JSON number
func parseDurationSeconds(raw any) (int, error) {
	switch value := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		return int(value), nil
	case string:
		if value == "" {
			return 0, nil
		}
		seconds, err := strconv.Atoi(strings.TrimSuffix(value, "s"))
		if err != nil {
			return 0, fmt.Errorf("%w: invalid duration %q", domainerr.ErrInvalidRequest, value)
		}
		return seconds, nil
	default:
		return 0, fmt.Errorf("%w: duration must be a string or a number", domainerr.ErrInvalidRequest)
	}
}

func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func toGenerationResponse(gen *entity.Generation, balance int64) dto.GenerationResponse {
	return dto.GenerationResponse{
		ID:          gen.ID,
		Status:      string(gen.Status),
		Type:        string(gen.Type),
		VideoURL:    gen.URL,
		Prompt:      gen.Prompt,
		Model:       gen.Model,
		ModelName:   gen.ModelName,
		Duration:    gen.Duration,
		AspectRatio: gen.AspectRatio,
		Error:       gen.Error,
		CreditsCost: gen.CreditsCost,
		Balance:     balance,
		CreatedAt:   gen.CreatedAt.Format(time.RFC3339),
	}
}
