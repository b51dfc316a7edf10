package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	providerport "github.com/littlehunt-studios/generation-processor/internal/domain/port/provider"
	generationUseCase "github.com/littlehunt-studios/generation-processor/internal/domain/usecase/generation"
	ledgerUseCase "github.com/littlehunt-studios/generation-processor/internal/domain/usecase/ledger"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/logger"
	coremocks "github.com/littlehunt-studios/generation-processor/mocks/port/core"
	persistencemocks "github.com/littlehunt-studios/generation-processor/mocks/port/persistence"
	providermocks "github.com/littlehunt-studios/generation-processor/mocks/port/provider"
)

type apiFixture struct {
	router    *gin.Engine
	accounts  *persistencemocks.MockAccountRepository
	txns      *persistencemocks.MockTransactionRepository
	gens      *persistencemocks.MockGenerationRepository
	replicate *providermocks.MockVideoProvider
	openai    *providermocks.MockVideoProvider
}

func newAPIFixture() *apiFixture {
	gin.SetMode(gin.TestMode)

	accounts := new(persistencemocks.MockAccountRepository)
	txns := new(persistencemocks.MockTransactionRepository)
	gens := new(persistencemocks.MockGenerationRepository)
	replicate := new(providermocks.MockVideoProvider)
	openai := new(providermocks.MockVideoProvider)
	images := new(providermocks.MockImageProvider)

	uow := persistencemocks.NewFakeUnitOfWork(accounts, txns)
	tp := coremocks.NewFixedTimeProvider(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	log := logger.NewNoopLogger()

	ledgerService := ledgerUseCase.NewService(uow, accounts, txns, tp, log)
	generationService := generationUseCase.NewService(ledgerService, gens, replicate, openai, images, tp, log)

	router := gin.New()
	generationHandler := NewGenerationHandler(generationService, 50, log)
	accountHandler := NewAccountHandler(ledgerService, log)

	router.POST("/generate", generationHandler.Generate)
	router.GET("/status/:jobId", generationHandler.Status)
	router.POST("/account", accountHandler.Create)
	router.GET("/account/:accountId/balance", accountHandler.GetBalance)
	router.POST("/account/:accountId/credits", accountHandler.AddCredits)
	router.GET("/account/:accountId/videos", generationHandler.ListVideos)
	router.GET("/account/:accountId/transactions", accountHandler.ListTransactions)

	return &apiFixture{
		router:    router,
		accounts:  accounts,
		txns:      txns,
		gens:      gens,
		replicate: replicate,
		openai:    openai,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestGenerateEndpoint(t *testing.T) {
	t.Run("returns the completed record with the new balance", func(t *testing.T) {
		f := newAPIFixture()
		f.accounts.On("GetByID", mock.Anything, "uid-1").Return(&entity.Account{ID: "uid-1", Credits: 5, Tier: entity.TierFree}, nil)
		f.accounts.On("AdjustCredits", mock.Anything, "uid-1", int64(-2), int64(1), int64(2)).
			Return(&entity.Account{ID: "uid-1", Credits: 3}, nil)
		f.txns.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.replicate.On("Generate", mock.Anything, "minimax/hailuo-02", mock.Anything).
			Return(&providerport.Prediction{ID: "pred-1", Status: providerport.StatusSucceeded, VideoURL: "https://cdn.example.com/v.mp4"}, nil)
		f.gens.On("Create", mock.Anything, mock.Anything).Return(nil)

		recorder := f.do(t, http.MethodPost, "/generate", map[string]any{
			"prompt":       "a dancing robot",
			"model":        "minimax/hailuo-02",
			"duration":     "10s",
			"aspect_ratio": "16:9",
			"accountId":    "uid-1",
		})

		require.Equal(t, http.StatusOK, recorder.Code)
		body := decodeBody(t, recorder)
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, "https://cdn.example.com/v.mp4", body["video_url"])
		assert.Equal(t, float64(3), body["balance"])
	})

	t.Run("accepts a numeric duration", func(t *testing.T) {
		f := newAPIFixture()
		f.accounts.On("GetByID", mock.Anything, "uid-1").Return(&entity.Account{ID: "uid-1", Credits: 5}, nil)
		f.accounts.On("AdjustCredits", mock.Anything, "uid-1", mock.Anything, mock.Anything, mock.Anything).
			Return(&entity.Account{ID: "uid-1", Credits: 4}, nil)
		f.txns.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.replicate.On("Generate", mock.Anything, "minimax/video-01", mock.MatchedBy(func(input map[string]any) bool {
			return input["num_frames"] == 300
		})).Return(&providerport.Prediction{ID: "p", Status: providerport.StatusSucceeded, VideoURL: "u"}, nil)
		f.gens.On("Create", mock.Anything, mock.Anything).Return(nil)

		recorder := f.do(t, http.MethodPost, "/generate", map[string]any{
			"prompt":    "waves",
			"model":     "minimax/video-01",
			"duration":  10,
			"accountId": "uid-1",
		})

		require.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("returns 401 when no account is on the request", func(t *testing.T) {
		f := newAPIFixture()

		recorder := f.do(t, http.MethodPost, "/generate", map[string]any{
			"prompt": "a dancing robot",
			"model":  "minimax/video-01",
		})

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("returns 402 when the balance cannot cover the cost", func(t *testing.T) {
		f := newAPIFixture()
		f.accounts.On("GetByID", mock.Anything, "uid-poor").Return(&entity.Account{ID: "uid-poor", Credits: 1}, nil)
		f.accounts.On("AdjustCredits", mock.Anything, "uid-poor", int64(-3), int64(1), int64(3)).
			Return(nil, errs.NewInsufficientCreditsError("uid-poor", 3, 1))

		recorder := f.do(t, http.MethodPost, "/generate", map[string]any{
			"prompt":    "epic scene",
			"model":     "openai/sora-2",
			"accountId": "uid-poor",
		})

		assert.Equal(t, http.StatusPaymentRequired, recorder.Code)
		body := decodeBody(t, recorder)
		assert.Equal(t, float64(errs.CodeInsufficientCredits), body["code"])
		f.openai.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns 422 with a hint on a moderation rejection", func(t *testing.T) {
		f := newAPIFixture()
		f.accounts.On("GetByID", mock.Anything, "uid-1").Return(&entity.Account{ID: "uid-1", Credits: 5}, nil)
		f.accounts.On("AdjustCredits", mock.Anything, "uid-1", mock.Anything, mock.Anything, mock.Anything).
			Return(&entity.Account{ID: "uid-1", Credits: 4}, nil)
		f.txns.On("Create", mock.Anything, mock.Anything).Return(nil)
		// kling is not a strict-filter family, no fallback hop
		f.replicate.On("Generate", mock.Anything, "kwaivgi/kling-v2.1", mock.Anything).
			Return(nil, errs.NewProviderError("replicate", "kwaivgi/kling-v2.1", "(E005) flagged as sensitive", errs.ErrContentModerationRejected))
		f.gens.On("Create", mock.Anything, mock.Anything).Return(nil)

		recorder := f.do(t, http.MethodPost, "/generate", map[string]any{
			"prompt":    "something borderline",
			"model":     "kwaivgi/kling-v2.1",
			"accountId": "uid-1",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		body := decodeBody(t, recorder)
		assert.Equal(t, float64(errs.CodeContentModeration), body["code"])
		assert.Contains(t, body["hint"], "content filter")
	})

	t.Run("returns 503 when the provider stays at capacity", func(t *testing.T) {
		f := newAPIFixture()
		f.accounts.On("GetByID", mock.Anything, "uid-1").Return(&entity.Account{ID: "uid-1", Credits: 5}, nil)
		f.accounts.On("AdjustCredits", mock.Anything, "uid-1", mock.Anything, mock.Anything, mock.Anything).
			Return(&entity.Account{ID: "uid-1", Credits: 4}, nil)
		f.txns.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.replicate.On("Generate", mock.Anything, "minimax/video-01", mock.Anything).
			Return(nil, errs.NewProviderError("replicate", "minimax/video-01", "at capacity", errs.ErrProviderCapacity))
		f.gens.On("Create", mock.Anything, mock.Anything).Return(nil)

		recorder := f.do(t, http.MethodPost, "/generate", map[string]any{
			"prompt":    "waves",
			"model":     "minimax/video-01",
			"accountId": "uid-1",
		})

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})

	t.Run("rejects a malformed duration", func(t *testing.T) {
		f := newAPIFixture()

		recorder := f.do(t, http.MethodPost, "/generate", map[string]any{
			"prompt":    "waves",
			"model":     "minimax/video-01",
			"duration":  "soon",
			"accountId": "uid-1",
		})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestStatusEndpoint(t *testing.T) {
	t.Run("returns a terminal record without polling the provider", func(t *testing.T) {
		f := newAPIFixture()
		f.gens.On("GetByID", mock.Anything, "gen-1").Return(&entity.Generation{
			ID:     "gen-1",
			Status: entity.GenerationCompleted,
			URL:    "https://cdn.example.com/v.mp4",
		}, nil)

		recorder := f.do(t, http.MethodGet, "/status/gen-1", nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		body := decodeBody(t, recorder)
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, "https://cdn.example.com/v.mp4", body["video_url"])
		f.replicate.AssertNotCalled(t, "GetJob", mock.Anything, mock.Anything)
	})

	t.Run("returns 404 for an unknown job", func(t *testing.T) {
		f := newAPIFixture()
		f.gens.On("GetByID", mock.Anything, "missing").Return(nil, errs.ErrGenerationNotFound)

		recorder := f.do(t, http.MethodGet, "/status/missing", nil)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestAccountEndpoints(t *testing.T) {
	t.Run("create is idempotent and returns the balance", func(t *testing.T) {
		f := newAPIFixture()
		f.accounts.On("GetByID", mock.Anything, "uid-new").Return(nil, errs.ErrAccountNotFound).Once()
		f.accounts.On("Create", mock.Anything, mock.MatchedBy(func(a *entity.Account) bool {
			return a.ID == "uid-new" && a.Credits == entity.StartingCredits
		})).Return(nil)

		recorder := f.do(t, http.MethodPost, "/account", map[string]any{"accountId": "uid-new"})

		require.Equal(t, http.StatusOK, recorder.Code)
		body := decodeBody(t, recorder)
		assert.Equal(t, "uid-new", body["accountId"])
		assert.Equal(t, float64(entity.StartingCredits), body["credits"])
	})

	t.Run("balance returns 404 for an unknown account", func(t *testing.T) {
		f := newAPIFixture()
		f.accounts.On("GetByID", mock.Anything, "ghost").Return(nil, errs.ErrAccountNotFound)

		recorder := f.do(t, http.MethodGet, "/account/ghost/balance", nil)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("credit purchase tops up the balance", func(t *testing.T) {
		f := newAPIFixture()
		f.accounts.On("AdjustCredits", mock.Anything, "uid-1", int64(60), int64(0), int64(0)).
			Return(&entity.Account{ID: "uid-1", Credits: 63, Tier: entity.TierPro}, nil)
		f.txns.On("Create", mock.Anything, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.Type == entity.TypePurchase && txn.PaymentID == "pi_789"
		})).Return(nil)

		recorder := f.do(t, http.MethodPost, "/account/uid-1/credits", map[string]any{
			"amount":    60,
			"paymentId": "pi_789",
		})

		require.Equal(t, http.StatusOK, recorder.Code)
		body := decodeBody(t, recorder)
		assert.Equal(t, float64(63), body["credits"])
	})

	t.Run("credit purchase rejects a non-positive amount", func(t *testing.T) {
		f := newAPIFixture()

		recorder := f.do(t, http.MethodPost, "/account/uid-1/credits", map[string]any{
			"amount": -5,
		})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("transactions without a limit returns the default page", func(t *testing.T) {
		f := newAPIFixture()
		f.txns.On("ListByAccount", mock.Anything, "uid-1", mock.MatchedBy(func(limit int) bool {
			return limit > 0
		})).Return([]*entity.Transaction{
			{ID: "txn-2", Type: entity.TypePurchase, Amount: 60, PaymentID: "pi_789"},
			{ID: "txn-1", Type: entity.TypeGeneration, Amount: -2, Description: "Video generation: Hailuo 02"},
		}, nil)

		recorder := f.do(t, http.MethodGet, "/account/uid-1/transactions", nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		var body []map[string]any
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		require.Len(t, body, 2)
		assert.Equal(t, "txn-2", body[0]["id"])
		assert.Equal(t, float64(-2), body[1]["amount"])
	})

	t.Run("videos lists the gallery newest first", func(t *testing.T) {
		f := newAPIFixture()
		f.gens.On("ListByAccount", mock.Anything, "uid-1", mock.Anything).Return([]*entity.Generation{
			{ID: "gen-2", Status: entity.GenerationCompleted, URL: "u2", Model: "openai/sora-2"},
			{ID: "gen-1", Status: entity.GenerationFailed, Error: "Generation failed"},
		}, nil)

		recorder := f.do(t, http.MethodGet, "/account/uid-1/videos", nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		var body []map[string]any
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		require.Len(t, body, 2)
		assert.Equal(t, "gen-2", body[0]["id"])
		assert.Equal(t, "failed", body[1]["status"])
	})
}
