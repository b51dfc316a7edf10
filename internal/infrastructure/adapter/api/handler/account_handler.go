package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	domainerr "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
	ledgerUseCase "github.com/littlehunt-studios/generation-processor/internal/domain/usecase/ledger"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/api/dto"
)

// AccountHandler handles account and ledger HTTP requests
type AccountHandler struct {
	ledgerService *ledgerUseCase.Service
	logger        coreport.Logger
}

// NewAccountHandler creates a new account handler instance
func NewAccountHandler(
	ledgerService *ledgerUseCase.Service,
	logger coreport.Logger,
) *AccountHandler {
	return &AccountHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// Create handles the POST /account endpoint. The call is idempotent:
// an existing account is returned unchanged, a new one gets the starting
// credit grant.
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	account, err := h.ledgerService.EnsureAccount(c.Request.Context(), req.AccountID)
	if err != nil {
		h.logger.Error("Error ensuring account", map[string]any{
			"account_id": req.AccountID,
			"error":      err.Error(),
		})
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBalanceResponse(account))
}

// GetBalance handles the GET /account/:accountId/balance endpoint
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountID := c.Param("accountId")

	account, err := h.ledgerService.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		if !domainerr.IsAccountNotFoundError(err) {
			h.logger.Error("Error getting account balance", map[string]any{
				"account_id": accountID,
				"error":      err.Error(),
			})
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBalanceResponse(account))
}

// AddCredits handles the POST /account/:accountId/credits endpoint
func (h *AccountHandler) AddCredits(c *gin.Context) {
	accountID := c.Param("accountId")

	var req dto.AddCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidAmount),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	account, err := h.ledgerService.AddCredits(c.Request.Context(), accountID, req.Amount, req.PaymentID)
	if err != nil {
		h.logger.Error("Error adding credits", map[string]any{
			"account_id": accountID,
			"amount":     req.Amount,
			"error":      err.Error(),
		})
		respondError(c, err)
		return
	}

	h.logger.Info("Credits purchased", map[string]any{
		"account_id": accountID,
		"amount":     req.Amount,
		"payment_id": req.PaymentID,
	})
	c.JSON(http.StatusOK, toBalanceResponse(account))
}

// ListTransactions handles the GET /account/:accountId/transactions endpoint
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	accountID := c.Param("accountId")
	limit := parseLimit(c.Query("limit"))

	transactions, err := h.ledgerService.ListTransactions(c.Request.Context(), accountID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]dto.TransactionResponse, 0, len(transactions))
	for _, txn := range transactions {
		responses = append(responses, dto.TransactionResponse{
			ID:          txn.ID,
			Type:        string(txn.Type),
			Amount:      txn.Amount,
			Description: txn.Description,
			PaymentID:   txn.PaymentID,
			CreatedAt:   txn.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, responses)
}

// Reconcile handles the GET /account/:accountId/reconcile endpoint. It
// checks the balance against the replayed transaction log; a mismatch
// means a refund or debit lost its pair.
func (h *AccountHandler) Reconcile(c *gin.Context) {
	accountID := c.Param("accountId")

	consistent, err := h.ledgerService.ReconcileBalance(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !consistent {
		h.logger.Warn("Account balance drifted from transaction log", map[string]any{
			"account_id": accountID,
		})
	}
	c.JSON(http.StatusOK, dto.ReconcileResponse{
		AccountID:  accountID,
		Consistent: consistent,
	})
}

func toBalanceResponse(account *entity.Account) dto.BalanceResponse {
	return dto.BalanceResponse{
		AccountID: account.ID,
		Credits:   account.Credits,
		Tier:      string(account.Tier),
	}
}
