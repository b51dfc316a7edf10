package dto

// CreateAccountRequest represents the ensure-account call made on first sign-in
type CreateAccountRequest struct {
	AccountID string `json:"accountId" binding:"required"`
}

// BalanceResponse represents the API response for an account's balance
type BalanceResponse struct {
	AccountID string `json:"accountId"`
	Credits   int64  `json:"credits"`
	Tier      string `json:"tier"`
}

// AddCreditsRequest represents a credit purchase top-up
type AddCreditsRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	PaymentID string `json:"paymentId"`
}

// TransactionResponse represents one ledger entry in the history listing
type TransactionResponse struct {
	ID          uint64 `json:"id"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	PaymentID   string `json:"paymentId,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// ReconcileResponse reports whether an account's balance matches its
// transaction log
type ReconcileResponse struct {
	AccountID  string `json:"accountId"`
	Consistent bool   `json:"consistent"`
}
