package entity

import (
	"time"

	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
)

// SubscriptionTier identifies an account's plan
type SubscriptionTier string

// Subscription tiers
const (
	TierFree   SubscriptionTier = "free"
	TierPro    SubscriptionTier = "pro"
	TierStudio SubscriptionTier = "studio"
)

// StartingCredits is granted to every account on first sign-in
const StartingCredits int64 = 3

// Account holds a user's credit balance and usage counters.
// Balance mutations go through the ledger exclusively; nothing else
// may write the credits field.
type Account struct {
	ID               string // external identity-provider UID
	Credits          int64  // current balance, never negative after a committed operation
	Tier             SubscriptionTier
	TotalGenerations uint64 // lifetime generation count
	TotalSpent       int64  // lifetime credits spent on generations
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewAccount creates an account with the starting credit grant on the free tier
func NewAccount(id string, timeProvider coreport.TimeProvider) (*Account, error) {
	if id == "" {
		return nil, errs.ErrInvalidAccountID
	}

	now := timeProvider.Now()
	return &Account{
		ID:        id,
		Credits:   StartingCredits,
		Tier:      TierFree,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanAfford checks if the account has enough credits for the given cost.
// This is a read-side convenience only; the authoritative check happens
// in the store's conditional update.
func (a *Account) CanAfford(cost int64) bool {
	return a.Credits >= cost
}

// isValidTier validates if the tier is one of the allowed values
func isValidTier(tier string) bool {
	return tier == string(TierFree) || tier == string(TierPro) || tier == string(TierStudio)
}
