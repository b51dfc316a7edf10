package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coremocks "github.com/littlehunt-studios/generation-processor/mocks/port/core"
)

func TestNewAccount(t *testing.T) {
	fixedTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tp := coremocks.NewFixedTimeProvider(fixedTime)

	t.Run("grants starting credits on the free tier", func(t *testing.T) {
		account, err := NewAccount("uid-abc", tp)

		require.NoError(t, err)
		assert.Equal(t, "uid-abc", account.ID)
		assert.Equal(t, StartingCredits, account.Credits)
		assert.Equal(t, TierFree, account.Tier)
		assert.Equal(t, uint64(0), account.TotalGenerations)
		assert.Equal(t, int64(0), account.TotalSpent)
		assert.Equal(t, fixedTime, account.CreatedAt)
		assert.Equal(t, fixedTime, account.UpdatedAt)
	})

	t.Run("rejects empty account ID", func(t *testing.T) {
		account, err := NewAccount("", tp)

		assert.Nil(t, account)
		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)
	})
}

func TestAccountCanAfford(t *testing.T) {
	account := &Account{ID: "uid-abc", Credits: 2}

	assert.True(t, account.CanAfford(1))
	assert.True(t, account.CanAfford(2))
	assert.False(t, account.CanAfford(3))
}

func TestIsValidTier(t *testing.T) {
	assert.True(t, isValidTier("free"))
	assert.True(t, isValidTier("pro"))
	assert.True(t, isValidTier("studio"))
	assert.False(t, isValidTier("enterprise"))
	assert.False(t, isValidTier(""))
}
