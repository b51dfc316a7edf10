package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coremocks "github.com/littlehunt-studios/generation-processor/mocks/port/core"
)

func TestNewGenerationTransaction(t *testing.T) {
	fixedTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tp := coremocks.NewFixedTimeProvider(fixedTime)

	t.Run("records a signed debit", func(t *testing.T) {
		tx, err := NewGenerationTransaction("uid-abc", 3, "Video generation: Sora 2", tp)

		require.NoError(t, err)
		assert.Equal(t, "uid-abc", tx.AccountID)
		assert.Equal(t, TypeGeneration, tx.Type)
		assert.Equal(t, int64(-3), tx.Amount)
		assert.Equal(t, "Video generation: Sora 2", tx.Description)
		assert.Equal(t, fixedTime, tx.CreatedAt)
		assert.True(t, tx.IsDebit())
	})

	t.Run("rejects non-positive cost", func(t *testing.T) {
		_, err := NewGenerationTransaction("uid-abc", 0, "x", tp)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)

		_, err = NewGenerationTransaction("uid-abc", -1, "x", tp)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})

	t.Run("rejects empty account ID", func(t *testing.T) {
		_, err := NewGenerationTransaction("", 3, "x", tp)
		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)
	})
}

func TestNewPurchaseTransaction(t *testing.T) {
	tp := coremocks.NewFixedTimeProvider(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	t.Run("records a positive amount with the payment reference", func(t *testing.T) {
		tx, err := NewPurchaseTransaction("uid-abc", 60, "pi_12345", tp)

		require.NoError(t, err)
		assert.Equal(t, TypePurchase, tx.Type)
		assert.Equal(t, int64(60), tx.Amount)
		assert.Equal(t, "pi_12345", tx.PaymentID)
		assert.Equal(t, "Purchased 60 credits", tx.Description)
		assert.False(t, tx.IsDebit())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewPurchaseTransaction("uid-abc", 0, "pi_12345", tp)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestNewRefundTransaction(t *testing.T) {
	tp := coremocks.NewFixedTimeProvider(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	t.Run("records the reversal with the failure reason", func(t *testing.T) {
		tx, err := NewRefundTransaction("uid-abc", 3, "Refund: provider at capacity", tp)

		require.NoError(t, err)
		assert.Equal(t, TypeRefund, tx.Type)
		assert.Equal(t, int64(3), tx.Amount)
		assert.Equal(t, "Refund: provider at capacity", tx.Description)
		assert.Empty(t, tx.PaymentID)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewRefundTransaction("uid-abc", -3, "oops", tp)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}
