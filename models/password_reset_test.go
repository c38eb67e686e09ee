package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, ch := range code {
			assert.True(t, ch >= '0' && ch <= '9')
		}
		seen[code] = true
	}
	// 20 次生成不应全部相同
	assert.Greater(t, len(seen), 1)
}

func TestPasswordResetIsValid(t *testing.T) {
	p := &PasswordReset{ExpiresAt: time.Now().Add(10 * time.Minute)}
	assert.True(t, p.IsValid())
	assert.False(t, p.IsExpired())

	p.Used = true
	assert.False(t, p.IsValid())

	expired := &PasswordReset{ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, expired.IsExpired())
	assert.False(t, expired.IsValid())
}

func TestIsValidTransactionType(t *testing.T) {
	assert.True(t, IsValidTransactionType(TransactionTypeIncome))
	assert.True(t, IsValidTransactionType(TransactionTypeExpense))
	assert.False(t, IsValidTransactionType("transfer"))
	assert.False(t, IsValidTransactionType(""))
}
