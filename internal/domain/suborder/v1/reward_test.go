package v1

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCoinReward(t *testing.T) {
	tests := []struct {
		total    int64
		expected int64
	}{
		{total: 350_000, expected: 500}, // 3500 capped to 500
		{total: 200_000, expected: 500}, // 2000 capped to 500
		{total: 800, expected: 10},      // 8 raised to the floor of 10
		{total: 30_000, expected: 300},
		{total: 50_000, expected: 500},
		{total: 0, expected: 10},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, CoinReward(decimal.NewFromInt(tt.total)))
	}
}
