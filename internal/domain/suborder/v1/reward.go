package v1

import "github.com/shopspring/decimal"

// CoinReward computes the receipt-confirmation reward:
// min(500, max(10, floor(total*0.01))). The 500 cap applies to every order
// from 50 000 VND up.
func CoinReward(subOrderTotal decimal.Decimal) int64 {
	raw := subOrderTotal.Mul(decimal.NewFromFloat(0.01)).Floor().IntPart()

	reward := raw
	if reward < 10 {
		reward = 10
	}

	if reward > 500 {
		reward = 500
	}

	return reward
}
