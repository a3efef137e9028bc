package game

import (
	"testing"

	"github.com/shopspring/decimal"
)

var testValue = decimal.NewFromInt(10)

// testContext is an in-memory StepContext and Payer.
type testContext struct {
	restitution float64
	reward      float64
	balance     decimal.Decimal
	credits     int
}

func newTestContext(balance int64) *testContext {
	return &testContext{restitution: 0.5, reward: 1, balance: decimal.NewFromInt(balance)}
}

func (c *testContext) Restitution() float64      { return c.restitution }
func (c *testContext) RewardMultiplier() float64 { return c.reward }

func (c *testContext) Credit(amount decimal.Decimal) {
	c.balance = c.balance.Add(amount)
	c.credits++
}

func (c *testContext) TryDebit(amount decimal.Decimal) bool {
	if c.balance.LessThan(amount) {
		return false
	}
	c.balance = c.balance.Sub(amount)
	return true
}

func mustDefaultBoard(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoard(DefaultBoardConfig())
	if err != nil {
		t.Fatalf("default board: %v", err)
	}
	return b
}
