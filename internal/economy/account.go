package economy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account is the per-session wallet plus upgrade levels. It satisfies
// game.StepContext and game.Payer. Not safe for concurrent use; the session
// loop owns it.
type Account struct {
	balance  decimal.Decimal
	earned   decimal.Decimal
	spent    decimal.Decimal
	upgrades *Upgrades
}

// NewAccount opens an account with the given starting balance and default upgrades.
func NewAccount(starting decimal.Decimal) *Account {
	return &Account{
		balance:  starting,
		earned:   decimal.Zero,
		spent:    decimal.Zero,
		upgrades: DefaultUpgrades(),
	}
}

func (a *Account) Balance() decimal.Decimal { return a.balance }

// Earned is the lifetime total of credited payouts.
func (a *Account) Earned() decimal.Decimal { return a.earned }

// Spent is the lifetime total of drops and upgrade purchases.
func (a *Account) Spent() decimal.Decimal { return a.spent }

func (a *Account) Upgrades() *Upgrades { return a.upgrades }

// CanAfford reports whether amount can be debited.
func (a *Account) CanAfford(amount decimal.Decimal) bool {
	return !a.balance.LessThan(amount)
}

// TryDebit removes amount if funds allow.
func (a *Account) TryDebit(amount decimal.Decimal) bool {
	if amount.IsNegative() || !a.CanAfford(amount) {
		return false
	}
	a.balance = a.balance.Sub(amount)
	a.spent = a.spent.Add(amount)
	return true
}

// Credit adds a payout. Non-positive amounts are ignored.
func (a *Account) Credit(amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	a.balance = a.balance.Add(amount)
	a.earned = a.earned.Add(amount)
}

// Restitution is the peg bounce coefficient from the bounciness track.
func (a *Account) Restitution() float64 {
	return a.upgrades.value(Bounciness)
}

// RewardMultiplier scales every payout.
func (a *Account) RewardMultiplier() float64 {
	return a.upgrades.value(RewardMultiplier)
}

// AutoDropEnabled is true once at least one auto-drop level was bought.
func (a *Account) AutoDropEnabled() bool {
	t, err := a.upgrades.Get(AutoDrop)
	return err == nil && t.Level > 0
}

// DropInterval is the auto-drop cadence at the current level.
func (a *Account) DropInterval() time.Duration {
	return time.Duration(a.upgrades.value(AutoDrop)) * time.Millisecond
}

// Purchase describes a completed upgrade buy.
type Purchase struct {
	Kind    UpgradeKind     `json:"kind"`
	Level   int             `json:"level"`
	Cost    decimal.Decimal `json:"cost"`
	Balance decimal.Decimal `json:"balance"`
}

// BuyUpgrade raises kind by one level if it isn't maxed and funds allow.
func (a *Account) BuyUpgrade(kind UpgradeKind) (Purchase, error) {
	t, err := a.upgrades.Get(kind)
	if err != nil {
		return Purchase{}, err
	}
	if t.Maxed() {
		return Purchase{}, fmt.Errorf("%w: %s level %d", ErrMaxLevel, kind, t.Level)
	}
	cost := t.Cost()
	if !a.TryDebit(cost) {
		return Purchase{}, fmt.Errorf("%w: %s costs %s, balance %s", ErrInsufficientFunds, kind, cost, a.balance)
	}
	t.Level++
	return Purchase{Kind: kind, Level: t.Level, Cost: cost, Balance: a.balance}, nil
}

// AccountState is the read model of an account.
type AccountState struct {
	Balance  string         `json:"balance"`
	Earned   string         `json:"earned"`
	Spent    string         `json:"spent"`
	Upgrades []UpgradeState `json:"upgrades"`
}

func (a *Account) State() AccountState {
	return AccountState{
		Balance:  a.balance.StringFixed(2),
		Earned:   a.earned.StringFixed(2),
		Spent:    a.spent.StringFixed(2),
		Upgrades: a.upgrades.States(),
	}
}
