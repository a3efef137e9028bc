package game

import (
	"math"

	"github.com/shopspring/decimal"
)

// Settlement is emitted once per ball when it crosses the scoring line.
// ZoneIndex is -1 when the ball missed every zone.
type Settlement struct {
	BallID     uint64          `json:"ball_id"`
	ZoneIndex  int             `json:"zone"`
	Multiplier float64         `json:"multiplier"`
	Payout     decimal.Decimal `json:"payout"`
	Position   Vec2            `json:"position"`
}

// Matched reports whether the ball landed in a zone.
func (s Settlement) Matched() bool {
	return s.ZoneIndex >= 0
}

// Payout computes value × zone multiplier × reward multiplier. A multiplier
// that is not a positive finite number pays nothing.
func Payout(value decimal.Decimal, zoneMultiplier, rewardMultiplier float64) decimal.Decimal {
	if !positiveFinite(zoneMultiplier) || !positiveFinite(rewardMultiplier) {
		return decimal.Zero
	}
	return value.Mul(decimal.NewFromFloat(zoneMultiplier)).Mul(decimal.NewFromFloat(rewardMultiplier))
}

// Settle scores a single ball if it is below the scoring line and not yet
// settled. The flag is set whether or not a zone matched.
func Settle(board *Board, ball *Ball, rewardMultiplier float64) (Settlement, bool) {
	if ball.Settled() || ball.Position.Y <= board.ScoringLineY() {
		return Settlement{}, false
	}
	if !ball.settle() {
		return Settlement{}, false
	}

	s := Settlement{
		BallID:    ball.ID,
		ZoneIndex: -1,
		Payout:    decimal.Zero,
		Position:  ball.Position.Rounded(),
	}
	if idx, ok := board.ZoneAt(ball.Position.X); ok {
		zone := board.zones[idx]
		s.ZoneIndex = idx
		s.Multiplier = zone.Multiplier
		s.Payout = Payout(ball.Value(), zone.Multiplier, rewardMultiplier)
	}
	return s, true
}

// ResolveScoring settles every eligible ball and credits each payout to ctx.
func ResolveScoring(board *Board, balls []*Ball, ctx StepContext) []Settlement {
	reward := ctx.RewardMultiplier()
	var out []Settlement
	for _, b := range balls {
		s, ok := Settle(board, b, reward)
		if !ok {
			continue
		}
		if s.Payout.IsPositive() {
			ctx.Credit(s.Payout)
		}
		out = append(out, s)
	}
	return out
}

func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}
