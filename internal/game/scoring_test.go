package game

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPayoutFormula(t *testing.T) {
	got := Payout(decimal.NewFromInt(10), 5, 2)
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("payout = %s, want 100", got)
	}

	got = Payout(decimal.NewFromInt(10), 0.2, 1.5)
	if !got.Equal(decimal.RequireFromString("3")) {
		t.Errorf("payout = %s, want 3", got)
	}

	if !Payout(decimal.NewFromInt(10), 0, 3).IsZero() {
		t.Error("zero multiplier must pay nothing")
	}
}

func TestPayoutNonFiniteMultipliers(t *testing.T) {
	bad := []float64{math.Inf(1), math.Inf(-1), math.NaN()}
	for _, m := range bad {
		if got := Payout(testValue, 5, m); !got.IsZero() {
			t.Errorf("reward %v: payout = %s, want 0", m, got)
		}
		if got := Payout(testValue, m, 2); !got.IsZero() {
			t.Errorf("zone %v: payout = %s, want 0", m, got)
		}
	}
}

func TestSettleWithNonFiniteReward(t *testing.T) {
	b := mustDefaultBoard(t)
	zone := b.Zones()[0]
	for _, reward := range []float64{math.Inf(1), math.NaN()} {
		ctx := newTestContext(0)
		ctx.reward = reward
		ball := NewBall(1, NewVec2(zone.X+zone.Width/2, b.ScoringLineY()+1), testValue)

		got := ResolveScoring(b, []*Ball{ball}, ctx)
		if len(got) != 1 || got[0].ZoneIndex != 0 || !got[0].Payout.IsZero() {
			t.Errorf("reward %v: settlements = %+v, want zone 0 with zero payout", reward, got)
		}
		if !ball.Settled() || ctx.credits != 0 {
			t.Errorf("reward %v: settled=%v credits=%d", reward, ball.Settled(), ctx.credits)
		}
	}
}

func TestSettleCreditsOnce(t *testing.T) {
	b := mustDefaultBoard(t)
	ctx := newTestContext(0)
	ctx.reward = 2

	zone := b.Zones()[3] // multiplier 5
	ball := NewBall(1, NewVec2(zone.X+zone.Width/2, b.ScoringLineY()+1), decimal.NewFromInt(10))

	first := ResolveScoring(b, []*Ball{ball}, ctx)
	if len(first) != 1 {
		t.Fatalf("settlements = %d, want 1", len(first))
	}
	if first[0].ZoneIndex != 3 || !first[0].Payout.Equal(decimal.NewFromInt(100)) {
		t.Errorf("settlement = %+v", first[0])
	}
	if !ball.Settled() || ball.Status() != BallSettled {
		t.Error("ball should be settled")
	}

	ball.Position.Y += 5
	second := ResolveScoring(b, []*Ball{ball}, ctx)
	if len(second) != 0 {
		t.Errorf("ball scored twice: %+v", second)
	}
	if ctx.credits != 1 || !ctx.balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("credits=%d balance=%s, want one credit of 100", ctx.credits, ctx.balance)
	}
}

func TestSettleAboveLineDoesNothing(t *testing.T) {
	b := mustDefaultBoard(t)
	ball := NewBall(1, NewVec2(300, b.ScoringLineY()), testValue)
	if _, ok := Settle(b, ball, 1); ok {
		t.Fatal("ball exactly on the line has not crossed it")
	}
	if ball.Settled() {
		t.Error("ball must stay falling")
	}
}

func TestSettleWithoutZoneMatch(t *testing.T) {
	b := mustDefaultBoard(t)
	ctx := newTestContext(0)

	ball := NewBall(1, NewVec2(5, b.ScoringLineY()+10), testValue) // far left of the band
	got := ResolveScoring(b, []*Ball{ball}, ctx)

	if len(got) != 1 {
		t.Fatalf("settlements = %d, want 1", len(got))
	}
	if got[0].Matched() || got[0].ZoneIndex != -1 || !got[0].Payout.IsZero() {
		t.Errorf("settlement = %+v, want unmatched zero payout", got[0])
	}
	if !ball.Settled() {
		t.Error("unmatched ball must still be settled")
	}
	if ctx.credits != 0 {
		t.Errorf("credits = %d, want 0", ctx.credits)
	}
}

func TestSettleOnZoneBoundaryPicksOneZone(t *testing.T) {
	b := mustDefaultBoard(t)
	zones := b.Zones()
	ctx := newTestContext(0)

	var balls []*Ball
	for i := 1; i < len(zones); i++ {
		balls = append(balls, NewBall(uint64(i), NewVec2(zones[i].X, b.ScoringLineY()+1), testValue))
	}
	got := ResolveScoring(b, balls, ctx)
	if len(got) != len(balls) {
		t.Fatalf("settlements = %d, want %d", len(got), len(balls))
	}
	for i, s := range got {
		if s.ZoneIndex != i+1 {
			t.Errorf("boundary ball %d landed in zone %d, want %d", s.BallID, s.ZoneIndex, i+1)
		}
	}
}
