package game

import "github.com/shopspring/decimal"

// BallStatus is the lifecycle stage of a ball.
type BallStatus string

const (
	BallFalling BallStatus = "FALLING"
	BallSettled BallStatus = "SETTLED"
)

// Ball is a falling body. Value is fixed at creation.
type Ball struct {
	ID       uint64
	Position Vec2
	Velocity Vec2
	value    decimal.Decimal
	settled  bool
}

// NewBall creates a ball at rest at pos.
func NewBall(id uint64, pos Vec2, value decimal.Decimal) *Ball {
	return &Ball{ID: id, Position: pos, value: value}
}

// Value is the stake carried by the ball.
func (b *Ball) Value() decimal.Decimal {
	return b.value
}

// Settled reports whether the ball has crossed the scoring line.
func (b *Ball) Settled() bool {
	return b.settled
}

// Status returns the lifecycle stage.
func (b *Ball) Status() BallStatus {
	if b.settled {
		return BallSettled
	}
	return BallFalling
}

// settle flips the settled flag and reports whether this call did it.
func (b *Ball) settle() bool {
	if b.settled {
		return false
	}
	b.settled = true
	return true
}

// sanitize resets non-finite state so a bad frame can't poison later math.
func (b *Ball) sanitize(fallback Vec2) {
	if !b.Velocity.IsFinite() {
		b.Velocity = Vec2{}
	}
	if !b.Position.IsFinite() {
		b.Position = fallback
	}
}

// BallState is the serializable view of a ball.
type BallState struct {
	ID     uint64     `json:"id"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	VX     float64    `json:"vx"`
	VY     float64    `json:"vy"`
	Value  string     `json:"value"`
	Status BallStatus `json:"status"`
}

// State returns a rounded snapshot of the ball.
func (b *Ball) State() BallState {
	p := b.Position.Rounded()
	v := b.Velocity.Rounded()
	return BallState{
		ID:     b.ID,
		X:      p.X,
		Y:      p.Y,
		VX:     v.X,
		VY:     v.Y,
		Value:  b.value.String(),
		Status: b.Status(),
	}
}
