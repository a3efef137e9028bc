package game

import "math"

// Collision types recorded in CollisionEvent.Type.
const (
	CollisionPeg  = "peg"
	CollisionBall = "ball"
	CollisionWall = "wall"
)

// CollisionEvent records one resolved contact.
type CollisionEvent struct {
	Type     string  `json:"type"`
	BallID   uint64  `json:"ball_id"`
	TargetID uint64  `json:"target_id"` // peg index or ball ID; unused for walls
	Speed    float64 `json:"speed"`     // normal speed at impact
}

// degenerate normals used when two centres coincide
var (
	pegFallbackNormal  = Vec2{X: 0, Y: -1}
	ballFallbackNormal = Vec2{X: 1, Y: 0}
)

// Resolver applies impulse-based contact response for pegs, ball pairs and
// the two vertical walls. Pegs never move.
type Resolver struct {
	BallRadius      float64
	PegRadius       float64
	Width           float64
	BallRestitution float64
	WallDamping     float64
	Jitter          float64

	rng RandomSource
}

// NewResolver builds a resolver for the board with the default coefficients.
func NewResolver(board *Board, rng RandomSource) *Resolver {
	return &Resolver{
		BallRadius:      board.BallRadius(),
		PegRadius:       board.PegRadius(),
		Width:           board.Width(),
		BallRestitution: BallRestitution,
		WallDamping:     WallDamping,
		Jitter:          PegJitter,
		rng:             rng,
	}
}

// clampRestitution keeps e in [0, 1]; NaN collapses to 0.
func clampRestitution(e float64) float64 {
	if math.IsNaN(e) || e < 0 {
		return 0
	}
	if e > 1 {
		return 1
	}
	return e
}

// ResolvePeg handles one ball-peg contact. It returns the event and true when
// the ball was overlapping and moving toward the peg.
func (r *Resolver) ResolvePeg(ball *Ball, peg Peg, restitution float64) (CollisionEvent, bool) {
	minDist := r.BallRadius + r.PegRadius
	center := peg.Position()
	delta := ball.Position.Minus(center)
	dist := delta.Magnitude()
	if dist >= minDist {
		return CollisionEvent{}, false
	}

	n := pegFallbackNormal
	if dist > 0 {
		n = delta.Times(1 / dist)
	}

	vn := ball.Velocity.Dot(n)
	if vn >= 0 {
		return CollisionEvent{}, false
	}

	e := clampRestitution(restitution)
	impulse := -(1 + e) * vn
	ball.Velocity = ball.Velocity.Plus(n.Times(impulse))
	ball.Velocity.X += jitter(r.rng, r.Jitter)

	// Pushed to exactly touching so no penetration survives the step.
	ball.Position = center.Plus(n.Times(minDist))

	return CollisionEvent{Type: CollisionPeg, BallID: ball.ID, Speed: -vn}, true
}

// ResolvePegs tests the ball against every peg in layout order.
func (r *Resolver) ResolvePegs(ball *Ball, pegs []Peg, restitution float64) []CollisionEvent {
	var events []CollisionEvent
	reach := r.BallRadius + r.PegRadius
	for i, p := range pegs {
		if math.Abs(ball.Position.X-p.X) >= reach || math.Abs(ball.Position.Y-p.Y) >= reach {
			continue
		}
		if ev, ok := r.ResolvePeg(ball, p, restitution); ok {
			ev.TargetID = uint64(i)
			events = append(events, ev)
		}
	}
	return events
}

// ResolveWall reflects vx when the ball is within one radius of either wall.
// Position is left alone, so a ball may sit past the boundary for a frame.
func (r *Resolver) ResolveWall(ball *Ball) (CollisionEvent, bool) {
	if ball.Position.X >= r.BallRadius && ball.Position.X <= r.Width-r.BallRadius {
		return CollisionEvent{}, false
	}
	speed := math.Abs(ball.Velocity.X)
	ball.Velocity.X *= -r.WallDamping
	return CollisionEvent{Type: CollisionWall, BallID: ball.ID, Speed: speed}, true
}

// ResolvePair handles one ball-ball contact with equal masses. The impulse is
// split evenly so momentum is conserved and the separating normal speed is
// BallRestitution times the approach speed.
func (r *Resolver) ResolvePair(a, b *Ball) (CollisionEvent, bool) {
	minDist := 2 * r.BallRadius
	delta := b.Position.Minus(a.Position)
	dist := delta.Magnitude()
	if dist >= minDist {
		return CollisionEvent{}, false
	}

	if dist == 0 {
		half := ballFallbackNormal.Times(minDist / 2)
		a.Position = a.Position.Minus(half)
		b.Position = b.Position.Plus(half)
		return CollisionEvent{Type: CollisionBall, BallID: a.ID, TargetID: b.ID}, true
	}

	n := delta.Times(1 / dist)
	vn := b.Velocity.Minus(a.Velocity).Dot(n)
	if vn >= 0 {
		return CollisionEvent{}, false
	}

	e := clampRestitution(r.BallRestitution)
	j := -(1 + e) * vn / 2
	a.Velocity = a.Velocity.Minus(n.Times(j))
	b.Velocity = b.Velocity.Plus(n.Times(j))

	shift := n.Times((minDist - dist) / 2)
	a.Position = a.Position.Minus(shift)
	b.Position = b.Position.Plus(shift)

	return CollisionEvent{Type: CollisionBall, BallID: a.ID, TargetID: b.ID, Speed: -vn}, true
}

// ResolvePairs visits each unordered pair once, i < j.
func (r *Resolver) ResolvePairs(balls []*Ball) []CollisionEvent {
	var events []CollisionEvent
	for i := 0; i < len(balls); i++ {
		for j := i + 1; j < len(balls); j++ {
			if ev, ok := r.ResolvePair(balls[i], balls[j]); ok {
				events = append(events, ev)
			}
		}
	}
	return events
}
