package game

import (
	"github.com/shopspring/decimal"
)

// StepContext is the externally owned state a step reads and writes: upgrade
// effects in, credited payouts out.
type StepContext interface {
	Restitution() float64
	RewardMultiplier() float64
	Credit(amount decimal.Decimal)
}

// Payer is charged for a drop. TryDebit returns false without side effects
// when funds are short.
type Payer interface {
	TryDebit(amount decimal.Decimal) bool
}

// StepResult is what one tick produced.
type StepResult struct {
	Tick        uint64           `json:"tick"`
	Balls       []BallState      `json:"balls"`
	Settlements []Settlement     `json:"settlements,omitempty"`
	Collisions  []CollisionEvent `json:"-"`
	Removed     []uint64         `json:"removed,omitempty"`
	Credited    decimal.Decimal  `json:"credited"`
}

// Simulation owns the active balls of one board. It is not safe for
// concurrent use; callers serialize Spawn/Drop/Step.
type Simulation struct {
	board    *Board
	resolver *Resolver
	gravity  float64
	spawnY   float64
	value    decimal.Decimal

	balls   []*Ball
	pending []*Ball
	nextID  uint64
	tick    uint64
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithRandomSource replaces the jitter source.
func WithRandomSource(src RandomSource) Option {
	return func(s *Simulation) { s.resolver.rng = src }
}

// WithGravity overrides the per-frame downward acceleration.
func WithGravity(g float64) Option {
	return func(s *Simulation) { s.gravity = g }
}

// WithSpawnY overrides the drop height.
func WithSpawnY(y float64) Option {
	return func(s *Simulation) { s.spawnY = y }
}

// WithBallValue sets the value carried (and charged) by Drop.
func WithBallValue(v decimal.Decimal) Option {
	return func(s *Simulation) { s.value = v }
}

// NewSimulation creates an empty simulation over board.
func NewSimulation(board *Board, opts ...Option) *Simulation {
	s := &Simulation{
		board:    board,
		resolver: NewResolver(board, NewTimeSeededSource()),
		gravity:  Gravity,
		spawnY:   SpawnY,
		value:    decimal.NewFromInt(DefaultBallCost),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulation) Board() *Board              { return s.board }
func (s *Simulation) Tick() uint64               { return s.tick }
func (s *Simulation) BallValue() decimal.Decimal { return s.value }

// Balls returns the active balls. The slice is a copy; the balls are not.
func (s *Simulation) Balls() []*Ball {
	return append([]*Ball(nil), s.balls...)
}

// ActiveCount counts active plus not-yet-admitted balls.
func (s *Simulation) ActiveCount() int {
	return len(s.balls) + len(s.pending)
}

// Spawn enqueues a falling ball at x. It joins the board on the next Step.
func (s *Simulation) Spawn(x float64, value decimal.Decimal) *Ball {
	s.nextID++
	b := NewBall(s.nextID, Vec2{X: x, Y: s.spawnY}, value)
	s.pending = append(s.pending, b)
	return b
}

// Drop charges payer the ball value and spawns a ball at x. It returns false
// and spawns nothing when the payer can't cover it.
func (s *Simulation) Drop(payer Payer, x float64) (*Ball, bool) {
	if payer == nil || !payer.TryDebit(s.value) {
		return nil, false
	}
	return s.Spawn(x, s.value), true
}

// DropCenter drops at the horizontal centre of the board.
func (s *Simulation) DropCenter(payer Payer) (*Ball, bool) {
	return s.Drop(payer, s.board.Width()/2)
}

// Step advances the world by one frame.
func (s *Simulation) Step(ctx StepContext) StepResult {
	s.tick++
	if len(s.pending) > 0 {
		s.balls = append(s.balls, s.pending...)
		s.pending = s.pending[:0]
	}

	res := StepResult{Tick: s.tick, Credited: decimal.Zero}

	// 1. integrate
	for _, b := range s.balls {
		prev := b.Position
		b.Velocity.Y += s.gravity
		b.Position = b.Position.Plus(b.Velocity)
		b.sanitize(prev)
	}

	// 2. pegs and walls per ball, then pairs
	restitution := ctx.Restitution()
	pegs := s.board.pegs
	for _, b := range s.balls {
		res.Collisions = append(res.Collisions, s.resolver.ResolvePegs(b, pegs, restitution)...)
		if ev, ok := s.resolver.ResolveWall(b); ok {
			res.Collisions = append(res.Collisions, ev)
		}
	}
	res.Collisions = append(res.Collisions, s.resolver.ResolvePairs(s.balls)...)

	// 3. scoring
	res.Settlements = ResolveScoring(s.board, s.balls, ctx)
	for _, st := range res.Settlements {
		res.Credited = res.Credited.Add(st.Payout)
	}

	// 4. cull
	limit := s.board.RemovalY()
	kept := s.balls[:0]
	for _, b := range s.balls {
		if b.Position.Y > limit {
			res.Removed = append(res.Removed, b.ID)
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(s.balls); i++ {
		s.balls[i] = nil
	}
	s.balls = kept

	res.Balls = s.States()
	return res
}

// States returns rounded snapshots of the active balls.
func (s *Simulation) States() []BallState {
	out := make([]BallState, len(s.balls))
	for i, b := range s.balls {
		out[i] = b.State()
	}
	return out
}
