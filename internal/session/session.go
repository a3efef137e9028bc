package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playmatatu/plinko/internal/economy"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/metrics"
	"github.com/playmatatu/plinko/internal/models"
	"github.com/playmatatu/plinko/internal/redis"
	"github.com/shopspring/decimal"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrInvalidDrop     = errors.New("drop position outside board")
)

// Settings shared by every session of a manager.
type Settings struct {
	StartingBalance decimal.Decimal
	BallCost        decimal.Decimal
	FrameInterval   time.Duration
	SnapshotEvery   uint64 // cache a snapshot every N active ticks; 0 disables
	SnapshotTTL     time.Duration
	NewRandom       func() game.RandomSource
}

type command struct {
	fn   func()
	done chan struct{}
}

// Session is one player's board. All simulation and account state is owned by
// the run goroutine; other goroutines go through do.
type Session struct {
	ID        string
	CreatedAt time.Time

	settings Settings
	sim      *game.Simulation
	account  *economy.Account
	sinks    sinks

	// loop-owned
	paused       bool
	autoTicker   *time.Ticker
	autoInterval time.Duration
	activeTicks  uint64
	lastBalls    int

	cmds       chan command
	stop       chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once
	lastActive atomic.Int64
}

func newSession(id string, board *game.Board, st Settings, k sinks) *Session {
	opts := []game.Option{game.WithBallValue(st.BallCost)}
	if st.NewRandom != nil {
		opts = append(opts, game.WithRandomSource(st.NewRandom()))
	}
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		settings:  st,
		sim:       game.NewSimulation(board, opts...),
		account:   economy.NewAccount(st.StartingBalance),
		sinks:     k,
		cmds:      make(chan command),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	s.touch()
	return s
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive is when the session last received a command.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.stopped
}

func (s *Session) run(ctx context.Context) {
	defer close(s.stopped)

	interval := s.settings.FrameInterval
	if interval <= 0 {
		interval = time.Second / 60
	}
	frame := time.NewTicker(interval)
	defer frame.Stop()
	defer s.stopAutoDrop()

	for {
		var autoC <-chan time.Time
		if s.autoTicker != nil {
			autoC = s.autoTicker.C
		}

		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case cmd := <-s.cmds:
			cmd.fn()
			close(cmd.done)
		case <-frame.C:
			if !s.paused {
				s.step()
			}
		case <-autoC:
			if !s.paused {
				s.autoDrop()
			}
		}
	}
}

// do runs fn on the session goroutine between two steps and waits for it.
func (s *Session) do(ctx context.Context, fn func()) error {
	s.touch()
	done := make(chan struct{})
	select {
	case s.cmds <- command{fn: fn, done: done}:
	case <-s.stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-s.stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops the loop and waits for it to exit. Safe to call repeatedly.
func (s *Session) close() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.stopped
}

// Drop charges the ball cost and spawns a ball at x, or at the board centre
// when x is nil.
func (s *Session) Drop(ctx context.Context, x *float64) (DropReceipt, error) {
	board := s.sim.Board()
	pos := board.Width() / 2
	if x != nil {
		if math.IsNaN(*x) || *x < 0 || *x > board.Width() {
			return DropReceipt{}, ErrInvalidDrop
		}
		pos = *x
	}

	var (
		rec DropReceipt
		err error
	)
	if derr := s.do(ctx, func() { rec, err = s.drop(pos, metrics.SourceManual) }); derr != nil {
		return DropReceipt{}, derr
	}
	return rec, err
}

func (s *Session) drop(x float64, source string) (DropReceipt, error) {
	ball, ok := s.sim.Drop(s.account, x)
	if !ok {
		return DropReceipt{}, fmt.Errorf("%w: ball costs %s, balance %s",
			economy.ErrInsufficientFunds, s.sim.BallValue(), s.account.Balance())
	}
	metrics.BallsDropped.WithLabelValues(source).Inc()
	return DropReceipt{
		BallID:  ball.ID,
		X:       x,
		Cost:    s.sim.BallValue().StringFixed(2),
		Balance: s.account.Balance().StringFixed(2),
	}, nil
}

// BuyUpgrade raises one upgrade track. Buying auto-drop (re)starts the
// auto-drop timer at the new interval.
func (s *Session) BuyUpgrade(ctx context.Context, kind economy.UpgradeKind) (economy.Purchase, error) {
	var (
		p   economy.Purchase
		err error
	)
	if derr := s.do(ctx, func() { p, err = s.buyUpgrade(kind) }); derr != nil {
		return economy.Purchase{}, derr
	}
	return p, err
}

func (s *Session) buyUpgrade(kind economy.UpgradeKind) (economy.Purchase, error) {
	p, err := s.account.BuyUpgrade(kind)
	if err != nil {
		return p, err
	}
	metrics.UpgradesPurchased.WithLabelValues(string(kind)).Inc()
	log.Printf("[SESSION] %s bought %s level %d for %s", s.ID, kind, p.Level, p.Cost)

	if kind == economy.AutoDrop {
		s.startAutoDrop()
	}

	s.sinks.purchased(models.UpgradePurchase{
		SessionID: s.ID,
		Kind:      string(kind),
		Level:     p.Level,
		Cost:      p.Cost,
		CreatedAt: time.Now(),
	})
	s.sinks.broadcast(s.ID, Message{Type: MsgUpgrade, Data: s.account.State()})
	return p, nil
}

// Pause stops stepping and auto-drop until Resume. Pending drops wait.
func (s *Session) Pause(ctx context.Context) error {
	return s.do(ctx, func() { s.paused = true })
}

func (s *Session) Resume(ctx context.Context) error {
	return s.do(ctx, func() { s.paused = false })
}

// Snapshot returns the current read model.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := s.do(ctx, func() { snap = s.snapshot() }); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		SessionID:        s.ID,
		Tick:             s.sim.Tick(),
		Paused:           s.paused,
		AutoDropping:     s.autoTicker != nil,
		BallCost:         s.sim.BallValue().StringFixed(2),
		RewardMultiplier: s.account.RewardMultiplier(),
		Account:          s.account.State(),
		Balls:            s.sim.States(),
	}
}

// Board is immutable and safe to read from any goroutine.
func (s *Session) Board() *game.Board {
	return s.sim.Board()
}

func (s *Session) startAutoDrop() {
	if !s.account.AutoDropEnabled() {
		return
	}
	interval := s.account.DropInterval()
	if interval <= 0 {
		return
	}
	if s.autoTicker != nil {
		s.autoTicker.Reset(interval)
	} else {
		s.autoTicker = time.NewTicker(interval)
	}
	s.autoInterval = interval
}

func (s *Session) stopAutoDrop() {
	if s.autoTicker == nil {
		return
	}
	s.autoTicker.Stop()
	s.autoTicker = nil
	s.autoInterval = 0
}

// autoDrop drops at the centre. Running out of funds stops the timer until the
// next auto-drop purchase.
func (s *Session) autoDrop() {
	if _, err := s.drop(s.sim.Board().Width()/2, metrics.SourceAuto); err != nil {
		s.stopAutoDrop()
		log.Printf("[SESSION] %s auto-drop stopped: %v", s.ID, err)
		s.sinks.broadcast(s.ID, Message{Type: MsgError, Data: ErrorData{Message: "auto-drop stopped: insufficient funds"}})
	}
}

// step advances one frame and fans the result out.
func (s *Session) step() game.StepResult {
	if s.sim.ActiveCount() == 0 {
		s.syncBallGauge(0)
		return game.StepResult{Tick: s.sim.Tick()}
	}

	start := time.Now()
	res := s.sim.Step(s.account)
	metrics.StepDuration.Observe(time.Since(start).Seconds())

	for _, c := range res.Collisions {
		metrics.Collisions.WithLabelValues(c.Type).Inc()
	}
	s.syncBallGauge(len(res.Balls))

	if len(res.Settlements) > 0 {
		s.settle(res)
	}

	s.sinks.broadcast(s.ID, Message{Type: MsgFrame, Data: Frame{
		Tick:        res.Tick,
		Balls:       res.Balls,
		Settlements: res.Settlements,
		Removed:     res.Removed,
		Balance:     s.account.Balance().StringFixed(2),
	}})

	s.activeTicks++
	if every := s.settings.SnapshotEvery; every > 0 && s.activeTicks%every == 0 {
		s.sinks.snapshot(s.ID, s.snapshot(), s.settings.SnapshotTTL)
	}
	return res
}

func (s *Session) settle(res game.StepResult) {
	now := time.Now()
	reward := s.account.RewardMultiplier()
	balance := s.account.Balance().StringFixed(2)
	value := s.sim.BallValue()

	drops := make([]models.DropResult, 0, len(res.Settlements))
	events := make([]redis.SettledEvent, 0, len(res.Settlements))
	for _, st := range res.Settlements {
		metrics.BallsSettled.WithLabelValues(strconv.FormatBool(st.Matched())).Inc()
		drops = append(drops, models.DropResult{
			SessionID:        s.ID,
			BallID:           int64(st.BallID),
			ZoneIndex:        st.ZoneIndex,
			Multiplier:       st.Multiplier,
			RewardMultiplier: reward,
			BallValue:        value,
			Payout:           st.Payout,
			CreatedAt:        now,
		})
		events = append(events, redis.SettledEvent{
			Type:       "ball_settled",
			SessionID:  s.ID,
			BallID:     st.BallID,
			Zone:       st.ZoneIndex,
			Multiplier: st.Multiplier,
			Payout:     st.Payout.StringFixed(2),
			Balance:    balance,
		})
	}

	credited, _ := res.Credited.Float64()
	metrics.PayoutTotal.Add(credited)
	s.sinks.settled(s.ID, drops, events, credited)
}

func (s *Session) syncBallGauge(n int) {
	if d := n - s.lastBalls; d != 0 {
		metrics.ActiveBalls.Add(float64(d))
		s.lastBalls = n
	}
}
