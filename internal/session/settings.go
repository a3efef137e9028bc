package session

import (
	"time"

	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/shopspring/decimal"
)

// NewSettings derives session settings from the loaded config. Each session
// gets its own time-seeded jitter source.
func NewSettings(cfg *config.Config) Settings {
	hz := cfg.TickRateHz
	if hz <= 0 {
		hz = 60
	}
	ttl := time.Duration(cfg.SessionIdleMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	every := cfg.SnapshotEveryTicks
	if every < 0 {
		every = 0
	}
	return Settings{
		StartingBalance: decimal.NewFromFloat(cfg.StartingBalance),
		BallCost:        decimal.NewFromFloat(cfg.BallCost),
		FrameInterval:   time.Second / time.Duration(hz),
		SnapshotEvery:   uint64(every),
		SnapshotTTL:     ttl,
		NewRandom:       game.NewTimeSeededSource,
	}
}
