package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	EventsChannel  = "plinko_events"
	LeaderboardKey = "plinko_leaderboard"
)

// ErrCacheMiss is returned when nothing is cached under a key.
var ErrCacheMiss = redis.Nil

// SnapshotKey is where the latest session snapshot is cached.
func SnapshotKey(sessionID string) string {
	return "plinko:" + sessionID + ":state"
}

// SettledEvent is published once per settled ball.
type SettledEvent struct {
	Type       string  `json:"type"`
	SessionID  string  `json:"session_id"`
	BallID     uint64  `json:"ball_id"`
	Zone       int     `json:"zone"`
	Multiplier float64 `json:"multiplier"`
	Payout     string  `json:"payout"`
	Balance    string  `json:"balance"`
}

// Publisher pushes session events and hot state to Redis. A nil client turns
// every call into a no-op.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) enabled() bool {
	return p != nil && p.rdb != nil
}

// PublishSettled publishes events on EventsChannel.
func (p *Publisher) PublishSettled(ctx context.Context, events []SettledEvent) error {
	if !p.enabled() || len(events) == 0 {
		return nil
	}
	pipe := p.rdb.Pipeline()
	for _, ev := range events {
		if ev.Type == "" {
			ev.Type = "ball_settled"
		}
		b, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal settled event: %w", err)
		}
		pipe.Publish(ctx, EventsChannel, b)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %d settled events: %w", len(events), err)
	}
	return nil
}

// CacheSnapshot stores the JSON-encoded snapshot with a TTL.
func (p *Publisher) CacheSnapshot(ctx context.Context, sessionID string, snapshot interface{}, ttl time.Duration) error {
	if !p.enabled() {
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return p.rdb.SetEx(ctx, SnapshotKey(sessionID), data, ttl).Err()
}

// CachedSnapshot returns the raw cached snapshot, or ErrCacheMiss when absent.
func (p *Publisher) CachedSnapshot(ctx context.Context, sessionID string) ([]byte, error) {
	if !p.enabled() {
		return nil, ErrCacheMiss
	}
	return p.rdb.Get(ctx, SnapshotKey(sessionID)).Bytes()
}

// AddEarnings bumps the session's lifetime winnings on the leaderboard.
func (p *Publisher) AddEarnings(ctx context.Context, sessionID string, amount float64) error {
	if !p.enabled() || amount <= 0 {
		return nil
	}
	return p.rdb.ZIncrBy(ctx, LeaderboardKey, amount, sessionID).Err()
}

// LeaderboardEntry is one ranked session.
type LeaderboardEntry struct {
	SessionID string  `json:"session_id"`
	Earned    float64 `json:"earned"`
}

// TopEarners returns the n highest-earning sessions.
func (p *Publisher) TopEarners(ctx context.Context, n int64) ([]LeaderboardEntry, error) {
	if !p.enabled() {
		return nil, nil
	}
	zs, err := p.rdb.ZRevRangeWithScores(ctx, LeaderboardKey, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		out = append(out, LeaderboardEntry{SessionID: member, Earned: z.Score})
	}
	return out, nil
}

// Forget drops cached state for a closed session.
func (p *Publisher) Forget(ctx context.Context, sessionID string) {
	if !p.enabled() {
		return
	}
	if err := p.rdb.Del(ctx, SnapshotKey(sessionID)).Err(); err != nil {
		log.Printf("[REDIS] Failed to delete snapshot for %s: %v", sessionID, err)
	}
}
