package session

import (
	"context"
	"log"
	"time"

	"github.com/playmatatu/plinko/internal/metrics"
	"github.com/playmatatu/plinko/internal/models"
	"github.com/playmatatu/plinko/internal/redis"
)

// Broadcaster fans messages out to the subscribers of a session.
type Broadcaster interface {
	Broadcast(sessionID string, msg interface{})
	CloseRoom(sessionID string)
}

// Recorder is the write-only audit trail.
type Recorder interface {
	StartSession(ctx context.Context, sess models.PlaySession) error
	EndSession(ctx context.Context, sessionID string) error
	RecordDrops(ctx context.Context, drops []models.DropResult) error
	RecordPurchase(ctx context.Context, p models.UpgradePurchase) error
}

// Publisher pushes events and hot state to other instances.
type Publisher interface {
	PublishSettled(ctx context.Context, events []redis.SettledEvent) error
	CacheSnapshot(ctx context.Context, sessionID string, snapshot interface{}, ttl time.Duration) error
	AddEarnings(ctx context.Context, sessionID string, amount float64) error
	Forget(ctx context.Context, sessionID string)
}

const sinkTimeout = 3 * time.Second

// sinks runs infrastructure side effects off the frame loop. Failures are
// logged and counted, never returned.
type sinks struct {
	hub       Broadcaster
	recorder  Recorder
	publisher Publisher
}

func (k sinks) broadcast(sessionID string, msg Message) {
	if k.hub != nil {
		k.hub.Broadcast(sessionID, msg)
	}
}

func (k sinks) closeRoom(sessionID string) {
	if k.hub != nil {
		k.hub.CloseRoom(sessionID)
	}
}

func (k sinks) async(fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (k sinks) startSession(sess models.PlaySession) {
	if k.recorder == nil {
		return
	}
	k.async(func(ctx context.Context) {
		if err := k.recorder.StartSession(ctx, sess); err != nil {
			metrics.InfraErrors.WithLabelValues(metrics.BackendPostgres).Inc()
			log.Printf("[DB] %v", err)
		}
	})
}

func (k sinks) settled(sessionID string, drops []models.DropResult, events []redis.SettledEvent, earned float64) {
	if k.recorder != nil {
		k.async(func(ctx context.Context) {
			if err := k.recorder.RecordDrops(ctx, drops); err != nil {
				metrics.InfraErrors.WithLabelValues(metrics.BackendPostgres).Inc()
				log.Printf("[DB] %v", err)
			}
		})
	}
	if k.publisher != nil {
		k.async(func(ctx context.Context) {
			if err := k.publisher.PublishSettled(ctx, events); err != nil {
				metrics.InfraErrors.WithLabelValues(metrics.BackendRedis).Inc()
				log.Printf("[REDIS] %v", err)
			}
			if err := k.publisher.AddEarnings(ctx, sessionID, earned); err != nil {
				metrics.InfraErrors.WithLabelValues(metrics.BackendRedis).Inc()
				log.Printf("[REDIS] leaderboard update for %s: %v", sessionID, err)
			}
		})
	}
}

func (k sinks) purchased(p models.UpgradePurchase) {
	if k.recorder == nil {
		return
	}
	k.async(func(ctx context.Context) {
		if err := k.recorder.RecordPurchase(ctx, p); err != nil {
			metrics.InfraErrors.WithLabelValues(metrics.BackendPostgres).Inc()
			log.Printf("[DB] %v", err)
		}
	})
}

func (k sinks) snapshot(sessionID string, snap Snapshot, ttl time.Duration) {
	if k.publisher == nil {
		return
	}
	k.async(func(ctx context.Context) {
		if err := k.publisher.CacheSnapshot(ctx, sessionID, snap, ttl); err != nil {
			metrics.InfraErrors.WithLabelValues(metrics.BackendRedis).Inc()
			log.Printf("[REDIS] snapshot for %s: %v", sessionID, err)
		}
	})
}

func (k sinks) ended(sessionID string) {
	k.async(func(ctx context.Context) {
		if k.recorder != nil {
			if err := k.recorder.EndSession(ctx, sessionID); err != nil {
				metrics.InfraErrors.WithLabelValues(metrics.BackendPostgres).Inc()
				log.Printf("[DB] %v", err)
			}
		}
		if k.publisher != nil {
			k.publisher.Forget(ctx, sessionID)
		}
	})
}
