package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/plinko/internal/models"
)

var errNoDB = errors.New("database not configured")

// AuditStore appends session, drop and upgrade rows. It never reads state back
// into a running session.
type AuditStore struct {
	db *sqlx.DB
}

func NewAuditStore(db *sqlx.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) StartSession(ctx context.Context, sess models.PlaySession) error {
	if s == nil || s.db == nil {
		return errNoDB
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO play_sessions (id, board_rows, zone_count, created_at) VALUES (:id, :board_rows, :zone_count, :created_at)`,
		sess)
	if err != nil {
		return fmt.Errorf("insert play_session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *AuditStore) EndSession(ctx context.Context, sessionID string) error {
	if s == nil || s.db == nil {
		return errNoDB
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE play_sessions SET ended_at=NOW() WHERE id=$1 AND ended_at IS NULL`, sessionID); err != nil {
		return fmt.Errorf("end play_session %s: %w", sessionID, err)
	}
	return nil
}

// RecordDrops batch-inserts settled balls. Duplicate (session, ball) rows are ignored.
func (s *AuditStore) RecordDrops(ctx context.Context, drops []models.DropResult) error {
	if s == nil || s.db == nil {
		return errNoDB
	}
	if len(drops) == 0 {
		return nil
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO drop_results (session_id, ball_id, zone_index, multiplier, reward_multiplier, ball_value, payout, created_at)
		 VALUES (:session_id, :ball_id, :zone_index, :multiplier, :reward_multiplier, :ball_value, :payout, :created_at)
		 ON CONFLICT (session_id, ball_id) DO NOTHING`,
		drops)
	if err != nil {
		return fmt.Errorf("insert %d drop_results: %w", len(drops), err)
	}
	return nil
}

func (s *AuditStore) RecordPurchase(ctx context.Context, p models.UpgradePurchase) error {
	if s == nil || s.db == nil {
		return errNoDB
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO upgrade_purchases (session_id, kind, level, cost, created_at) VALUES (:session_id, :kind, :level, :cost, :created_at)`,
		p)
	if err != nil {
		return fmt.Errorf("insert upgrade_purchase: %w", err)
	}
	return nil
}

// RecentDrops lists the latest drops of a session, newest first.
func (s *AuditStore) RecentDrops(ctx context.Context, sessionID string, limit int) ([]models.DropResult, error) {
	if s == nil || s.db == nil {
		return nil, errNoDB
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []models.DropResult
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, session_id, ball_id, zone_index, multiplier, reward_multiplier, ball_value, payout, created_at
		 FROM drop_results WHERE session_id=$1 ORDER BY id DESC LIMIT $2`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("select drop_results: %w", err)
	}
	return out, nil
}
