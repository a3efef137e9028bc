package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// PlaySession is the audit row for one board session. Balances are not stored.
type PlaySession struct {
	ID        string       `db:"id" json:"id"`
	BoardRows int          `db:"board_rows" json:"board_rows"`
	ZoneCount int          `db:"zone_count" json:"zone_count"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	EndedAt   sql.NullTime `db:"ended_at" json:"ended_at,omitempty"`
}

// DropResult records a single settled ball
type DropResult struct {
	ID               int64           `db:"id" json:"id"`
	SessionID        string          `db:"session_id" json:"session_id"`
	BallID           int64           `db:"ball_id" json:"ball_id"`
	ZoneIndex        int             `db:"zone_index" json:"zone_index"` // -1 when no zone matched
	Multiplier       float64         `db:"multiplier" json:"multiplier"`
	RewardMultiplier float64         `db:"reward_multiplier" json:"reward_multiplier"`
	BallValue        decimal.Decimal `db:"ball_value" json:"ball_value"`
	Payout           decimal.Decimal `db:"payout" json:"payout"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// UpgradePurchase records a bought upgrade level
type UpgradePurchase struct {
	ID        int64           `db:"id" json:"id"`
	SessionID string          `db:"session_id" json:"session_id"`
	Kind      string          `db:"kind" json:"kind"`
	Level     int             `db:"level" json:"level"`
	Cost      decimal.Decimal `db:"cost" json:"cost"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
