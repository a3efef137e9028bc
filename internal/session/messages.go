package session

import (
	"github.com/playmatatu/plinko/internal/economy"
	"github.com/playmatatu/plinko/internal/game"
)

// Server to client message types.
const (
	MsgFrame    = "frame"
	MsgSnapshot = "snapshot"
	MsgUpgrade  = "upgrade"
	MsgError    = "error"
	MsgClosed   = "session_closed"
)

// Message is the envelope pushed to WebSocket subscribers.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Frame is one stepped tick as seen by the client.
type Frame struct {
	Tick        uint64            `json:"tick"`
	Balls       []game.BallState  `json:"balls"`
	Settlements []game.Settlement `json:"settlements,omitempty"`
	Removed     []uint64          `json:"removed,omitempty"`
	Balance     string            `json:"balance"`
}

// Snapshot is the full read model of a session.
type Snapshot struct {
	SessionID        string               `json:"session_id"`
	Tick             uint64               `json:"tick"`
	Paused           bool                 `json:"paused"`
	AutoDropping     bool                 `json:"auto_dropping"`
	BallCost         string               `json:"ball_cost"`
	RewardMultiplier float64              `json:"reward_multiplier"`
	Account          economy.AccountState `json:"account"`
	Balls            []game.BallState     `json:"balls"`
}

// DropReceipt is returned for an accepted drop.
type DropReceipt struct {
	BallID  uint64  `json:"ball_id"`
	X       float64 `json:"x"`
	Cost    string  `json:"cost"`
	Balance string  `json:"balance"`
}

// ErrorData is the payload of MsgError.
type ErrorData struct {
	Message string `json:"message"`
}
