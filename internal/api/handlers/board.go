package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/plinko/internal/auth"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/session"
)

type zoneView struct {
	game.ScoreZone
	EffectiveMultiplier float64 `json:"effective_multiplier"`
}

type boardView struct {
	Width            float64    `json:"width"`
	Height           float64    `json:"height"`
	PegRadius        float64    `json:"peg_radius"`
	BallRadius       float64    `json:"ball_radius"`
	ScoringLineY     float64    `json:"scoring_line_y"`
	RewardMultiplier float64    `json:"reward_multiplier"`
	Pegs             []game.Peg `json:"pegs"`
	Zones            []zoneView `json:"zones"`
}

func newBoardView(b *game.Board, reward float64) boardView {
	zones := b.Zones()
	views := make([]zoneView, len(zones))
	for i, z := range zones {
		views[i] = zoneView{ScoreZone: z, EffectiveMultiplier: z.Multiplier * reward}
	}
	return boardView{
		Width:            b.Width(),
		Height:           b.Height(),
		PegRadius:        b.PegRadius(),
		BallRadius:       b.BallRadius(),
		ScoringLineY:     b.ScoringLineY(),
		RewardMultiplier: reward,
		Pegs:             b.Pegs(),
		Zones:            views,
	}
}

// GetBoard returns the peg and zone layout. With a valid session token the
// zones carry that session's effective multipliers.
func GetBoard(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		reward := 1.0
		if id := c.GetString(auth.ContextSessionID); id != "" {
			if sess, err := mgr.Get(id); err == nil {
				ctx, cancel := context.WithTimeout(c.Request.Context(), commandTimeout)
				snap, err := sess.Snapshot(ctx)
				cancel()
				if err == nil {
					reward = snap.RewardMultiplier
				}
			}
		}
		c.JSON(http.StatusOK, newBoardView(mgr.Board(), reward))
	}
}
