package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/plinko/internal/auth"
	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/database"
	"github.com/playmatatu/plinko/internal/economy"
	"github.com/playmatatu/plinko/internal/redis"
	"github.com/playmatatu/plinko/internal/session"
)

const commandTimeout = 2 * time.Second

func commandContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), commandTimeout)
}

// respondError maps session and economy errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, session.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": "session closed"})
	case errors.Is(err, session.ErrInvalidDrop):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, economy.ErrUnknownUpgrade):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, economy.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient funds"})
	case errors.Is(err, economy.ErrMaxLevel):
		c.JSON(http.StatusConflict, gin.H{"error": "upgrade already at max level"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session busy"})
	default:
		log.Printf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func lookup(c *gin.Context, mgr *session.Manager) (*session.Session, bool) {
	sess, err := mgr.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return sess, true
}

// CreateSession starts a session and returns its bearer token.
func CreateSession(mgr *session.Manager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := mgr.Create()

		token, expiresAt, err := auth.IssueToken(sess.ID, cfg.JWTSecret, time.Duration(cfg.SessionTokenTTLMinutes)*time.Minute)
		if err != nil {
			log.Printf("[API] CreateSession - failed to issue token for %s: %v", sess.ID, err)
			_ = mgr.Close(sess.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
			return
		}

		st := mgr.Settings()
		c.JSON(http.StatusCreated, gin.H{
			"session_id": sess.ID,
			"token":      token,
			"expires_at": expiresAt.Format(time.RFC3339),
			"balance":    st.StartingBalance.StringFixed(2),
			"ball_cost":  st.BallCost.StringFixed(2),
		})
	}
}

// SnapshotCache serves the last cached snapshot of sessions owned by other
// instances.
type SnapshotCache interface {
	CachedSnapshot(ctx context.Context, sessionID string) ([]byte, error)
}

// GetSession returns the live snapshot, falling back to the cached copy when
// the session is not on this instance.
func GetSession(mgr *session.Manager, cache SnapshotCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := commandContext(c)
		defer cancel()

		id := c.Param("id")
		sess, err := mgr.Get(id)
		if errors.Is(err, session.ErrSessionNotFound) && cache != nil {
			raw, cerr := cache.CachedSnapshot(ctx, id)
			if cerr == nil {
				c.Header("X-Snapshot-Source", "cache")
				c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
				return
			}
			if !errors.Is(cerr, redis.ErrCacheMiss) {
				log.Printf("[API] Snapshot cache lookup failed for %s: %v", id, cerr)
			}
		}
		if err != nil {
			respondError(c, err)
			return
		}

		snap, err := sess.Snapshot(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// DropBall drops at the board centre, or at x when the body carries one.
func DropBall(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lookup(c, mgr)
		if !ok {
			return
		}

		var req struct {
			X *float64 `json:"x"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid drop request"})
				return
			}
		}

		ctx, cancel := commandContext(c)
		defer cancel()

		receipt, err := sess.Drop(ctx, req.X)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, receipt)
	}
}

func BuyUpgrade(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lookup(c, mgr)
		if !ok {
			return
		}
		kind, err := economy.ParseKind(c.Param("kind"))
		if err != nil {
			respondError(c, err)
			return
		}

		ctx, cancel := commandContext(c)
		defer cancel()

		p, err := sess.BuyUpgrade(ctx, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"kind":    p.Kind,
			"level":   p.Level,
			"cost":    p.Cost.StringFixed(2),
			"balance": p.Balance.StringFixed(2),
		})
	}
}

func PauseSession(mgr *session.Manager) gin.HandlerFunc {
	return setPaused(mgr, true)
}

func ResumeSession(mgr *session.Manager) gin.HandlerFunc {
	return setPaused(mgr, false)
}

func setPaused(mgr *session.Manager, paused bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lookup(c, mgr)
		if !ok {
			return
		}
		ctx, cancel := commandContext(c)
		defer cancel()

		var err error
		if paused {
			err = sess.Pause(ctx)
		} else {
			err = sess.Resume(ctx)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "paused": paused})
	}
}

func EndSession(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := mgr.Close(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RecentDrops reads the audit trail of a session. 503 without a database.
func RecentDrops(store *database.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "drop history not available"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		drops, err := store.RecentDrops(c.Request.Context(), c.Param("id"), limit)
		if err != nil {
			log.Printf("[DB] RecentDrops for %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load drops"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"drops": drops})
	}
}

// Leaderboard lists the top sessions by lifetime earnings. 503 without Redis.
func Leaderboard(pub *redis.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pub == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard not available"})
			return
		}
		n, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
		if err != nil || n <= 0 || n > 100 {
			n = 10
		}
		top, err := pub.TopEarners(c.Request.Context(), n)
		if err != nil {
			log.Printf("[REDIS] TopEarners: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaders": top})
	}
}
