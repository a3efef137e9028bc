package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/session"
	"github.com/playmatatu/plinko/internal/ws"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	mgr    *session.Manager
}

func newTestServer(t *testing.T, starting int64) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Environment: "test", JWTSecret: "secret", SessionTokenTTLMinutes: 10}
	board, err := game.NewBoard(game.DefaultBoardConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub()
	go hub.Run(ctx)

	mgr := session.NewManager(board, session.Settings{
		StartingBalance: decimal.NewFromInt(starting),
		BallCost:        decimal.NewFromInt(10),
		FrameInterval:   time.Millisecond,
		NewRandom:       func() game.RandomSource { return game.FixedSource(0.5) },
	}, hub, nil, nil)
	t.Cleanup(func() {
		mgr.Shutdown()
		cancel()
	})

	r := gin.New()
	SetupRoutes(r, Deps{Config: cfg, Sessions: mgr, Hub: hub})
	return &testServer{router: r, mgr: mgr}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func (s *testServer) create(t *testing.T) (string, string) {
	t.Helper()
	w, body := s.do(t, http.MethodPost, "/api/v1/sessions", "", "")
	require.Equal(t, http.StatusCreated, w.Code)
	return body["session_id"].(string), body["token"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 1000)
	w, body := s.do(t, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(t, 1000)
	w, body := s.do(t, http.MethodPost, "/api/v1/sessions", "", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1000.00", body["balance"])
	assert.Equal(t, "10.00", body["ball_cost"])
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, 1, s.mgr.Count())
}

func TestSessionRoutesRequireMatchingToken(t *testing.T) {
	s := newTestServer(t, 1000)
	id, token := s.create(t)
	otherID, _ := s.create(t)

	w, _ := s.do(t, http.MethodGet, "/api/v1/sessions/"+id, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/sessions/"+otherID, token, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := s.do(t, http.MethodGet, "/api/v1/sessions/"+id, token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, body["session_id"])
}

func TestDropAndInsufficientFunds(t *testing.T) {
	s := newTestServer(t, 15)
	id, token := s.create(t)

	w, body := s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/drop", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5.00", body["balance"])
	assert.Equal(t, 300.0, body["x"])

	w, _ = s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/drop", token, "")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestDropAtPosition(t *testing.T) {
	s := newTestServer(t, 1000)
	id, token := s.create(t)

	w, body := s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/drop", token, `{"x": 120}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 120.0, body["x"])

	w, _ = s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/drop", token, `{"x": 900}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/drop", token, `{"x": "left"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBuyUpgrade(t *testing.T) {
	s := newTestServer(t, 10000)
	id, token := s.create(t)
	path := "/api/v1/sessions/" + id + "/upgrades/"

	for level, cost := range []string{"1000.00", "2000.00", "4000.00"} {
		w, body := s.do(t, http.MethodPost, path+"bounciness", token, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(level+1), body["level"])
		assert.Equal(t, cost, body["cost"])
	}

	w, _ := s.do(t, http.MethodPost, path+"bounciness", token, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodPost, path+"reward_multiplier", token, "")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w, _ = s.do(t, http.MethodPost, path+"gravity", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardEffectiveMultipliers(t *testing.T) {
	s := newTestServer(t, 10000)
	id, token := s.create(t)

	w, body := s.do(t, http.MethodGet, "/api/v1/board", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	zones := body["zones"].([]interface{})
	require.Len(t, zones, len(game.DefaultMultipliers))
	assert.Equal(t, 40.0, zones[0].(map[string]interface{})["effective_multiplier"])
	assert.Len(t, body["pegs"].([]interface{}), 12*3+66)

	w, _ = s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/upgrades/reward_multiplier", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	_, body = s.do(t, http.MethodGet, "/api/v1/board", token, "")
	zones = body["zones"].([]interface{})
	assert.Equal(t, 1.5, body["reward_multiplier"])
	assert.Equal(t, 60.0, zones[0].(map[string]interface{})["effective_multiplier"])
	assert.Equal(t, 40.0, zones[0].(map[string]interface{})["multiplier"])
}

func TestPauseResumeAndEnd(t *testing.T) {
	s := newTestServer(t, 1000)
	id, token := s.create(t)
	base := "/api/v1/sessions/" + id

	w, body := s.do(t, http.MethodPost, base+"/pause", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["paused"])

	_, body = s.do(t, http.MethodGet, base, token, "")
	assert.Equal(t, true, body["paused"])

	w, _ = s.do(t, http.MethodPost, base+"/resume", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, base, token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = s.do(t, http.MethodGet, base, token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOptionalBackendsUnavailable(t *testing.T) {
	s := newTestServer(t, 1000)
	id, token := s.create(t)

	w, _ := s.do(t, http.MethodGet, "/api/v1/leaderboard", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/drops", token, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, 1000)
	w, _ := s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "plinko_active_sessions")
}
