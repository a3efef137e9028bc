package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/plinko/internal/config"
	"github.com/stretchr/testify/assert"
)

func wsRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", WebSocketCORSCheck(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func upgradeRequest(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestWebSocketOriginCheck(t *testing.T) {
	prod := &config.Config{Environment: "production", FrontendURL: "https://play.example.com"}
	dev := &config.Config{Environment: "development"}

	cases := []struct {
		name   string
		cfg    *config.Config
		origin string
		want   int
	}{
		{"dev localhost", dev, "http://localhost:3000", http.StatusOK},
		{"dev foreign", dev, "https://evil.example.com", http.StatusForbidden},
		{"prod frontend", prod, "https://play.example.com", http.StatusOK},
		{"prod default", prod, "https://plinko.playmatatu.com", http.StatusOK},
		{"prod localhost", prod, "http://localhost:5173", http.StatusForbidden},
		{"no origin", prod, "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			wsRouter(tc.cfg).ServeHTTP(w, upgradeRequest(tc.origin))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestPlainRequestSkipsOriginCheck(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	wsRouter(&config.Config{Environment: "production"}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
