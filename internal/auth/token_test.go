package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestIssueAndParse(t *testing.T) {
	tok, exp, err := IssueToken("abc", secret, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = ParseToken(tok, "other-secret")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseRejectsExpiredAndWrongAlg(t *testing.T) {
	tok, _, err := IssueToken("abc", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(tok, secret)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"session_id": "abc"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(none, secret)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/sessions/:id", RequireSession(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextSessionID))
	})
	return r
}

func TestRequireSession(t *testing.T) {
	r := newRouter()
	tok, _, err := IssueToken("s1", secret, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing", "/sessions/s1", "", http.StatusUnauthorized},
		{"garbage", "/sessions/s1", "Bearer nope", http.StatusUnauthorized},
		{"other session", "/sessions/s2", "Bearer " + tok, http.StatusForbidden},
		{"header", "/sessions/s1", "Bearer " + tok, http.StatusOK},
		{"query", "/sessions/s1?token=" + tok, "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, "s1", w.Body.String())
			}
		})
	}
}
