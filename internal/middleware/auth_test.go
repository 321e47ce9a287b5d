package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware_test_secret_32_chars!!"

func init() { gin.SetMode(gin.TestMode) }

func signed(t *testing.T, typ, role string, ttl time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "6f1c1b8e-1d44-4a4e-9b63-1f0f4b6f0a11",
		"username": "cajero",
		"role":     role,
		"typ":      typ,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func serve(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func claimsEcho(c *gin.Context) {
	claims := GetClaims(c)
	c.String(http.StatusOK, claims.Role)
}

func TestJWTAuth(t *testing.T) {
	r := gin.New()
	r.GET("/p", JWTAuth(secret), claimsEcho)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, "access", "USER", -time.Minute), http.StatusUnauthorized},
		{"refresh token", "Bearer " + signed(t, "refresh", "USER", time.Hour), http.StatusUnauthorized},
		{"valid", "Bearer " + signed(t, "access", "USER", time.Hour), http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(r, "/p", tc.header)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	r := gin.New()
	r.GET("/p", JWTAuth("another_secret_entirely_32_chars!"), claimsEcho)
	w := serve(r, "/p", "Bearer "+signed(t, "access", "USER", time.Hour))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTOrAPIToken(t *testing.T) {
	r := gin.New()
	r.GET("/scan", JWTOrAPIToken(secret, "device-token"), claimsEcho)

	w := serve(r, "/scan", "Bearer device-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, RoleService, w.Body.String())

	w = serve(r, "/scan", "Bearer "+signed(t, "access", "ADMIN", time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ADMIN", w.Body.String())

	w = serve(r, "/scan", "Bearer wrong-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTOrAPIToken_EmptyTokenDisabled(t *testing.T) {
	r := gin.New()
	r.GET("/scan", JWTOrAPIToken(secret, ""), claimsEcho)
	w := serve(r, "/scan", "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", JWTAuth(secret), RequireRole("ADMIN"), claimsEcho)

	w := serve(r, "/admin", "Bearer "+signed(t, "access", "USER", time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, "/admin", "Bearer "+signed(t, "access", "ADMIN", time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_NoClaims(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireRole("ADMIN"), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := serve(r, "/admin", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTokenFromQuery(t *testing.T) {
	r := gin.New()
	r.GET("/ws", TokenFromQuery(), JWTAuth(secret), claimsEcho)

	w := serve(r, "/ws?token="+signed(t, "access", "USER", time.Hour), "")
	assert.Equal(t, http.StatusOK, w.Code)

	// An explicit header wins over the query string.
	w = serve(r, "/ws?token="+signed(t, "access", "USER", time.Hour), "Bearer broken")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type countingWindow struct {
	hits map[string]int64
	err  error
}

func (c *countingWindow) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.hits[key]++
	return c.hits[key], nil
}

func TestRateLimiter(t *testing.T) {
	counter := &countingWindow{hits: map[string]int64{}}
	r := gin.New()
	r.GET("/x", RateLimiter(counter, "test", 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "/x", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/x", "").Code)
	w := serve(r, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	counter := &countingWindow{err: assert.AnError}
	r := gin.New()
	r.GET("/x", RateLimiter(counter, "test", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, "/x", "").Code)
	}
}
