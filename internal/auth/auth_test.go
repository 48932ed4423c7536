package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"uia-atlas/atlas-portal/pkg/catalog"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewMemoryRepository(), NewTokenIssuer("test-secret", time.Minute), zap.NewNop())
	_, err := svc.EnsureUser(context.Background(), "Admin@Example.org", "s3cret-pass", catalog.RoleAdmin)
	require.NoError(t, err)
	return svc
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, "admin@example.org", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, catalog.RoleAdmin, resp.User.Role)

	u, err := svc.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.org", u.Email)

	_, err = svc.Login(ctx, "admin@example.org", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.org", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureUserResetsPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.EnsureUser(ctx, "admin@example.org", "another-pass", catalog.RoleManager)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "admin@example.org", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	resp, err := svc.Login(ctx, "admin@example.org", "another-pass")
	require.NoError(t, err)
	assert.Equal(t, first.ID, resp.User.ID)
	assert.Equal(t, catalog.RoleManager, resp.User.Role)

	_, err = svc.EnsureUser(ctx, "x@example.org", "pw", "superuser")
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	u := &User{Email: "a@example.org", Role: catalog.RoleReviewer}
	token, err := issuer.Issue(u)
	require.NoError(t, err)

	_, claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, catalog.RoleReviewer, claims.Role)

	now = now.Add(2 * time.Minute)
	_, _, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenIssuer("other-secret", time.Minute)
	_, _, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)
	router := gin.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(router.Group("/api"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	body := strings.NewReader(`{"email":"admin@example.org","password":"nope"}`)
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	body = strings.NewReader(`{"email":"admin@example.org","password":"s3cret-pass"}`)
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", body))
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, "bearer", login.TokenType)
	assert.NotContains(t, w.Body.String(), "password")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"admin@example.org"`)
}
