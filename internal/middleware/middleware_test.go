package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/01moynul/tenantdesk-golang/internal/auth"
	"github.com/01moynul/tenantdesk-golang/internal/models"
	"github.com/01moynul/tenantdesk-golang/internal/store"
	"github.com/01moynul/tenantdesk-golang/internal/tenant"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeUsers map[int64]models.TenantUser

func (f fakeUsers) TenantUser(_ context.Context, id int64) (*models.TenantUser, error) {
	u, ok := f[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func newRouter(tokens *auth.TokenIssuer, users UserLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/", AuthMiddleware(tokens, users))
	protected.GET("/me", func(c *gin.Context) {
		p, err := tenant.FromContext(c.Request.Context())
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"shop_id": p.ShopID, "role": p.Role})
	})
	protected.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	users := fakeUsers{
		201: {ID: 201, ShopID: 101, Email: "another@mail.com", Role: models.RoleAdmin},
		202: {ID: 202, ShopID: 202, Email: "staff@mail.com", Role: models.RoleStaff},
	}
	r := newRouter(tokens, users)

	issue := func(p tenant.Principal) string {
		token, _, err := tokens.Issue(p)
		require.NoError(t, err)
		return token
	}
	admin := issue(tenant.Principal{UserID: 201, ShopID: 101, Role: models.RoleAdmin})
	staff := issue(tenant.Principal{UserID: 202, ShopID: 202, Role: models.RoleStaff})
	moved := issue(tenant.Principal{UserID: 202, ShopID: 101, Role: models.RoleStaff})
	ghost := issue(tenant.Principal{UserID: 999, ShopID: 101})

	tests := []struct {
		name   string
		path   string
		setup  func(*http.Request)
		status int
	}{
		{"no token", "/me", func(*http.Request) {}, http.StatusUnauthorized},
		{"cookie", "/me", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: admin}) }, http.StatusOK},
		{"bearer", "/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+admin) }, http.StatusOK},
		{"malformed header", "/me", func(r *http.Request) { r.Header.Set("Authorization", admin) }, http.StatusUnauthorized},
		{"bad token", "/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"unknown user", "/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+ghost) }, http.StatusUnauthorized},
		{"shop mismatch", "/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+moved) }, http.StatusUnauthorized},
		{"admin route as admin", "/admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+admin) }, http.StatusNoContent},
		{"admin route as staff", "/admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+staff) }, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRequireRole_WithoutPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/v1/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))

	require.Equal(t, 2, logs.Len())
	fields := logs.All()[1].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}
