package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/01moynul/tenantdesk-golang/internal/auth"
	"github.com/01moynul/tenantdesk-golang/internal/models"
	"github.com/01moynul/tenantdesk-golang/internal/store"
	"github.com/01moynul/tenantdesk-golang/internal/tenant"
	"github.com/gin-gonic/gin"
)

// AccessTokenCookie holds the token set at login.
const AccessTokenCookie = "access_token"

// UserLookup loads the tenant user a token was issued to.
type UserLookup interface {
	TenantUser(ctx context.Context, id int64) (*models.TenantUser, error)
}

// AuthMiddleware resolves the request principal from the access token (cookie first, then a
// Bearer header) and stores it in the request context.
func AuthMiddleware(tokens *auth.TokenIssuer, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Find the token ---
		tokenString, err := c.Cookie(AccessTokenCookie)
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
				return
			}
			tokenString = parts[1]
		}

		// 2. --- Validate Token ---
		claims, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 3. --- Confirm the user still belongs to the shop ---
		user, err := users.TenantUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}
		if user.ShopID != claims.ShopID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			return
		}

		// 4. --- Success ---
		p := tenant.Principal{UserID: user.ID, ShopID: user.ShopID, Email: user.Email, Role: user.Role}
		c.Request = c.Request.WithContext(tenant.WithPrincipal(c.Request.Context(), p))
		c.Set("userID", user.ID)
		c.Set("shopID", user.ShopID)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := tenant.FromContext(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !slices.Contains(roles, p.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: " + strings.Join(roles, " or ") + " role required"})
			return
		}
		c.Set("userRole", p.Role)
		c.Next()
	}
}
