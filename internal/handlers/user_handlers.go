package handlers

import (
	"errors"
	"net/http"

	"github.com/01moynul/tenantdesk-golang/internal/auth"
	"github.com/01moynul/tenantdesk-golang/internal/email"
	"github.com/01moynul/tenantdesk-golang/internal/middleware"
	"github.com/01moynul/tenantdesk-golang/internal/models"
	"github.com/01moynul/tenantdesk-golang/internal/tenant"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// --- Login Code ---

type SendEmailInput struct {
	Email string `json:"email" binding:"required,email"`
}

// SendLoginCode issues a one-time code and mails it. The response does not reveal whether
// the address belongs to a tenant user.
// POST /v1/auth/send-email
func (h *Handlers) SendLoginCode(c *gin.Context) {
	var input SendEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.OTP.Issue(c.Request.Context(), input.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := email.SendOTPEmail(c.Request.Context(), h.Mailer, input.Email, code, h.OTPTTL); err != nil {
		h.Log.Error("Failed to send login code", zap.String("email", input.Email), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the address is registered, a login code is on its way."})
}

// --- Login ---

type LoginInput struct {
	Email  string `json:"email" binding:"required,email"`
	OTP    string `json:"otp" binding:"required"`
	ShopID int64  `json:"shop_id"`
}

// Login exchanges a valid login code for an access token.
// POST /v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	// 2. --- Resolve the principal ---
	// The same email can be a user of several shops; the caller must then pick one.
	users, err := h.Store.TenantUsersByEmail(ctx, input.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	user, shops := pickUser(users, input.ShopID)

	// 3. --- Verify the code ---
	// Shop ids are only listed for a valid code, which then stays pending for the retry.
	if user == nil && len(shops) > 1 && input.ShopID == 0 {
		if err := h.OTP.Check(ctx, input.Email, input.OTP); err != nil {
			h.otpError(c, err)
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": "Email belongs to several shops; shop_id is required", "shop_ids": shops})
		return
	}
	if err := h.OTP.Verify(ctx, input.Email, input.OTP); err != nil {
		h.otpError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// 4. --- Issue the token ---
	p := tenant.Principal{UserID: user.ID, ShopID: user.ShopID, Email: user.Email, Role: user.Role}
	token, expires, err := h.Tokens.Issue(p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.CookieSecure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(middleware.AccessTokenCookie, token, int(h.Tokens.TTL().Seconds()), "/", "", h.CookieSecure, true)

	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"access_token": token,
		"token_type":   "bearer",
		"expires_at":   expires.UTC(),
		"user":         user,
	})
}

func (h *Handlers) otpError(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrInvalidOTP) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid OTP"})
		return
	}
	h.respondError(c, err)
}

// pickUser returns the user matching shopID, or the only user when shopID is zero.
// shops lists every shop the email belongs to.
func pickUser(users []models.TenantUser, shopID int64) (*models.TenantUser, []int64) {
	shops := make([]int64, 0, len(users))
	var picked *models.TenantUser
	for i := range users {
		shops = append(shops, users[i].ShopID)
		if shopID != 0 && users[i].ShopID == shopID {
			picked = &users[i]
		}
	}
	if shopID == 0 && len(users) == 1 {
		picked = &users[0]
	}
	return picked, shops
}

// --- Logout ---

// Logout clears the access token cookie.
// POST /v1/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful. We hope to see you again soon!"})
}

// Me returns the principal the request acts for.
// GET /v1/user/me
func (h *Handlers) Me(c *gin.Context) {
	p, err := tenant.FromContext(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "shop_id": p.ShopID, "email": p.Email, "role": p.Role})
}
