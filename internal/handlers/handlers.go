package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/01moynul/tenantdesk-golang/internal/auth"
	"github.com/01moynul/tenantdesk-golang/internal/email"
	"github.com/01moynul/tenantdesk-golang/internal/ingest"
	"github.com/01moynul/tenantdesk-golang/internal/reports"
	"github.com/01moynul/tenantdesk-golang/internal/store"
	"github.com/01moynul/tenantdesk-golang/internal/tenant"
	"github.com/01moynul/tenantdesk-golang/internal/timestamp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store   *store.Store
	Ingest  *ingest.Pipeline
	Reports *reports.Reports
	Tokens  *auth.TokenIssuer
	OTP     *auth.OTPService
	Mailer  email.Mailer
	Log     *zap.Logger

	OTPTTL        time.Duration
	CookieSecure  bool
	WebhookSecret string // empty disables signature checks
	IngestMode    ingest.Mode
	MaxImportSize int64 // bytes per import request; zero means 32 MiB

	Now func() time.Time // nil means time.Now
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handlers) maxImportSize() int64 {
	if h.MaxImportSize > 0 {
		return h.MaxImportSize
	}
	return maxImportFileSize
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrMissingRequiredField),
		errors.Is(err, store.ErrInvalidField),
		errors.Is(err, timestamp.ErrInvalidTimestamp):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrConstraintViolation):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, ingest.ErrUnknownEntity):
		return http.StatusNotFound
	case errors.Is(err, tenant.ErrNoPrincipal),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidOTP):
		return http.StatusUnauthorized
	case errors.Is(err, ingest.ErrShopMismatch):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Internal errors are logged, not echoed.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		h.Log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
