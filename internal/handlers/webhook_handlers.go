package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/01moynul/tenantdesk-golang/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	shopDomainHeader = "X-Shopify-Shop-Domain"
	shopHmacHeader   = "X-Shopify-Hmac-Sha256"
	maxWebhookBody   = 1 << 20
)

// ShopifyCustomer is the subset of the storefront's customer payload we store.
type ShopifyCustomer struct {
	ID        int64   `json:"id"`
	CreatedAt string  `json:"created_at"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Tags      *string `json:"tags"`
}

// ShopifyCustomerCreated stores a customer pushed by the storefront. The tenant comes from
// the shop domain header, never from the payload.
// POST /v1/shopify/customers
func (h *Handlers) ShopifyCustomerCreated(c *gin.Context) {
	// 1. --- Read the raw body (the signature covers exact bytes) ---
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	// 2. --- Verify the signature ---
	if h.WebhookSecret != "" && !validSignature(h.WebhookSecret, body, c.GetHeader(shopHmacHeader)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
		return
	}

	// 3. --- Resolve the tenant ---
	domain := c.GetHeader(shopDomainHeader)
	if domain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": shopDomainHeader + " header required"})
		return
	}
	shop, err := h.Store.ShopByDomain(c.Request.Context(), domain)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 4. --- Store the customer ---
	var payload ShopifyCustomer
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}
	customer, err := h.Store.InsertCustomer(c.Request.Context(), store.CustomerParams{
		ID:        payload.ID,
		ShopID:    shop.ID,
		Timestamp: payload.CreatedAt,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Tags:      payload.Tags,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Log.Info("New customer from webhook",
		zap.Int64("shop_id", shop.ID),
		zap.Int64("customer_id", customer.ID),
	)
	c.JSON(http.StatusCreated, customer)
}

func validSignature(secret string, body []byte, signature string) bool {
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
