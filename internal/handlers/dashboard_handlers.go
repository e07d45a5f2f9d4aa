package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Tenant Dashboard ---
// Every handler here runs behind AuthMiddleware; the reports read the shop from the
// request context.
//

// GetCustomers returns customers with the revenue they generated.
// GET /v1/user/customers
func (h *Handlers) GetCustomers(c *gin.Context) {
	customers, err := h.Reports.Customers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// GetProducts returns the shop's variants.
// GET /v1/user/products
func (h *Handlers) GetProducts(c *gin.Context) {
	variants, err := h.Reports.Variants(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, variants)
}

// GET /v1/user/shop
func (h *Handlers) GetShopDetails(c *gin.Context) {
	shop, err := h.Reports.Shop(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

// GET /v1/user/orders
func (h *Handlers) GetOrders(c *gin.Context) {
	orders, err := h.Reports.Orders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetWeeksData returns the orders of the last seven days.
// GET /v1/user/weeks-data
func (h *Handlers) GetWeeksData(c *gin.Context) {
	now := h.now()
	orders, err := h.Reports.OrdersBetween(c.Request.Context(), now.AddDate(0, 0, -7), now)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /v1/user/total-revenue
func (h *Handlers) GetTotalRevenue(c *gin.Context) {
	points, err := h.Reports.Revenue(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// GET /v1/user/totals
func (h *Handlers) GetTotals(c *gin.Context) {
	totals, err := h.Reports.Totals(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// ExportCustomers streams the customer report as an xlsx download.
// GET /v1/user/customers.xlsx
func (h *Handlers) ExportCustomers(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.Reports.CustomersWorkbook(c.Request.Context(), &buf); err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="customers.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
