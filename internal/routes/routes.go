package routes

import (
	"net/http"
	"time"

	"github.com/01moynul/tenantdesk-golang/internal/handlers"
	"github.com/01moynul/tenantdesk-golang/internal/metrics"
	"github.com/01moynul/tenantdesk-golang/internal/middleware"
	"github.com/01moynul/tenantdesk-golang/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the dashboard origins to call the API with the auth cookie.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func SetupRouter(h *handlers.Handlers, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(h.Log))

	// --- APPLY THE CORS GUARD ---
	router.Use(CORSMiddleware(allowedOrigins))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello from tenantdesk"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/auth/send-email", h.SendLoginCode)
		v1.POST("/auth/login", h.Login)
		v1.POST("/auth/logout", h.Logout)

		// --- Storefront Webhooks (signed, not logged in) ---
		v1.POST("/shopify/customers", h.ShopifyCustomerCreated)

		// --- Tenant Dashboard (Login Required) ---
		user := v1.Group("/user")
		user.Use(middleware.AuthMiddleware(h.Tokens, h.Store))
		{
			user.GET("/me", h.Me)
			user.GET("/customers", h.GetCustomers)
			user.GET("/customers.xlsx", h.ExportCustomers)
			user.GET("/products", h.GetProducts)
			user.GET("/shop", h.GetShopDetails)
			user.GET("/orders", h.GetOrders)
			user.GET("/weeks-data", h.GetWeeksData)
			user.GET("/total-revenue", h.GetTotalRevenue)
			user.GET("/totals", h.GetTotals)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.Tokens, h.Store))
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/import/:entity", h.ImportRecords)
			admin.POST("/import/:entity/file", h.UploadImportFile)
		}
	}

	return router
}
