// Package reports answers the dashboard queries. Every query is scoped to the shop of the
// principal found in the context.
package reports

import (
	"context"
	"time"

	"github.com/01moynul/tenantdesk-golang/internal/models"
	"github.com/01moynul/tenantdesk-golang/internal/store"
	"github.com/01moynul/tenantdesk-golang/internal/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Reports struct {
	db    *gorm.DB
	shops *store.Store
}

func New(db *gorm.DB) *Reports {
	return &Reports{db: db, shops: store.New(db, nil)}
}

// scope returns a session bound to ctx plus the caller's shop id.
func (r *Reports) scope(ctx context.Context) (*gorm.DB, int64, error) {
	p, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	return r.db.WithContext(ctx), p.ShopID, nil
}

// --- Customers ---

type CustomerRevenue struct {
	ID               int64           `json:"id"`
	FirstName        string          `json:"first_name"`
	LastName         *string         `json:"last_name"`
	Email            *string         `json:"email"`
	Phone            *string         `json:"phone"`
	Tags             *string         `json:"tags"`
	RevenueGenerated decimal.Decimal `json:"revenue_generated"`
}

// Customers lists the shop's customers with the sum of their order totals. Customers without
// orders are included with zero revenue.
func (r *Reports) Customers(ctx context.Context) ([]CustomerRevenue, error) {
	db, shopID, err := r.scope(ctx)
	if err != nil {
		return nil, err
	}

	var rows []CustomerRevenue
	err = db.Table("customer AS c").
		Select("c.id, c.first_name, c.last_name, c.email, c.phone, c.tags, COALESCE(SUM(o.total_price), 0) AS revenue_generated").
		Joins("LEFT JOIN ? AS o ON o.customer_id = c.id AND o.shop_id = c.shop_id", clause.Table{Name: "order"}).
		Where("c.shop_id = ?", shopID).
		Group("c.id, c.shop_id, c.first_name, c.last_name, c.email, c.phone, c.tags").
		Order("c.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].RevenueGenerated = rows[i].RevenueGenerated.Round(2)
	}
	return rows, nil
}

// --- Catalogue & shop ---

// Variants lists the sellable variants of the shop's products.
func (r *Reports) Variants(ctx context.Context) ([]models.Variant, error) {
	db, shopID, err := r.scope(ctx)
	if err != nil {
		return nil, err
	}
	var variants []models.Variant
	err = db.Where("shop_id = ?", shopID).Order("product_id, id").Find(&variants).Error
	return variants, err
}

func (r *Reports) Shop(ctx context.Context) (*models.Shop, error) {
	p, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.shops.ShopByID(ctx, p.ShopID)
}

// --- Orders ---

func (r *Reports) Orders(ctx context.Context) ([]models.Order, error) {
	db, shopID, err := r.scope(ctx)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	err = db.Where("shop_id = ?", shopID).Order("timestamp, id").Find(&orders).Error
	return orders, err
}

// OrdersBetween returns orders placed in [from, to).
func (r *Reports) OrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	db, shopID, err := r.scope(ctx)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	err = db.Where("shop_id = ? AND timestamp >= ? AND timestamp < ?", shopID, from.UTC(), to.UTC()).
		Order("timestamp, id").
		Find(&orders).Error
	return orders, err
}

type RevenuePoint struct {
	Timestamp  time.Time       `json:"timestamp"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Revenue returns every order total of the shop in time order.
func (r *Reports) Revenue(ctx context.Context) ([]RevenuePoint, error) {
	db, shopID, err := r.scope(ctx)
	if err != nil {
		return nil, err
	}
	var points []RevenuePoint
	err = db.Model(&models.Order{}).
		Select("timestamp, total_price").
		Where("shop_id = ?", shopID).
		Order("timestamp, id").
		Scan(&points).Error
	return points, err
}

// --- Totals ---

type Totals struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalCustomers int64           `json:"total_customers"`
	TotalProducts  int64           `json:"total_products"`
}

// Totals sums every order of the shop, confirmed or not, rounded to cents.
func (r *Reports) Totals(ctx context.Context) (*Totals, error) {
	db, shopID, err := r.scope(ctx)
	if err != nil {
		return nil, err
	}

	var t Totals
	if err := db.Model(&models.Customer{}).Where("shop_id = ?", shopID).Count(&t.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Product{}).Where("shop_id = ?", shopID).Count(&t.TotalProducts).Error; err != nil {
		return nil, err
	}
	row := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("shop_id = ?", shopID).
		Row()
	if err := row.Scan(&t.TotalRevenue); err != nil {
		return nil, err
	}
	t.TotalRevenue = t.TotalRevenue.Round(2)
	return &t, nil
}
