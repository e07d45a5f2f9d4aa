package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product lifecycle labels. They are descriptive only; nothing enforces transitions.
const (
	ProductActive   = "active"
	ProductDraft    = "draft"
	ProductArchived = "archived"
)

// Product is the model for the 'product' table.
type Product struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ShopID      int64     `json:"shop_id" gorm:"primaryKey;autoIncrement:false;uniqueIndex:uq_product_slug_shop,priority:2"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null;index:idx_product_title"`
	Vendor      string    `json:"vendor" gorm:"type:varchar(255);not null;index:idx_product_vendor"`
	ProductType *string   `json:"product_type,omitempty" gorm:"type:varchar(100)"`
	Slug        string    `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex:uq_product_slug_shop,priority:1"`
	Timestamp   time.Time `json:"timestamp" gorm:"not null"`
	Tags        *string   `json:"tags,omitempty" gorm:"type:text"`
	Status      string    `json:"status" gorm:"type:varchar(50);not null"`
}

func (Product) TableName() string { return "product" }

// Variant is the model for the 'variant' table.
type Variant struct {
	ID         int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ShopID     int64           `json:"shop_id" gorm:"primaryKey;autoIncrement:false"`
	ProductID  int64           `json:"product_id" gorm:"not null;index:idx_variant_product"`
	Title      string          `json:"title" gorm:"type:varchar(255);not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	InvItemID  int64           `json:"inv_item_id" gorm:"not null"`
	InvItemQty int             `json:"inv_item_qty" gorm:"not null"`
	Weight     *int            `json:"weight,omitempty"`
	ImageURL   *string         `json:"image_url,omitempty" gorm:"column:image_url;type:varchar(500)"`
}

func (Variant) TableName() string { return "variant" }
