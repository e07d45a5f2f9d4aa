package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the model for the 'order' table.
// CustomerID is nil for guest checkouts.
type Order struct {
	ID              int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ShopID          int64           `json:"shop_id" gorm:"primaryKey;autoIncrement:false;uniqueIndex:uq_order_number_shop,priority:2"`
	CustomerID      *int64          `json:"customer_id,omitempty" gorm:"index:idx_order_customer"`
	OrderNumber     int             `json:"order_number" gorm:"not null;uniqueIndex:uq_order_number_shop,priority:1"`
	Confirmed       bool            `json:"confirmed" gorm:"not null"`
	Timestamp       time.Time       `json:"timestamp" gorm:"not null;index:idx_order_timestamp"`
	Currency        string          `json:"currency" gorm:"type:char(3);not null"`
	SubtotalPrice   decimal.Decimal `json:"subtotal_price" gorm:"type:decimal(10,2);not null"`
	TotalDiscount   decimal.Decimal `json:"total_discount" gorm:"type:decimal(10,2);not null"`
	TotalTax        decimal.Decimal `json:"total_tax" gorm:"type:decimal(10,2);not null"`
	TotalPrice      decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2);not null"`
	FinancialStat   string          `json:"financial_stat" gorm:"type:varchar(50);not null"`
	FulfillmentStat *string         `json:"fulfillment_stat,omitempty" gorm:"type:varchar(50)"`
}

func (Order) TableName() string { return "order" }

// LineItem is the model for the 'line_item' table.
// Price is the price at the time of sale. VariantID is a soft reference: there is no
// foreign key so line items outlive deleted variants.
type LineItem struct {
	ID            int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ShopID        int64           `json:"shop_id" gorm:"primaryKey;autoIncrement:false;index:idx_line_item_shop"`
	OrderID       int64           `json:"order_id" gorm:"not null;index:idx_line_item_order"`
	ProductID     int64           `json:"product_id" gorm:"not null;index:idx_line_item_product"`
	VariantID     int64           `json:"variant_id" gorm:"not null;index:idx_line_item_variant"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	TotalDiscount decimal.Decimal `json:"total_discount" gorm:"type:decimal(10,2);not null"`
}

func (LineItem) TableName() string { return "line_item" }
