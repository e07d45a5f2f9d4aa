package store

import (
	"context"
	"fmt"

	"github.com/01moynul/tenantdesk-golang/internal/models"
	"github.com/01moynul/tenantdesk-golang/internal/timestamp"
	"github.com/shopspring/decimal"
)

// --- Shop & TenantUser ---

type ShopParams struct {
	ID     int64  `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required,max=255"`
	Domain string `json:"domain" validate:"required,max=255"`
	Owner  string `json:"owner" validate:"required,max=255"`
	Email  string `json:"email" validate:"required,max=255"`
}

func (s *Store) InsertShop(ctx context.Context, p ShopParams) (*models.Shop, error) {
	if err := Validate("shop", p); err != nil {
		return nil, err
	}
	row := &models.Shop{ID: p.ID, Name: p.Name, Domain: p.Domain, Owner: p.Owner, Email: p.Email}
	return insertRow(ctx, s, "shop", row, map[string]any{"id": p.ID})
}

// TenantUserParams.PassHash must already be hashed; raw secrets never reach the table.
type TenantUserParams struct {
	ID        int64   `json:"id" validate:"required"`
	ShopID    int64   `json:"shop_id" validate:"required"`
	Email     string  `json:"email" validate:"required,max=255"`
	PassHash  string  `json:"pass_hash" validate:"required,max=255"`
	Role      string  `json:"role" validate:"required,max=50"`
	CreatedAt string  `json:"created_at" validate:"required"`
	PicURL    *string `json:"pic_url" validate:"omitempty,max=500"`
}

func (s *Store) InsertTenantUser(ctx context.Context, p TenantUserParams) (*models.TenantUser, error) {
	if err := Validate("tenant_users", p); err != nil {
		return nil, err
	}
	createdAt, err := timestamp.ToUTC(p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("tenant_users.created_at: %w", err)
	}
	row := &models.TenantUser{
		ID: p.ID, ShopID: p.ShopID, Email: p.Email, PassHash: p.PassHash,
		Role: p.Role, PicURL: p.PicURL, CreatedAt: createdAt,
	}
	return insertRow(ctx, s, "tenant_users", row, map[string]any{"id": p.ID})
}

// --- Customer & Address ---

type CustomerParams struct {
	ID        int64   `json:"id" validate:"required"`
	ShopID    int64   `json:"shop_id" validate:"required"`
	Timestamp string  `json:"timestamp" validate:"required"`
	FirstName string  `json:"first_name" validate:"required,max=255"`
	LastName  *string `json:"last_name" validate:"omitempty,max=255"`
	Email     *string `json:"email" validate:"omitempty,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Tags      *string `json:"tags"`
}

func (s *Store) InsertCustomer(ctx context.Context, p CustomerParams) (*models.Customer, error) {
	if err := Validate("customer", p); err != nil {
		return nil, err
	}
	ts, err := timestamp.ToUTC(p.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("customer.timestamp: %w", err)
	}
	row := &models.Customer{
		ID: p.ID, ShopID: p.ShopID, Timestamp: ts, FirstName: p.FirstName,
		LastName: p.LastName, Email: p.Email, Phone: p.Phone, Tags: p.Tags,
	}
	return insertRow(ctx, s, "customer", row, map[string]any{"id": p.ID, "shop_id": p.ShopID})
}

// AddressParams.Default is false unless set; several defaults per customer are accepted.
type AddressParams struct {
	ID         int64   `json:"id" validate:"required"`
	CustomerID int64   `json:"customer_id" validate:"required"`
	ShopID     int64   `json:"shop_id" validate:"required"`
	Address1   string  `json:"address1" validate:"required,max=255"`
	City       string  `json:"city" validate:"required,max=100"`
	Country    string  `json:"country" validate:"required,max=100"`
	ZipCode    string  `json:"zip_code" validate:"required,max=20"`
	Company    *string `json:"company" validate:"omitempty,max=255"`
	Address2   *string `json:"address2" validate:"omitempty,max=255"`
	State      *string `json:"state" validate:"omitempty,max=100"`
	Default    bool    `json:"default"`
}

func (s *Store) InsertAddress(ctx context.Context, p AddressParams) (*models.Address, error) {
	if err := Validate("address", p); err != nil {
		return nil, err
	}
	row := &models.Address{
		ID: p.ID, CustomerID: p.CustomerID, ShopID: p.ShopID, Company: p.Company,
		Address1: p.Address1, Address2: p.Address2, City: p.City, State: p.State,
		Country: p.Country, ZipCode: p.ZipCode, Default: p.Default,
	}
	return insertRow(ctx, s, "address", row, map[string]any{"id": p.ID, "shop_id": p.ShopID})
}

// --- Product & Variant ---

type ProductParams struct {
	ID          int64   `json:"id" validate:"required"`
	ShopID      int64   `json:"shop_id" validate:"required"`
	Title       string  `json:"title" validate:"required,max=255"`
	Vendor      string  `json:"vendor" validate:"required,max=255"`
	Slug        string  `json:"slug" validate:"required,max=255"`
	Timestamp   string  `json:"timestamp" validate:"required"`
	Status      string  `json:"status" validate:"required,max=50"`
	ProductType *string `json:"product_type" validate:"omitempty,max=100"`
	Tags        *string `json:"tags"`
}

func (s *Store) InsertProduct(ctx context.Context, p ProductParams) (*models.Product, error) {
	if err := Validate("product", p); err != nil {
		return nil, err
	}
	ts, err := timestamp.ToUTC(p.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("product.timestamp: %w", err)
	}
	row := &models.Product{
		ID: p.ID, ShopID: p.ShopID, Title: p.Title, Vendor: p.Vendor,
		ProductType: p.ProductType, Slug: p.Slug, Timestamp: ts, Tags: p.Tags, Status: p.Status,
	}
	return insertRow(ctx, s, "product", row, map[string]any{"id": p.ID, "shop_id": p.ShopID})
}

type VariantParams struct {
	ID         int64           `json:"id" validate:"required"`
	ProductID  int64           `json:"product_id" validate:"required"`
	ShopID     int64           `json:"shop_id" validate:"required"`
	Title      string          `json:"title" validate:"required,max=255"`
	Price      decimal.Decimal `json:"price"`
	InvItemID  int64           `json:"inv_item_id" validate:"required"`
	InvItemQty int             `json:"inv_item_qty" validate:"gte=0"`
	Weight     *int            `json:"weight" validate:"omitempty,gte=0"`
	ImageURL   *string         `json:"image_url" validate:"omitempty,max=500"`
}

func (s *Store) InsertVariant(ctx context.Context, p VariantParams) (*models.Variant, error) {
	if err := Validate("variant", p); err != nil {
		return nil, err
	}
	if p.Price.IsNegative() {
		return nil, &FieldError{Entity: "variant", Field: "price", Rule: "gte=0"}
	}
	row := &models.Variant{
		ID: p.ID, ProductID: p.ProductID, ShopID: p.ShopID, Title: p.Title,
		Price: p.Price.Round(2), InvItemID: p.InvItemID, InvItemQty: p.InvItemQty,
		Weight: p.Weight, ImageURL: p.ImageURL,
	}
	return insertRow(ctx, s, "variant", row, map[string]any{"id": p.ID, "shop_id": p.ShopID})
}

// --- Order & LineItem ---

type OrderParams struct {
	ID              int64           `json:"id" validate:"required"`
	ShopID          int64           `json:"shop_id" validate:"required"`
	OrderNumber     int             `json:"order_number" validate:"required"`
	Confirmed       bool            `json:"confirmed"`
	Timestamp       string          `json:"timestamp" validate:"required"`
	Currency        string          `json:"currency" validate:"required,len=3"`
	SubtotalPrice   decimal.Decimal `json:"subtotal_price"`
	TotalDiscount   decimal.Decimal `json:"total_discount"`
	TotalTax        decimal.Decimal `json:"total_tax"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	FinancialStat   string          `json:"financial_stat" validate:"required,max=50"`
	CustomerID      *int64          `json:"customer_id"`
	FulfillmentStat *string         `json:"fulfillment_stat" validate:"omitempty,max=50"`
}

func (s *Store) InsertOrder(ctx context.Context, p OrderParams) (*models.Order, error) {
	if err := Validate("order", p); err != nil {
		return nil, err
	}
	ts, err := timestamp.ToUTC(p.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("order.timestamp: %w", err)
	}
	row := &models.Order{
		ID: p.ID, CustomerID: p.CustomerID, ShopID: p.ShopID, OrderNumber: p.OrderNumber,
		Confirmed: p.Confirmed, Timestamp: ts, Currency: p.Currency,
		SubtotalPrice: p.SubtotalPrice.Round(2), TotalDiscount: p.TotalDiscount.Round(2),
		TotalTax: p.TotalTax.Round(2), TotalPrice: p.TotalPrice.Round(2),
		FinancialStat: p.FinancialStat, FulfillmentStat: p.FulfillmentStat,
	}
	return insertRow(ctx, s, "order", row, map[string]any{"id": p.ID, "shop_id": p.ShopID})
}

type LineItemParams struct {
	ID            int64           `json:"id" validate:"required"`
	OrderID       int64           `json:"order_id" validate:"required"`
	ProductID     int64           `json:"product_id" validate:"required"`
	ShopID        int64           `json:"shop_id" validate:"required"`
	VariantID     int64           `json:"variant_id" validate:"required"`
	Quantity      int             `json:"quantity" validate:"required,gt=0"`
	Price         decimal.Decimal `json:"price"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
}

func (s *Store) InsertLineItem(ctx context.Context, p LineItemParams) (*models.LineItem, error) {
	if err := Validate("line_item", p); err != nil {
		return nil, err
	}
	row := &models.LineItem{
		ID: p.ID, OrderID: p.OrderID, ProductID: p.ProductID, ShopID: p.ShopID,
		VariantID: p.VariantID, Quantity: p.Quantity,
		Price: p.Price.Round(2), TotalDiscount: p.TotalDiscount.Round(2),
	}
	return insertRow(ctx, s, "line_item", row, map[string]any{"id": p.ID, "shop_id": p.ShopID})
}
