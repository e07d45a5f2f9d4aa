package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/01moynul/tenantdesk-golang/internal/models"
	"github.com/01moynul/tenantdesk-golang/internal/store"
	"github.com/01moynul/tenantdesk-golang/internal/timestamp"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// Record is one input object, keyed by column name.
type Record map[string]any

// ErrShopMismatch is returned for a record whose shop_id differs from Options.ShopID.
var ErrShopMismatch = errors.New("record belongs to another shop")

// --- Record shapes ---
// Pointer fields tell an absent attribute from a zero value.

type productRecord struct {
	ID          *int64  `json:"id" validate:"required"`
	ShopID      *int64  `json:"shop_id" validate:"required"`
	Title       *string `json:"title" validate:"required,max=255"`
	Vendor      *string `json:"vendor" validate:"required,max=255"`
	Slug        *string `json:"slug" validate:"required,max=255"`
	Timestamp   any     `json:"timestamp" validate:"required"`
	Status      *string `json:"status" validate:"required,max=50"`
	ProductType *string `json:"product_type" validate:"omitempty,max=100"`
	Tags        *string `json:"tags"`
}

type variantRecord struct {
	ID         *int64           `json:"id" validate:"required"`
	ProductID  *int64           `json:"product_id" validate:"required"`
	ShopID     *int64           `json:"shop_id" validate:"required"`
	Title      *string          `json:"title" validate:"required,max=255"`
	Price      *decimal.Decimal `json:"price" validate:"required"`
	InvItemID  *int64           `json:"inv_item_id" validate:"required"`
	InvItemQty *int             `json:"inv_item_qty" validate:"required,gte=0"`
	Weight     *int             `json:"weight" validate:"omitempty,gte=0"`
	ImageURL   *string          `json:"image_url" validate:"omitempty,max=500"`
}

type orderRecord struct {
	ID              *int64           `json:"id" validate:"required"`
	ShopID          *int64           `json:"shop_id" validate:"required"`
	OrderNumber     *int             `json:"order_number" validate:"required"`
	Confirmed       *bool            `json:"confirmed" validate:"required"`
	Timestamp       any              `json:"timestamp" validate:"required"`
	Currency        *string          `json:"currency" validate:"required,len=3"`
	SubtotalPrice   *decimal.Decimal `json:"subtotal_price" validate:"required"`
	TotalDiscount   *decimal.Decimal `json:"total_discount" validate:"required"`
	TotalTax        *decimal.Decimal `json:"total_tax" validate:"required"`
	TotalPrice      *decimal.Decimal `json:"total_price" validate:"required"`
	FinancialStat   *string          `json:"financial_stat" validate:"required,max=50"`
	CustomerID      *int64           `json:"customer_id"`
	FulfillmentStat *string          `json:"fulfillment_stat" validate:"omitempty,max=50"`
}

type lineItemRecord struct {
	ID            *int64           `json:"id" validate:"required"`
	OrderID       *int64           `json:"order_id" validate:"required"`
	ProductID     *int64           `json:"product_id" validate:"required"`
	ShopID        *int64           `json:"shop_id" validate:"required"`
	VariantID     *int64           `json:"variant_id" validate:"required"`
	Quantity      *int             `json:"quantity" validate:"required,gt=0"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	TotalDiscount *decimal.Decimal `json:"total_discount" validate:"required"`
}

// --- Decoding ---

// decodeInto copies rec into dst through JSON so numbers, decimals and nulls follow the same
// rules as a request body, then validates dst.
func decodeInto(entity string, rec Record, dst any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", entity, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &store.FieldError{Entity: entity, Field: typeErr.Field, Rule: "type"}
		}
		return &store.FieldError{Entity: entity, Field: "record", Rule: "json"}
	}
	return store.Validate(entity, dst)
}

func normalizeTime(entity, field string, v any) (time.Time, error) {
	t, err := timestamp.FromValue(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s.%s: %w", entity, field, err)
	}
	return t, nil
}

func decodeProduct(rec Record, opts Options) (*models.Product, error) {
	rec, err := prepare(EntityProduct, rec, opts)
	if err != nil {
		return nil, err
	}
	var r productRecord
	if err := decodeInto(EntityProduct, rec, &r); err != nil {
		return nil, err
	}
	ts, err := normalizeTime(EntityProduct, "timestamp", r.Timestamp)
	if err != nil {
		return nil, err
	}
	return &models.Product{
		ID: *r.ID, ShopID: *r.ShopID, Title: *r.Title, Vendor: *r.Vendor,
		ProductType: r.ProductType, Slug: *r.Slug, Timestamp: ts,
		Tags: r.Tags, Status: *r.Status,
	}, nil
}

func decodeVariant(rec Record, opts Options) (*models.Variant, error) {
	rec, err := prepare(EntityVariant, rec, opts)
	if err != nil {
		return nil, err
	}
	var r variantRecord
	if err := decodeInto(EntityVariant, rec, &r); err != nil {
		return nil, err
	}
	if r.Price.IsNegative() {
		return nil, &store.FieldError{Entity: EntityVariant, Field: "price", Rule: "gte=0"}
	}
	return &models.Variant{
		ID: *r.ID, ProductID: *r.ProductID, ShopID: *r.ShopID, Title: *r.Title,
		Price: r.Price.Round(2), InvItemID: *r.InvItemID, InvItemQty: *r.InvItemQty,
		Weight: r.Weight, ImageURL: r.ImageURL,
	}, nil
}

func decodeOrder(rec Record, opts Options) (*models.Order, error) {
	rec, err := prepare(EntityOrder, rec, opts)
	if err != nil {
		return nil, err
	}
	var r orderRecord
	if err := decodeInto(EntityOrder, rec, &r); err != nil {
		return nil, err
	}
	ts, err := normalizeTime(EntityOrder, "timestamp", r.Timestamp)
	if err != nil {
		return nil, err
	}
	return &models.Order{
		ID: *r.ID, CustomerID: r.CustomerID, ShopID: *r.ShopID, OrderNumber: *r.OrderNumber,
		Confirmed: *r.Confirmed, Timestamp: ts, Currency: *r.Currency,
		SubtotalPrice: r.SubtotalPrice.Round(2), TotalDiscount: r.TotalDiscount.Round(2),
		TotalTax: r.TotalTax.Round(2), TotalPrice: r.TotalPrice.Round(2),
		FinancialStat: *r.FinancialStat, FulfillmentStat: r.FulfillmentStat,
	}, nil
}

func decodeLineItem(rec Record, opts Options) (*models.LineItem, error) {
	rec, err := prepare(EntityLineItem, rec, opts)
	if err != nil {
		return nil, err
	}
	var r lineItemRecord
	if err := decodeInto(EntityLineItem, rec, &r); err != nil {
		return nil, err
	}
	return &models.LineItem{
		ID: *r.ID, OrderID: *r.OrderID, ProductID: *r.ProductID, ShopID: *r.ShopID,
		VariantID: *r.VariantID, Quantity: *r.Quantity,
		Price: r.Price.Round(2), TotalDiscount: r.TotalDiscount.Round(2),
	}, nil
}

// prepare applies the shop scope and slug derivation to a copy of rec.
func prepare(entity string, rec Record, opts Options) (Record, error) {
	deriveSlug := entity == EntityProduct && opts.DeriveSlugs
	if opts.ShopID == 0 && !deriveSlug {
		return rec, nil
	}

	out := make(Record, len(rec)+2)
	maps.Copy(out, rec)

	if opts.ShopID != 0 {
		v, ok := out["shop_id"]
		if !ok || v == nil {
			out["shop_id"] = opts.ShopID
		} else if id, ok := asInt64(v); ok && id != opts.ShopID {
			return nil, fmt.Errorf("%s: %w: shop_id %d, expected %d", entity, ErrShopMismatch, id, opts.ShopID)
		}
	}

	if deriveSlug {
		if s, _ := out["slug"].(string); s == "" {
			if title, ok := out["title"].(string); ok && title != "" {
				out["slug"] = slug.Make(title)
			}
		}
	}
	return out, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), float64(int64(n)) == n
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}
