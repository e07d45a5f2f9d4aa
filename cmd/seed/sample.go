package main

import (
	"context"
	"fmt"

	"github.com/01moynul/tenantdesk-golang/internal/models"
	"github.com/01moynul/tenantdesk-golang/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sampleShopID int64 = 101

func ptr[T any](v T) *T { return &v }

// seedSample writes one small, fully linked tenant through the single-record insert path.
func seedSample(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	st := store.New(db, log)
	const shop = sampleShopID

	steps := []struct {
		name string
		fn   func() error
	}{
		{"shop", func() error {
			_, err := st.InsertShop(ctx, store.ShopParams{
				ID: shop, Name: "My Shop", Domain: "my.shop.com", Owner: "Alice", Email: "check@gmail.com",
			})
			return err
		}},
		{"tenant user", func() error {
			_, err := st.InsertTenantUser(ctx, store.TenantUserParams{
				ID: 201, ShopID: shop, Email: "another@mail.com", PassHash: "hashed_password",
				Role: models.RoleAdmin, CreatedAt: "2025-09-11T12:13:18-04:00",
				PicURL: ptr("http://example.com/pic.jpg"),
			})
			return err
		}},
		{"customer", func() error {
			_, err := st.InsertCustomer(ctx, store.CustomerParams{
				ID: 301, ShopID: shop, Timestamp: "2025-09-11T12:13:18-04:00",
				FirstName: "Sarvesh", Email: ptr("sarvesh@hotmail.com"), Tags: ptr("vip,main"),
			})
			return err
		}},
		{"address", func() error {
			_, err := st.InsertAddress(ctx, store.AddressParams{
				ID: 401, CustomerID: 301, ShopID: shop, Company: ptr("VIT Chennai"),
				Address1: "Vanadalur-Kelmbakkam Road", City: "Chennai", State: ptr("TN"),
				Country: "India", ZipCode: "600048", Default: true,
			})
			return err
		}},
		{"product", func() error {
			_, err := st.InsertProduct(ctx, store.ProductParams{
				ID: 501, ShopID: shop, Title: "Cool T-Shirt", Vendor: "BrandX",
				ProductType: ptr("Apparel"), Slug: "cool-tshirt", Timestamp: "2025-09-11T12:13:18-04:00",
				Tags: ptr("clothing,summer"), Status: "active",
			})
			return err
		}},
		{"variants", func() error {
			sizes := []struct {
				id, inv int64
				title   string
				price   int64
				qty     int
			}{
				{601, 1001, "Size S", 190, 50},
				{602, 1002, "Size M", 220, 20},
				{603, 1003, "Size L", 250, 0},
			}
			for _, s := range sizes {
				if _, err := st.InsertVariant(ctx, store.VariantParams{
					ID: s.id, ProductID: 501, ShopID: shop, Title: s.title,
					Price: decimal.NewFromInt(s.price), InvItemID: s.inv, InvItemQty: s.qty,
					Weight: ptr(200), ImageURL: ptr("http://example.com/image.jpg"),
				}); err != nil {
					return err
				}
			}
			return nil
		}},
		{"order", func() error {
			_, err := st.InsertOrder(ctx, store.OrderParams{
				ID: 701, CustomerID: ptr(int64(301)), ShopID: shop, OrderNumber: 1001,
				Confirmed: true, Timestamp: "2025-09-11T12:13:18-04:00", Currency: "INR",
				SubtotalPrice: decimal.NewFromInt(630), TotalDiscount: decimal.NewFromInt(50),
				TotalTax: decimal.NewFromInt(20), TotalPrice: decimal.NewFromInt(600),
				FinancialStat: "paid",
			})
			return err
		}},
		{"line items", func() error {
			items := []store.LineItemParams{
				{ID: 801, OrderID: 701, ProductID: 501, ShopID: shop, VariantID: 601, Quantity: 2,
					Price: decimal.NewFromInt(190), TotalDiscount: decimal.NewFromInt(10)},
				{ID: 802, OrderID: 701, ProductID: 501, ShopID: shop, VariantID: 602, Quantity: 1,
					Price: decimal.NewFromInt(220), TotalDiscount: decimal.NewFromInt(40)},
			}
			for _, it := range items {
				if _, err := st.InsertLineItem(ctx, it); err != nil {
					return err
				}
			}
			return nil
		}},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("sample %s: %w", step.name, err)
		}
		log.Info("Inserted sample rows", zap.String("step", step.name))
	}
	return nil
}
