package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/01moynul/tenantdesk-golang/internal/database"
	"github.com/01moynul/tenantdesk-golang/internal/models"
	"github.com/01moynul/tenantdesk-golang/internal/store"
	"github.com/01moynul/tenantdesk-golang/internal/tenant"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

// seed creates two shops with overlapping ids so leaks across tenants show up in counts.
func seed(t *testing.T) *Reports {
	t.Helper()
	db := database.NewTestDB(t)
	s := store.New(db, nil)
	ctx := context.Background()

	for _, shop := range []store.ShopParams{
		{ID: 101, Name: "My Shop", Domain: "my.shop.com", Owner: "Alice", Email: "check@gmail.com"},
		{ID: 202, Name: "Other Shop", Domain: "other.shop.com", Owner: "Bob", Email: "bob@gmail.com"},
	} {
		_, err := s.InsertShop(ctx, shop)
		require.NoError(t, err)
	}

	customers := []store.CustomerParams{
		{ID: 301, ShopID: 101, Timestamp: "2025-09-11T12:13:18-04:00", FirstName: "Sarvesh", Email: strPtr("sarvesh@hotmail.com")},
		{ID: 302, ShopID: 101, Timestamp: "2025-09-11T12:13:18-04:00", FirstName: "NoOrders"},
		{ID: 301, ShopID: 202, Timestamp: "2025-09-11T12:13:18-04:00", FirstName: "Elsewhere"},
	}
	for _, c := range customers {
		_, err := s.InsertCustomer(ctx, c)
		require.NoError(t, err)
	}

	_, err := s.InsertProduct(ctx, store.ProductParams{ID: 501, ShopID: 101, Title: "Cool T-Shirt", Vendor: "BrandX", Slug: "cool-tshirt", Timestamp: "2025-09-11T12:13:18-04:00", Status: models.ProductActive})
	require.NoError(t, err)
	_, err = s.InsertVariant(ctx, store.VariantParams{ID: 601, ProductID: 501, ShopID: 101, Title: "Size S", Price: decimal.NewFromInt(190), InvItemID: 1001, InvItemQty: 50})
	require.NoError(t, err)
	_, err = s.InsertProduct(ctx, store.ProductParams{ID: 501, ShopID: 202, Title: "Foreign", Vendor: "BrandY", Slug: "foreign", Timestamp: "2025-09-11T12:13:18-04:00", Status: models.ProductActive})
	require.NoError(t, err)
	_, err = s.InsertVariant(ctx, store.VariantParams{ID: 601, ProductID: 501, ShopID: 202, Title: "Foreign", Price: decimal.NewFromInt(1), InvItemID: 1001})
	require.NoError(t, err)

	orders := []store.OrderParams{
		{ID: 701, CustomerID: int64Ptr(301), ShopID: 101, OrderNumber: 1001, Confirmed: true, Timestamp: "2025-09-11T12:13:18-04:00", Currency: "INR", TotalPrice: decimal.RequireFromString("600.00"), FinancialStat: "paid"},
		{ID: 702, CustomerID: int64Ptr(301), ShopID: 101, OrderNumber: 1002, Confirmed: false, Timestamp: "2025-09-15T09:00:00Z", Currency: "INR", TotalPrice: decimal.RequireFromString("99.99"), FinancialStat: "pending"},
		{ID: 703, CustomerID: nil, ShopID: 101, OrderNumber: 1003, Confirmed: true, Timestamp: "2025-09-20T09:00:00Z", Currency: "INR", TotalPrice: decimal.RequireFromString("0.02"), FinancialStat: "paid"},
		// Same customer id in shop 202: must not add to shop 101's customer 301.
		{ID: 701, CustomerID: int64Ptr(301), ShopID: 202, OrderNumber: 1001, Confirmed: true, Timestamp: "2025-09-11T12:13:18-04:00", Currency: "USD", TotalPrice: decimal.NewFromInt(5000), FinancialStat: "paid"},
	}
	for _, o := range orders {
		_, err := s.InsertOrder(ctx, o)
		require.NoError(t, err)
	}
	return New(db)
}

func asShop(shopID int64) context.Context {
	return tenant.WithPrincipal(context.Background(), tenant.Principal{UserID: 201, ShopID: shopID, Email: "another@mail.com", Role: models.RoleAdmin})
}

func TestQueriesRequirePrincipal(t *testing.T) {
	r := seed(t)
	ctx := context.Background()

	_, err := r.Customers(ctx)
	assert.ErrorIs(t, err, tenant.ErrNoPrincipal)
	_, err = r.Orders(ctx)
	assert.ErrorIs(t, err, tenant.ErrNoPrincipal)
	_, err = r.Totals(ctx)
	assert.ErrorIs(t, err, tenant.ErrNoPrincipal)
	_, err = r.Shop(ctx)
	assert.ErrorIs(t, err, tenant.ErrNoPrincipal)
	assert.ErrorIs(t, r.CustomersWorkbook(ctx, &bytes.Buffer{}), tenant.ErrNoPrincipal)
}

func TestCustomers_RevenuePerTenant(t *testing.T) {
	r := seed(t)

	customers, err := r.Customers(asShop(101))
	require.NoError(t, err)
	require.Len(t, customers, 2)

	assert.Equal(t, int64(301), customers[0].ID)
	assert.True(t, decimal.RequireFromString("699.99").Equal(customers[0].RevenueGenerated), "got %s", customers[0].RevenueGenerated)
	assert.Equal(t, "sarvesh@hotmail.com", *customers[0].Email)

	assert.Equal(t, "NoOrders", customers[1].FirstName)
	assert.True(t, customers[1].RevenueGenerated.IsZero())

	other, err := r.Customers(asShop(202))
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.True(t, decimal.NewFromInt(5000).Equal(other[0].RevenueGenerated))
}

func TestVariantsAndShop(t *testing.T) {
	r := seed(t)

	variants, err := r.Variants(asShop(101))
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "Size S", variants[0].Title)

	shop, err := r.Shop(asShop(101))
	require.NoError(t, err)
	assert.Equal(t, "Alice", shop.Owner)

	_, err = r.Shop(asShop(999))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrders(t *testing.T) {
	r := seed(t)
	ctx := asShop(101)

	orders, err := r.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, 1001, orders[0].OrderNumber)
	assert.Nil(t, orders[2].CustomerID)

	week, err := r.OrdersBetween(ctx,
		time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 21, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, int64(702), week[0].ID)

	points, err := r.Revenue(ctx)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.True(t, decimal.NewFromInt(600).Equal(points[0].TotalPrice))
	assert.True(t, time.Date(2025, 9, 11, 16, 13, 18, 0, time.UTC).Equal(points[0].Timestamp))
}

func TestTotals(t *testing.T) {
	r := seed(t)

	totals, err := r.Totals(asShop(101))
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.TotalCustomers)
	assert.Equal(t, int64(1), totals.TotalProducts)
	assert.True(t, decimal.RequireFromString("700.01").Equal(totals.TotalRevenue), "got %s", totals.TotalRevenue)

	empty, err := r.Totals(asShop(999))
	require.NoError(t, err)
	assert.Zero(t, empty.TotalCustomers)
	assert.True(t, empty.TotalRevenue.IsZero())
}

func TestCustomersWorkbook(t *testing.T) {
	r := seed(t)

	var buf bytes.Buffer
	require.NoError(t, r.CustomersWorkbook(asShop(101), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(customersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, customersHeader, rows[0])
	assert.Equal(t, "Sarvesh", rows[1][1])
	assert.Equal(t, "NoOrders", rows[2][1])
}
