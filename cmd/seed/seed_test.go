package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/01moynul/tenantdesk-golang/internal/database"
	"github.com/01moynul/tenantdesk-golang/internal/ingest"
	"github.com/01moynul/tenantdesk-golang/internal/models"
	"github.com/01moynul/tenantdesk-golang/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedSample(t *testing.T) {
	db := database.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, seedSample(ctx, db, zap.NewNop()))

	var variants []models.Variant
	require.NoError(t, db.Order("id").Find(&variants).Error)
	require.Len(t, variants, 3)
	assert.True(t, decimal.NewFromInt(190).Equal(variants[0].Price), "price %s", variants[0].Price)
	assert.Equal(t, 0, variants[2].InvItemQty)

	var order models.Order
	require.NoError(t, db.Where("id = ? AND shop_id = ?", 701, sampleShopID).Take(&order).Error)
	assert.True(t, decimal.NewFromInt(600).Equal(order.TotalPrice), "total %s", order.TotalPrice)

	var items int64
	require.NoError(t, db.Model(&models.LineItem{}).Count(&items).Error)
	assert.EqualValues(t, 2, items)

	// A second run hits the primary keys.
	err := seedSample(ctx, db, zap.NewNop())
	assert.ErrorIs(t, err, store.ErrConstraintViolation)
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestRunLoad(t *testing.T) {
	db := database.NewTestDB(t)
	dir := t.TempDir()

	writeFile(t, dir, "data_shop.json", `[{"id": 101, "name": "My Shop", "domain": "my.shop.com", "owner": "Alice", "email": "check@gmail.com"}]`)
	writeFile(t, dir, "data_tenant_users.json", `[{"id": 201, "shop_id": 101, "email": "admin@shop.com", "pass_raw": "s3cret", "role": "admin", "timestamp": "2025-09-11T12:13:18-04:00", "pic_url": null}]`)
	writeFile(t, dir, "data_customer.json", `[{"id": 301, "shop_id": 101, "timestamp": "2025-09-11T12:13:18-04:00", "first_name": "Sarvesh", "last_name": null, "email": "sarvesh@hotmail.com", "phone": null, "tags": "vip"}]`)
	writeFile(t, dir, "data_product.json", `[
		{"id": 501, "shop_id": 101, "title": "Cool T-Shirt", "vendor": "BrandX", "timestamp": "2025-09-11T12:13:18-04:00", "status": "active"},
		{"id": 502, "shop_id": 101, "title": "Warm Hoodie", "vendor": "BrandX", "timestamp": "2025-09-11T12:13:18-04:00", "status": "draft"}
	]`)
	writeFile(t, dir, "data_variant.json", `[{"id": 601, "product_id": 501, "shop_id": 101, "title": "Size S", "price": 190.005, "inv_item_id": 1001, "inv_item_qty": 5}]`)

	err := runLoad(context.Background(), db, zap.NewNop(), loadOptions{
		dir: dir, productBatch: 1, variantBatch: 50, orderBatch: 500, lineItemBatch: 1000, deriveSlugs: true,
	})
	require.NoError(t, err)

	var user models.TenantUser
	require.NoError(t, db.Where("id = ?", 201).Take(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte("s3cret")))
	assert.Equal(t, 16, user.CreatedAt.UTC().Hour())

	var products []models.Product
	require.NoError(t, db.Order("id").Find(&products).Error)
	require.Len(t, products, 2)
	assert.Equal(t, "cool-t-shirt", products[0].Slug)
	assert.Equal(t, "warm-hoodie", products[1].Slug)

	var variant models.Variant
	require.NoError(t, db.Where("id = ?", 601).Take(&variant).Error)
	assert.True(t, decimal.RequireFromString("190.01").Equal(variant.Price), "price %s", variant.Price)
}

func TestRunLoad_ReportsFailingBatch(t *testing.T) {
	db := database.NewTestDB(t)
	dir := t.TempDir()

	writeFile(t, dir, "data_shop.json", `[{"id": 101, "name": "My Shop", "domain": "my.shop.com", "owner": "Alice", "email": "check@gmail.com"}]`)
	writeFile(t, dir, "data_product.json", `[
		{"id": 501, "shop_id": 101, "title": "A", "vendor": "V", "slug": "a", "timestamp": "2025-09-11T12:13:18Z", "status": "active"},
		{"id": 502, "shop_id": 101, "title": "B", "vendor": "V", "slug": "b", "timestamp": "not a time", "status": "active"}
	]`)

	err := runLoad(context.Background(), db, zap.NewNop(), loadOptions{dir: dir, productBatch: 1})
	var batchErr *ingest.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Batch)
	assert.Equal(t, 1, batchErr.Index)

	var n int64
	require.NoError(t, db.Model(&models.Product{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestRunLoad_RejectsOrphanRows(t *testing.T) {
	db := database.NewTestDB(t)
	dir := t.TempDir()

	writeFile(t, dir, "data_product.json", `[{"id": 501, "shop_id": 101, "title": "A", "vendor": "V", "slug": "a", "timestamp": "2025-09-11T12:13:18Z", "status": "active"}]`)

	err := runLoad(context.Background(), db, zap.NewNop(), loadOptions{dir: dir, productBatch: 10})
	var ce *store.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, store.ConstraintForeignKey, ce.Kind)

	var n int64
	require.NoError(t, db.Model(&models.Product{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRunLoad_EmptyPassword(t *testing.T) {
	db := database.NewTestDB(t)
	dir := t.TempDir()

	writeFile(t, dir, "data_shop.json", `[{"id": 101, "name": "My Shop", "domain": "my.shop.com", "owner": "Alice", "email": "check@gmail.com"}]`)
	writeFile(t, dir, "data_tenant_users.json", `[{"id": 201, "shop_id": 101, "email": "admin@shop.com", "pass_raw": "", "role": "admin", "timestamp": "2025-09-11T12:13:18-04:00"}]`)

	err := runLoad(context.Background(), db, zap.NewNop(), loadOptions{dir: dir})
	assert.ErrorIs(t, err, models.ErrEmptyPassword)
}
