package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/01moynul/tenantdesk-golang/internal/ingest"
	"github.com/01moynul/tenantdesk-golang/internal/models"
	"github.com/01moynul/tenantdesk-golang/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loadOptions struct {
	dir           string
	productBatch  int
	variantBatch  int
	orderBatch    int
	lineItemBatch int
	atomic        bool
	deriveSlugs   bool
}

// tenantUserFile is the on-disk shape of data_tenant_users.json; the password arrives raw.
type tenantUserFile struct {
	ID        int64   `json:"id"`
	ShopID    int64   `json:"shop_id"`
	Email     string  `json:"email"`
	PassRaw   string  `json:"pass_raw"`
	Role      string  `json:"role"`
	Timestamp string  `json:"timestamp"`
	PicURL    *string `json:"pic_url"`
}

// runLoad inserts each file in dependency order. Missing files are skipped.
func runLoad(ctx context.Context, db *gorm.DB, log *zap.Logger, opts loadOptions) error {
	st := store.New(db, log)
	pipe := ingest.New(db, log)

	// --- Single-record files ---
	if err := loadEach(opts.dir, "data_shop.json", log, func(p store.ShopParams) error {
		_, err := st.InsertShop(ctx, p)
		return err
	}); err != nil {
		return err
	}
	if err := loadEach(opts.dir, "data_tenant_users.json", log, func(u tenantUserFile) error {
		hash, err := models.HashPassword(u.PassRaw)
		if err != nil {
			return fmt.Errorf("hash password for user %d: %w", u.ID, err)
		}
		_, err = st.InsertTenantUser(ctx, store.TenantUserParams{
			ID: u.ID, ShopID: u.ShopID, Email: u.Email, PassHash: hash,
			Role: u.Role, CreatedAt: u.Timestamp, PicURL: u.PicURL,
		})
		return err
	}); err != nil {
		return err
	}
	if err := loadEach(opts.dir, "data_customer.json", log, func(p store.CustomerParams) error {
		_, err := st.InsertCustomer(ctx, p)
		return err
	}); err != nil {
		return err
	}
	if err := loadEach(opts.dir, "data_address.json", log, func(p store.AddressParams) error {
		_, err := st.InsertAddress(ctx, p)
		return err
	}); err != nil {
		return err
	}

	// --- Bulk files ---
	mode := ingest.ModeBatched
	if opts.atomic {
		mode = ingest.ModeAtomic
	}
	bulk := []struct {
		file   string
		entity string
		batch  int
	}{
		{"data_product.json", ingest.EntityProduct, opts.productBatch},
		{"data_variant.json", ingest.EntityVariant, opts.variantBatch},
		{"data_order.json", ingest.EntityOrder, opts.orderBatch},
		{"data_line_item.json", ingest.EntityLineItem, opts.lineItemBatch},
	}
	for _, b := range bulk {
		records, err := ingest.LoadRecords(filepath.Join(opts.dir, b.file))
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("Skipping missing file", zap.String("file", b.file))
			continue
		}
		if err != nil {
			return err
		}
		summary, err := pipe.Run(ctx, b.entity, records, ingest.Options{
			BatchSize:   b.batch,
			Mode:        mode,
			DeriveSlugs: opts.deriveSlugs,
			OnProgress: func(p ingest.Progress) {
				log.Info("Batch written", zap.String("entity", p.Entity), zap.Int("batch", p.Batch),
					zap.Int("done", p.Done), zap.Int("total", p.Total))
			},
		})
		if err != nil {
			return fmt.Errorf("%s: %w", b.file, err)
		}
		log.Info("Bulk file loaded", zap.String("file", b.file),
			zap.Int("committed", summary.Committed), zap.Int("batches", summary.Batches))
	}
	return nil
}

// loadEach decodes a JSON array from dir/name and calls insert for each element in order.
func loadEach[T any](dir, name string, log *zap.Logger, insert func(T) error) error {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("Skipping missing file", zap.String("file", name))
		return nil
	}
	if err != nil {
		return err
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for i, item := range items {
		if err := insert(item); err != nil {
			return fmt.Errorf("%s[%d]: %w", name, i, err)
		}
	}
	log.Info("File loaded", zap.String("file", name), zap.Int("rows", len(items)))
	return nil
}
